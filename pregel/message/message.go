package message

// Iterator iterates the messages delivered to a single vertex.
type Iterator interface {
	// Next loads the next message, returns false when no more messages are
	// available.
	Next() bool

	// Message returns the current message.
	Message() float64
}

// Inbox should be implemented by types that buffer messages between vertices
// for a single job run.
type Inbox interface {
	// Send enqueues a message for the target vertex. Send is safe for
	// concurrent use.
	Send(target int64, value float64)

	// Messages returns the messages that are deliverable to vertexID. The
	// returned messages are consumed: a second call for the same vertex in
	// the same superstep yields no messages.
	Messages(vertexID int64) Iterator

	// HasPending reports whether vertexID has messages waiting to be
	// delivered in the next superstep. It is only called at the superstep
	// barrier.
	HasPending(vertexID int64) bool

	// Advance is invoked once all workers have completed a superstep and
	// makes pending messages deliverable.
	Advance()
}

// Mode selects the message delivery discipline of an inbox.
type Mode int

const (
	// Synchronous inboxes deliver messages sent in superstep S in S+1.
	Synchronous Mode = iota

	// Asynchronous inboxes deliver messages as soon as the target vertex is
	// computed, which may be later in the same superstep.
	Asynchronous
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Synchronous:
		return "synchronous"
	case Asynchronous:
		return "asynchronous"
	default:
		return "unknown"
	}
}

// NewInbox returns an inbox for vertexCount vertices using the given mode.
func NewInbox(mode Mode, vertexCount int64) Inbox {
	if mode == Asynchronous {
		return NewAsyncInbox(vertexCount)
	}

	return NewSyncInbox(vertexCount)
}

// sliceIterator iterates a slice of messages in insertion order.
type sliceIterator struct {
	msgs []float64
	idx  int
	msg  float64
}

func (it *sliceIterator) Next() bool {
	if it.idx >= len(it.msgs) {
		return false
	}

	it.msg = it.msgs[it.idx]
	it.idx++

	return true
}

func (it *sliceIterator) Message() float64 { return it.msg }

// Empty is an iterator that yields no messages.
var Empty Iterator = &sliceIterator{}

// FromSlice returns an iterator over msgs.
func FromSlice(msgs []float64) Iterator {
	return &sliceIterator{msgs: msgs}
}
