package message

import "sync"

// Static and compile-time checks to ensure both inboxes implement the Inbox
// interface.
var (
	_ Inbox = (*SyncInbox)(nil)
	_ Inbox = (*AsyncInbox)(nil)
)

// queue stores the messages addressed to a single vertex. Messages can be
// enqueued concurrently.
type queue struct {
	mu   sync.Mutex
	msgs []float64
}

func (q *queue) enqueue(value float64) {
	q.mu.Lock()
	q.msgs = append(q.msgs, value)
	q.mu.Unlock()
}

func (q *queue) pending() bool {
	q.mu.Lock()
	pending := len(q.msgs) != 0
	q.mu.Unlock()

	return pending
}

// SyncInbox is a double buffered inbox. Messages are written to the write
// buffer and become readable after Advance swaps the buffers.
type SyncInbox struct {
	read  []queue
	write []queue
}

// NewSyncInbox creates a synchronous inbox for vertexCount vertices.
func NewSyncInbox(vertexCount int64) *SyncInbox {
	return &SyncInbox{
		read:  make([]queue, vertexCount),
		write: make([]queue, vertexCount),
	}
}

// Send enqueues a message for delivery in the next superstep.
func (in *SyncInbox) Send(target int64, value float64) {
	in.write[target].enqueue(value)
}

// Messages returns the messages sent to vertexID in the previous superstep.
// The read buffer is not written to during a superstep so no locking is
// required.
func (in *SyncInbox) Messages(vertexID int64) Iterator {
	q := &in.read[vertexID]
	if len(q.msgs) == 0 {
		return Empty
	}

	// The backing array is reused by the write buffer only after the next
	// Advance, when the iterator is no longer in use.
	msgs := q.msgs
	q.msgs = q.msgs[:0]

	return FromSlice(msgs)
}

// HasPending reports whether vertexID received messages in the current
// superstep.
func (in *SyncInbox) HasPending(vertexID int64) bool {
	return len(in.write[vertexID].msgs) != 0
}

// Advance swaps the read and write buffers and resets the new write buffer.
func (in *SyncInbox) Advance() {
	in.read, in.write = in.write, in.read

	for i := range in.write {
		if len(in.write[i].msgs) != 0 {
			in.write[i].msgs = in.write[i].msgs[:0]
		}
	}
}

// AsyncInbox is a single shared inbox. A message becomes deliverable as soon
// as it is enqueued, so a target that is computed later in the same superstep
// observes it immediately.
type AsyncInbox struct {
	queues []queue
}

// NewAsyncInbox creates an asynchronous inbox for vertexCount vertices.
func NewAsyncInbox(vertexCount int64) *AsyncInbox {
	return &AsyncInbox{queues: make([]queue, vertexCount)}
}

// Send enqueues a message that is immediately deliverable.
func (in *AsyncInbox) Send(target int64, value float64) {
	in.queues[target].enqueue(value)
}

// Messages drains and returns all messages currently queued for vertexID.
func (in *AsyncInbox) Messages(vertexID int64) Iterator {
	q := &in.queues[vertexID]

	q.mu.Lock()
	msgs := q.msgs
	q.msgs = nil
	q.mu.Unlock()

	if len(msgs) == 0 {
		return Empty
	}

	return FromSlice(msgs)
}

// HasPending reports whether vertexID has undelivered messages.
func (in *AsyncInbox) HasPending(vertexID int64) bool {
	return in.queues[vertexID].pending()
}

// Advance is a no-op for the asynchronous inbox.
func (in *AsyncInbox) Advance() {}
