package message_test

import (
	"sync"
	"testing"

	"github.com/mycok/uPregel/pregel/message"
)

func TestSyncInboxDeliversInNextSuperstep(t *testing.T) {
	in := message.NewInbox(message.Synchronous, 3)

	in.Send(1, 1.5)
	in.Send(1, 2.5)

	// Messages sent in this superstep must not be readable yet.
	if it := in.Messages(1); it.Next() {
		t.Error("Expected no messages to be visible before Advance")
	}

	if !in.HasPending(1) {
		t.Error("Expected vertex 1 to have pending messages")
	}

	if in.HasPending(0) {
		t.Error("Expected vertex 0 to have no pending messages")
	}

	in.Advance()

	var (
		it  = in.Messages(1)
		sum float64
		n   int
	)

	for it.Next() {
		sum += it.Message()
		n++
	}

	if n != 2 || sum != 4 {
		t.Errorf("Expected 2 messages adding up to 4, but got %d messages adding up to %f", n, sum)
	}

	// Delivered messages are consumed.
	if in.Messages(1).Next() {
		t.Error("Expected messages to be consumed after the first read")
	}

	if in.HasPending(1) {
		t.Error("Expected write buffer to be empty after Advance")
	}

	in.Advance()
	if in.Messages(1).Next() {
		t.Error("Expected no messages two supersteps later")
	}
}

func TestAsyncInboxDeliversImmediately(t *testing.T) {
	in := message.NewInbox(message.Asynchronous, 2)

	in.Send(0, 3)

	if !in.HasPending(0) {
		t.Error("Expected vertex 0 to have pending messages")
	}

	it := in.Messages(0)
	if !it.Next() || it.Message() != 3 {
		t.Error("Expected the message to be visible within the same superstep")
	}

	if it.Next() {
		t.Error("Expected a single message")
	}

	if in.HasPending(0) {
		t.Error("Expected the inbox to be drained")
	}
}

func TestConcurrentSends(t *testing.T) {
	for _, mode := range []message.Mode{message.Synchronous, message.Asynchronous} {
		in := message.NewInbox(mode, 1)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					in.Send(0, 1)
				}
			}()
		}
		wg.Wait()
		in.Advance()

		var count int
		for it := in.Messages(0); it.Next(); {
			count++
		}

		if count != 1600 {
			t.Errorf("%s: expected 1600 messages, but got %d", mode, count)
		}
	}
}
