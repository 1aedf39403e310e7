package bus

import (
	"testing"
	"time"
)

func TestConsumer_StopUnblocksPendingEnqueue(t *testing.T) {
	c := NewConsumer("doors", 1)

	// No workers running: fill the job buffer to capacity.
	for i := 0; i < cap(c.jobs); i++ {
		c.enqueue("doors/front/card_input", []byte("AABBCCDD"))
	}

	released := make(chan struct{})
	go func() {
		c.enqueue("doors/front/card_input", []byte("AABBCCDD"))
		close(released)
	}()

	// Give the goroutine a moment to block on the full channel.
	time.Sleep(10 * time.Millisecond)
	c.Stop()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("enqueue still blocked after Stop")
	}
}

func TestConsumer_EnqueueAfterStopDoesNotPanic(t *testing.T) {
	c := NewConsumer("doors", 1)
	c.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(c.jobs)+2; i++ {
			c.enqueue("card_input", []byte("1234"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after Stop")
	}
}
