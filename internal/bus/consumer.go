package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/doorro/gatekeeper/internal/engine"
)

// handlerTimeout bounds one message's database and publish round-trips so a
// dependency outage cannot wedge a handler goroutine forever.
const handlerTimeout = 10 * time.Second

// Consumer feeds inbound bus messages through a bounded pool of handler
// goroutines. Enqueueing blocks when the pool is saturated, pushing
// backpressure onto the broker session instead of dropping a credential
// event.
type Consumer struct {
	engine    *engine.Engine
	topicBase string
	jobs      chan message
	done      chan struct{}
	wg        sync.WaitGroup
}

type message struct {
	topic   string
	payload []byte
}

func NewConsumer(topicBase string, handlerLimit int) *Consumer {
	if handlerLimit <= 0 {
		handlerLimit = 1
	}
	return &Consumer{
		topicBase: topicBase,
		jobs:      make(chan message, handlerLimit*4),
		done:      make(chan struct{}),
	}
}

// Topics lists every subject the decision engine consumes: the bare subtypes
// plus their door-qualified forms, all at QoS 1.
func (c *Consumer) Topics() map[string]byte {
	topics := map[string]byte{}
	for _, sub := range []string{engine.SubtypeCardInput, engine.SubtypeCodeInput, engine.SubtypeEgressRequest} {
		topics[sub] = 1
		topics[c.topicBase+"/+/"+sub] = 1
	}
	return topics
}

// Subscribe registers the consumer's topics on the client. Safe to call from
// the client's onConnect hook before Start; messages buffer in the job queue
// until the handler pool is running.
func (c *Consumer) Subscribe(client *Client) {
	if err := client.SubscribeMultiple(c.Topics(), c.enqueue); err != nil {
		slog.Error("bus subscribe failed", "error", err)
	}
}

// enqueue may be called from a broker callback even after Disconnect's grace
// period, so the jobs channel is never closed; Stop releases any blocked
// sender through done instead.
func (c *Consumer) enqueue(topic string, payload []byte) {
	select {
	case c.jobs <- message{topic: topic, payload: payload}:
	case <-c.done:
	}
}

// Start launches the handler pool. handlerLimit goroutines were sized at
// construction via the job channel; the pool count matches its burst factor.
func (c *Consumer) Start(eng *engine.Engine, handlerLimit int) {
	c.engine = eng
	if handlerLimit <= 0 {
		handlerLimit = 1
	}
	for i := 0; i < handlerLimit; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case m := <-c.jobs:
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			c.engine.HandleMessage(ctx, m.topic, m.payload)
			cancel()
		}
	}
}

// Stop drains the pool. Disconnect the client first so no further messages
// arrive; any enqueue still in flight unblocks and drops its message.
func (c *Consumer) Stop() {
	close(c.done)
	c.wg.Wait()
}
