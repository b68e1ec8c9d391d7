package broker

import (
	"context"
	"sync"
	"time"

	"github.com/probelabs/apiprobe/transport"
)

// MemBroker is an in-process broker for harness tests. Publishes fan
// out to every subscriber of the exact topic.
type MemBroker struct {
	mu   sync.Mutex
	subs map[string][]chan *Message
}

// NewMemBroker creates an empty in-memory broker.
func NewMemBroker() *MemBroker {
	return &MemBroker{subs: make(map[string][]chan *Message)}
}

// Transport returns a publish transport backed by this broker. A
// publish to a topic with no subscribers still succeeds; the message
// is dropped, matching broker semantics for unbound routing keys.
func (b *MemBroker) Transport() transport.Transport {
	return transport.SendFunc(func(ctx context.Context, call *transport.Call) (*transport.Result, error) {
		start := time.Now()
		headers := make(map[string]string, len(call.Headers))
		for k, v := range call.Headers {
			headers[k] = v
		}
		msg := &Message{
			Topic:   call.Target,
			Key:     call.Header(HeaderKey),
			Headers: headers,
			Body:    call.Body,
			Time:    start,
		}

		b.mu.Lock()
		for _, ch := range b.subs[call.Target] {
			select {
			case ch <- msg:
			default: // subscriber buffer full, drop
			}
		}
		b.mu.Unlock()

		return &transport.Result{
			Status:  transport.OutcomeOK,
			Elapsed: time.Since(start),
			Time:    start,
		}, nil
	})
}

// Subscribe returns a Source receiving every future publish to topic.
func (b *MemBroker) Subscribe(topic string) Source {
	ch := make(chan *Message, 128)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	return SourceFunc(func(ctx context.Context, timeout time.Duration) (*Message, error) {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, ErrNoMessage
		case msg := <-ch:
			return msg, nil
		}
	})
}
