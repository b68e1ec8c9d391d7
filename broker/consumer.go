package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/probelabs/apiprobe/observe"
)

// Source polls a wire binding for one message.
//
// Contract:
// - Poll blocks for at most timeout and returns ErrNoMessage when
//   nothing arrived in that window.
// - Poll honors ctx cancellation and returns ctx.Err().
type Source interface {
	Poll(ctx context.Context, timeout time.Duration) (*Message, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, timeout time.Duration) (*Message, error)

// Poll calls f.
func (f SourceFunc) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	return f(ctx, timeout)
}

// Predicate selects a message during ConsumeUntil.
type Predicate func(msg *Message) bool

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	// Source supplies messages. Required.
	Source Source

	// Timeout is the default poll window. Defaults to 30s.
	Timeout time.Duration

	// MaxMessages caps how many messages ConsumeUntil inspects before
	// giving up. Defaults to 100.
	MaxMessages int

	Logger observe.Logger
}

// Consumer reads messages from a Source with bounded waits.
type Consumer struct {
	config ConsumerConfig
}

// NewConsumer creates a Consumer with defaults applied.
func NewConsumer(config ConsumerConfig) *Consumer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = 100
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}
	return &Consumer{config: config}
}

// ConsumeOne polls for a single message. A zero timeout uses the
// consumer default. Returns ErrNoMessage when nothing arrived.
func (c *Consumer) ConsumeOne(ctx context.Context, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	return c.config.Source.Poll(ctx, timeout)
}

// ConsumeUntil reads messages until pred returns true, the timeout
// elapses, or MaxMessages have been inspected. It returns the matching
// message, or ErrNoMatch when the limits hit first. A zero timeout
// uses the consumer default.
//
// Polling happens in slices of at most one second so cancellation and
// the deadline are observed promptly even on a quiet topic.
func (c *Consumer) ConsumeUntil(ctx context.Context, pred Predicate, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	deadline := time.Now().Add(timeout)
	inspected := 0

	for inspected < c.config.MaxMessages {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		slice := remaining
		if slice > time.Second {
			slice = time.Second
		}

		msg, err := c.config.Source.Poll(ctx, slice)
		if errors.Is(err, ErrNoMessage) {
			continue
		}
		if err != nil {
			return nil, err
		}
		inspected++

		if pred(msg) {
			c.config.Logger.Debug(ctx, "matching message found",
				observe.Field{Key: "topic", Value: msg.Topic},
				observe.Field{Key: "inspected", Value: inspected},
			)
			return msg, nil
		}
	}

	return nil, fmt.Errorf("%w: inspected %d messages in %s", ErrNoMatch, inspected, timeout)
}
