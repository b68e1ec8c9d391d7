package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/probelabs/apiprobe/config"
	"github.com/probelabs/apiprobe/transport"
)

// AMQPConfig configures a RabbitMQ binding.
type AMQPConfig struct {
	// URL is the amqp:// connection string. Required.
	URL string

	// Exchange is the topic exchange events are published to. It is
	// declared durable on connect. Required.
	Exchange string

	// Prefetch bounds unacked deliveries per consumer. Defaults to 1.
	Prefetch int
}

// AMQP is a live RabbitMQ connection exposing a publish transport and
// per-queue message sources.
type AMQP struct {
	config AMQPConfig

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// AMQPConfigFromSettings maps environment settings onto an AMQPConfig.
func AMQPConfigFromSettings(s config.Settings) AMQPConfig {
	return AMQPConfig{
		URL:      s.BrokerURL,
		Exchange: s.BrokerExchange,
	}
}

// DialAMQP connects to RabbitMQ and declares the configured exchange.
func DialAMQP(config AMQPConfig) (*AMQP, error) {
	if config.Prefetch <= 0 {
		config.Prefetch = 1
	}

	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("broker: dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("broker: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(config.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("broker: declare exchange %s: %w", config.Exchange, err)
	}
	// Confirm mode, so a publish result means the broker accepted the
	// message rather than the client buffered it.
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("broker: enable publisher confirms: %w", err)
	}

	return &AMQP{config: config, conn: conn, ch: ch}, nil
}

// Transport returns a transport.Transport that publishes a call's body
// to the exchange using the call target as routing key. The result
// status carries OutcomeOK on a confirmed publish.
func (a *AMQP) Transport() transport.Transport {
	return transport.SendFunc(func(ctx context.Context, call *transport.Call) (*transport.Result, error) {
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return nil, ErrClosed
		}
		ch := a.ch
		a.mu.Unlock()

		table := make(amqp.Table, len(call.Headers))
		for k, v := range call.Headers {
			table[k] = v
		}

		start := time.Now()
		confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx,
			a.config.Exchange,
			call.Target,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  call.Header(HeaderContentType),
				DeliveryMode: amqp.Persistent,
				Timestamp:    start,
				Headers:      table,
				Body:         call.Body,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: publish to %s/%s: %w",
				transport.ErrTransport, a.config.Exchange, call.Target, err)
		}

		acked, err := confirm.WaitContext(ctx)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("%w: await confirm for %s/%s: %w",
				transport.ErrTransport, a.config.Exchange, call.Target, err)
		}

		status := transport.OutcomeOK
		if !acked {
			// Broker nacked the publish. Surface it as a failed outcome
			// so the validation chain and capture both see it.
			status = transport.OutcomeFailed
		}
		return &transport.Result{
			Status:  status,
			Elapsed: elapsed,
			Time:    start,
		}, nil
	})
}

// Subscribe declares queue, binds it to the exchange for topic, and
// returns a Source over its deliveries. Messages are acked as they
// are polled.
func (a *AMQP) Subscribe(queue, topic string) (Source, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}

	if _, err := a.ch.QueueDeclare(queue, true, true, false, false, nil); err != nil {
		return nil, fmt.Errorf("broker: declare queue %s: %w", queue, err)
	}
	if err := a.ch.QueueBind(queue, topic, a.config.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("broker: bind %s to %s: %w", queue, topic, err)
	}
	if err := a.ch.Qos(a.config.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("broker: set qos: %w", err)
	}
	deliveries, err := a.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("broker: consume %s: %w", queue, err)
	}

	return &amqpSource{deliveries: deliveries}, nil
}

// Close tears down the channel and connection. Safe to call twice.
func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.ch.Close(); err != nil {
		a.conn.Close()
		return fmt.Errorf("broker: close channel: %w", err)
	}
	return a.conn.Close()
}

type amqpSource struct {
	deliveries <-chan amqp.Delivery
}

func (s *amqpSource) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrNoMessage
	case raw, ok := <-s.deliveries:
		if !ok {
			return nil, ErrClosed
		}
		if err := raw.Ack(false); err != nil {
			return nil, fmt.Errorf("broker: ack delivery: %w", err)
		}
		return fromDelivery(raw), nil
	}
}

func fromDelivery(raw amqp.Delivery) *Message {
	headers := make(map[string]string, len(raw.Headers))
	for k, v := range raw.Headers {
		if s, ok := v.(string); ok {
			headers[k] = s
		}
	}
	return &Message{
		Topic:   raw.RoutingKey,
		Key:     headers[HeaderKey],
		Headers: headers,
		Body:    raw.Body,
		Offset:  int64(raw.DeliveryTag),
		Time:    raw.Timestamp,
	}
}
