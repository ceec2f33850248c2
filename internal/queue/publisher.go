package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DialTimeout bounds the TCP connect and the AMQP handshake.
	DialTimeout = 2 * time.Second
	// RedialBackoff is how long the publisher waits after a failed dial
	// before it dials again.  Events sent in the meantime are dropped.
	RedialBackoff = 10 * time.Second

	publishBuffer = 256
)

var (
	ErrPublisherClosed  = errors.New("publisher closed")
	ErrPublishQueueFull = errors.New("publish queue full")

	errBrokerBackoff = errors.New("broker unavailable, waiting before redial")
)

// Publisher sends seat events to the seat.events queue.  Publish only
// enqueues; a single goroutine owns the broker connection and delivers
// events in order.  The connection is opened on first use and reopened
// after it drops, so a broker that is down does not hold up requests.
type Publisher struct {
	url         string
	dialTimeout time.Duration
	backoff     time.Duration

	events chan SeatEvent
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	// Owned by the delivery goroutine.
	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

// NewPublisher starts the delivery goroutine.  Close stops it.
func NewPublisher(url string) *Publisher {
	p := newPublisher(url, DialTimeout, RedialBackoff)
	go p.run()
	return p
}

func newPublisher(url string, dialTimeout, backoff time.Duration) *Publisher {
	return &Publisher{
		url:         url,
		dialTimeout: dialTimeout,
		backoff:     backoff,
		events:      make(chan SeatEvent, publishBuffer),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Publish queues ev for delivery and never waits on the broker.
func (p *Publisher) Publish(_ context.Context, ev SeatEvent) error {
	select {
	case <-p.quit:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

// Close delivers what is still queued, then shuts the connection down.
func (p *Publisher) Close() error {
	p.once.Do(func() { close(p.quit) })
	<-p.done
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	defer p.reset()
	for {
		select {
		case ev := <-p.events:
			p.deliver(ev)
		case <-p.quit:
			for {
				select {
				case ev := <-p.events:
					p.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(ev SeatEvent) {
	if err := p.send(ev); err != nil {
		slog.Warn("publish seat event failed", "component", "publisher", "type", ev.Type, "error", err)
	}
}

// send publishes ev as a persistent message.
func (p *Publisher) send(ev SeatEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()
	if err := ch.PublishWithContext(ctx, "", SeatEventsQueue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// channel returns an open channel, dialing when needed.  After a failed
// dial it returns errBrokerBackoff until the back-off has passed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.nextDial) {
		return nil, errBrokerBackoff
	}

	ch, err := p.open()
	if err != nil {
		p.nextDial = time.Now().Add(p.backoff)
		return nil, err
	}
	slog.Info("connected to broker", "component", "publisher", "queue", SeatEventsQueue)
	return ch, nil
}

func (p *Publisher) open() (*amqp.Channel, error) {
	conn, err := dial(p.url, p.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := declareSeatEvents(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// dial connects with a bounded connect and handshake time.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// declareSeatEvents declares the durable seat.events queue.  Publisher
// and consumer both call it; the declaration is idempotent.
func declareSeatEvents(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(SeatEventsQueue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
