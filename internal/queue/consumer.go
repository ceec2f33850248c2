package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditLogName is the file the consumer appends to inside its log
// directory.
const AuditLogName = "seat-events.log"

// StartEventConsumer connects to the broker, consumes seat.events and
// appends one line per event to <logDir>/seat-events.log.  It reconnects
// with exponential back-off and only returns once ctx is cancelled.
func StartEventConsumer(ctx context.Context, url, logDir string) error {
	log := slog.With("component", "event-consumer")
	backoff := time.Second
	for {
		conn, err := dial(url, DialTimeout)
		if err != nil {
			log.Warn("dial broker failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("set QoS failed", "component", "event-consumer", "error", err)
	}
	if _, err := declareSeatEvents(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, SeatEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(logDir, d.Body); err != nil {
				slog.Error("handle message failed", "component", "event-consumer", "error", err)
				// Requeueing a message that cannot be parsed would loop forever.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(logDir string, body []byte) error {
	var ev SeatEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, AuditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as a single audit log line ending in a newline.
func FormatEvent(ev SeatEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", ev.OccurredAt, ev.Type)
	if ev.ReservationID != "" {
		fmt.Fprintf(&b, " | reservation_id=%s", ev.ReservationID)
	}
	if ev.SeatNumber != "" {
		fmt.Fprintf(&b, " | seat=%s", ev.SeatNumber)
	}
	if ev.Date != "" {
		fmt.Fprintf(&b, " | date=%s", ev.Date)
	}
	if ev.Email != "" {
		fmt.Fprintf(&b, " | email=%q", ev.Email)
	}
	if ev.TotalSeats > 0 {
		fmt.Fprintf(&b, " | total_seats=%d", ev.TotalSeats)
	}
	b.WriteByte('\n')
	return b.String()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
