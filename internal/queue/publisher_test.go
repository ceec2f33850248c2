package queue

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// silentBroker accepts TCP connections and never speaks AMQP.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestSendGivesUpOnSilentBroker(t *testing.T) {
	t.Parallel()
	p := newPublisher(silentBroker(t), 200*time.Millisecond, time.Minute)
	ev := SeatEvent{Type: EventSeatAdded, SeatNumber: "41", TotalSeats: 41}

	start := time.Now()
	if err := p.send(ev); err == nil {
		t.Fatal("expected dial error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("send took %v", elapsed)
	}

	start = time.Now()
	if err := p.send(ev); !errors.Is(err, errBrokerBackoff) {
		t.Fatalf("second send err = %v, want back-off", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("send during back-off took %v", elapsed)
	}
}

func TestPublishDoesNotWaitForBroker(t *testing.T) {
	t.Parallel()
	p := newPublisher(silentBroker(t), 200*time.Millisecond, time.Minute)
	go p.run()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Publish(ctx, SeatEvent{Type: EventReservationCreated, ReservationID: "r1"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("publish took %v", elapsed)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Publish(ctx, SeatEvent{Type: EventSeatAdded}); !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("publish after close err = %v", err)
	}
}

func TestPublishQueueFull(t *testing.T) {
	t.Parallel()
	p := newPublisher("amqp://unused/", time.Second, time.Minute)

	for i := 0; i < publishBuffer; i++ {
		if err := p.Publish(context.Background(), SeatEvent{Type: EventSeatAdded}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if err := p.Publish(context.Background(), SeatEvent{Type: EventSeatAdded}); !errors.Is(err, ErrPublishQueueFull) {
		t.Fatalf("err = %v, want ErrPublishQueueFull", err)
	}
}
