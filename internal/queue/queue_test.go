package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ev   SeatEvent
		want string
	}{
		{
			ev: SeatEvent{Type: EventReservationCreated, ReservationID: "r1", SeatNumber: "5", Date: "2025-06-01",
				Email: "a@x.com", OccurredAt: "2025-06-01T10:00:00Z"},
			want: `[2025-06-01T10:00:00Z] reservation.created | reservation_id=r1 | seat=5 | date=2025-06-01 | email="a@x.com"` + "\n",
		},
		{
			ev:   SeatEvent{Type: EventSeatAdded, SeatNumber: "41", TotalSeats: 41, OccurredAt: "2025-06-01T10:00:00Z"},
			want: "[2025-06-01T10:00:00Z] seat.added | seat=41 | total_seats=41\n",
		},
	}
	for _, tt := range tests {
		if got := FormatEvent(tt.ev); got != tt.want {
			t.Errorf("FormatEvent = %q, want %q", got, tt.want)
		}
	}
}

func TestHandleMessageAppends(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "logs")

	for _, typ := range []string{EventSeatDisabled, EventSeatReleased} {
		body, _ := json.Marshal(SeatEvent{Type: typ, SeatNumber: "3", OccurredAt: "2025-06-01T10:00:00Z"})
		if err := handleMessage(dir, body); err != nil {
			t.Fatalf("handle %s: %v", typ, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, AuditLogName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "seat.disabled") || !strings.Contains(lines[1], "seat.released") {
		t.Fatalf("log = %q", data)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	t.Parallel()
	if err := handleMessage(t.TempDir(), []byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
