package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/seatbook/internal/clock"
	"github.com/iliyamo/seatbook/internal/model"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type seatFixture struct {
	svc      *SeatService
	accounts *fakeAccounts
	res      *fakeReservations
	seats    *fakeSeats
	events   *recordingPublisher
}

func newSeatFixture(total int, disabled ...string) seatFixture {
	f := seatFixture{
		accounts: newFakeAccounts(
			model.Account{ID: "acc-a", Email: "a@x.com", FullName: "Ann Able"},
			model.Account{ID: "acc-b", Email: "b@x.com", FullName: "Ben Baker"},
		),
		res:    &fakeReservations{},
		seats:  newFakeSeats(total, disabled...),
		events: &recordingPublisher{},
	}
	f.svc = NewSeatService(f.accounts, f.res, f.seats, f.events, clock.NewFixed(testNow))
	f.svc.newID = sequentialIDs()
	return f
}

func TestResolveAvailability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       model.SeatConfig
		list      []model.Reservation
		available []string
		reserved  []string
		disabled  []string
	}{
		{
			name:      "empty day",
			cfg:       model.SeatConfig{TotalSeats: 3},
			available: []string{"1", "2", "3"},
			reserved:  []string{},
			disabled:  []string{},
		},
		{
			name:      "reserved and disabled",
			cfg:       model.SeatConfig{TotalSeats: 5, DisabledSeats: []string{"4"}},
			list:      []model.Reservation{{SeatNumber: "2"}, {SeatNumber: "5"}},
			available: []string{"1", "3"},
			reserved:  []string{"2", "5"},
			disabled:  []string{"4"},
		},
		{
			name:      "reservation outside range is listed but does not shrink available",
			cfg:       model.SeatConfig{TotalSeats: 2},
			list:      []model.Reservation{{SeatNumber: "9"}},
			available: []string{"1", "2"},
			reserved:  []string{"9"},
			disabled:  []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveAvailability(tt.cfg, tt.list)
			if !reflect.DeepEqual(got.AvailableSeats, tt.available) {
				t.Errorf("available = %v, want %v", got.AvailableSeats, tt.available)
			}
			if !reflect.DeepEqual(got.ReservedSeats, tt.reserved) {
				t.Errorf("reserved = %v, want %v", got.ReservedSeats, tt.reserved)
			}
			if !reflect.DeepEqual(got.DisabledSeats, tt.disabled) {
				t.Errorf("disabled = %v, want %v", got.DisabledSeats, tt.disabled)
			}
			if got.TotalSeats != tt.cfg.TotalSeats {
				t.Errorf("total = %d, want %d", got.TotalSeats, tt.cfg.TotalSeats)
			}
		})
	}
}

func TestResolveAvailabilityPartition(t *testing.T) {
	t.Parallel()

	cfg := model.SeatConfig{TotalSeats: 10, DisabledSeats: []string{"3", "7"}}
	list := []model.Reservation{{SeatNumber: "1"}, {SeatNumber: "5"}, {SeatNumber: "10"}}
	st := ResolveAvailability(cfg, list)

	seen := map[string]int{}
	for _, group := range [][]string{st.AvailableSeats, st.ReservedSeats, st.DisabledSeats} {
		for _, s := range group {
			seen[s]++
		}
	}
	for _, s := range cfg.AllSeats() {
		if seen[s] != 1 {
			t.Errorf("seat %s appears %d times, want exactly once", s, seen[s])
		}
	}
	if len(seen) != cfg.TotalSeats {
		t.Errorf("partition covers %d seats, want %d", len(seen), cfg.TotalSeats)
	}
}

// A reservation made before its seat was disabled is not evicted, so the
// seat shows up as both reserved and disabled.
func TestStatusKeepsReservationOnLaterDisabledSeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeatFixture(40)

	if _, err := f.svc.Reserve(ctx, ReserveInput{SeatNumber: "5", Date: "2025-06-01", Email: "a@x.com"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := f.svc.Disable(ctx, "5"); err != nil {
		t.Fatalf("disable: %v", err)
	}

	st, err := f.svc.Status(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !contains(st.ReservedSeats, "5") || !contains(st.DisabledSeats, "5") {
		t.Fatalf("seat 5 should be both reserved and disabled, got reserved=%v disabled=%v", st.ReservedSeats, st.DisabledSeats)
	}
	if contains(st.AvailableSeats, "5") {
		t.Fatalf("seat 5 must not be available")
	}
	if got := len(st.AvailableSeats) + len(st.ReservedSeats) + len(st.DisabledSeats); got != st.TotalSeats+1 {
		t.Fatalf("partition sizes sum to %d, want total+1 (%d)", got, st.TotalSeats+1)
	}
}

func TestStatusAfterReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeatFixture(40)

	if _, err := f.svc.Reserve(ctx, ReserveInput{SeatNumber: "5", Date: "2025-06-01", Email: "a@x.com"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	st, err := f.svc.Status(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !reflect.DeepEqual(st.ReservedSeats, []string{"5"}) {
		t.Fatalf("reserved = %v, want [5]", st.ReservedSeats)
	}
	if contains(st.AvailableSeats, "5") {
		t.Fatalf("seat 5 still available")
	}
	if len(st.AvailableSeats) != 39 {
		t.Fatalf("available = %d seats, want 39", len(st.AvailableSeats))
	}

	other, err := f.svc.Status(ctx, "2025-06-02")
	if err != nil {
		t.Fatalf("status other day: %v", err)
	}
	if len(other.AvailableSeats) != 40 {
		t.Fatalf("other day available = %d, want 40", len(other.AvailableSeats))
	}
}

func TestStatusValidation(t *testing.T) {
	t.Parallel()
	f := newSeatFixture(40)

	for _, date := range []string{"", "   ", "2025-13-01", "01/06/2025"} {
		_, err := f.svc.Status(context.Background(), date)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Status(%q) err = %v, want ErrInvalidInput", date, err)
		}
	}
	var in *InputError
	if _, err := f.svc.Status(context.Background(), ""); !errors.As(err, &in) || in.Msg != "Date is required" {
		t.Fatalf("missing date message = %v", err)
	}
}

func TestStatusStoreFailure(t *testing.T) {
	t.Parallel()
	f := newSeatFixture(40)
	boom := errors.New("boom")
	f.seats.err = boom

	_, err := f.svc.Status(context.Background(), "2025-06-01")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatalf("store failure must not look like input error")
	}
}

func TestReservedDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeatFixture(40)
	f.res.rows = []model.Reservation{
		{ID: "r1", SeatNumber: "3", Date: "2025-06-01", Email: "a@x.com"},
		{ID: "r2", SeatNumber: "1", Date: "2025-06-01", Email: "gone@x.com"},
		{ID: "r3", SeatNumber: "2", Date: "2025-06-02", Email: "b@x.com"},
	}

	got, err := f.svc.ReservedDetails(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	want := []model.ReservedDetail{
		{ID: "r1", SeatNumber: "3", Email: "a@x.com", FullName: "Ann Able"},
		{ID: "r2", SeatNumber: "1", Email: "gone@x.com", FullName: model.UnknownName},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("details = %+v, want %+v", got, want)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeatFixture(40)
	f.res.rows = []model.Reservation{{ID: "r1", SeatNumber: "3", Date: "2025-06-01", Email: "b@x.com"}}

	d, err := f.svc.Lookup(ctx, "3", "2025-06-01")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.ID != "r1" || d.FullName != "Ben Baker" {
		t.Fatalf("lookup = %+v", d)
	}
	if _, err := f.svc.Lookup(ctx, "4", "2025-06-01"); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("missing lookup err = %v, want ErrReservationNotFound", err)
	}
	if _, err := f.svc.Lookup(ctx, "", "2025-06-01"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty seat err = %v, want ErrInvalidInput", err)
	}
}

func TestListByEmailNormalizes(t *testing.T) {
	t.Parallel()
	f := newSeatFixture(40)
	f.res.rows = []model.Reservation{
		{ID: "r1", SeatNumber: "3", Date: "2025-06-01", Email: "a@x.com"},
		{ID: "r2", SeatNumber: "4", Date: "2025-06-01", Email: "b@x.com"},
	}
	list, err := f.svc.ListByEmail(context.Background(), "  A@X.com ")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "r1" {
		t.Fatalf("list = %+v", list)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
