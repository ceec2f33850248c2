package service

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/queue"
	"github.com/iliyamo/seatbook/internal/repository"
)

type fakeAccounts struct {
	mu    sync.Mutex
	byEml map[string]model.Account
	err   error
}

func newFakeAccounts(accounts ...model.Account) *fakeAccounts {
	f := &fakeAccounts{byEml: map[string]model.Account{}}
	for _, a := range accounts {
		f.byEml[a.Email] = a
	}
	return f
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEml[a.Email]; ok {
		return repository.ErrDuplicate
	}
	f.byEml[a.Email] = *a
	return nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Account{}, f.err
	}
	a, ok := f.byEml[email]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) FullNames(_ context.Context, emails []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for _, e := range emails {
		if a, ok := f.byEml[e]; ok {
			out[e] = a.FullName
		}
	}
	return out, nil
}

// fakeReservations keeps insertion order, which stands in for created_at
// ordering in the SQL stores.
type fakeReservations struct {
	mu   sync.Mutex
	rows []model.Reservation
	err  error
}

func (f *fakeReservations) taken(seat, date, except string) bool {
	for _, r := range f.rows {
		if r.SeatNumber == seat && r.Date == date && r.ID != except {
			return true
		}
	}
	return false
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.taken(res.SeatNumber, res.Date, "") {
		return repository.ErrDuplicate
	}
	f.rows = append(f.rows, *res)
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id string) (model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrNotFound
}

func (f *fakeReservations) FindBySeatAndDate(_ context.Context, seat, date string) (model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Reservation{}, f.err
	}
	for _, r := range f.rows {
		if r.SeatNumber == seat && r.Date == date {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrNotFound
}

func (f *fakeReservations) filter(keep func(model.Reservation) bool) []model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeReservations) ListByDate(_ context.Context, date string) ([]model.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(r model.Reservation) bool { return r.Date == date }), nil
}

func (f *fakeReservations) ListByEmail(_ context.Context, email string) ([]model.Reservation, error) {
	return f.filter(func(r model.Reservation) bool { return r.Email == email }), nil
}

func (f *fakeReservations) ListInRange(_ context.Context, start, end string) ([]model.Reservation, error) {
	out := f.filter(func(r model.Reservation) bool { return r.Date >= start && r.Date <= end })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeReservations) Update(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rows {
		if r.ID != res.ID {
			continue
		}
		if f.taken(res.SeatNumber, res.Date, res.ID) {
			return repository.ErrDuplicate
		}
		f.rows[i] = *res
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakeReservations) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSeats struct {
	mu       sync.Mutex
	total    int
	disabled []string
	err      error
}

func newFakeSeats(total int, disabled ...string) *fakeSeats {
	return &fakeSeats{total: total, disabled: disabled}
}

func (f *fakeSeats) Get(context.Context) (model.SeatConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.SeatConfig{}, f.err
	}
	return model.SeatConfig{TotalSeats: f.total, DisabledSeats: append([]string{}, f.disabled...)}, nil
}

func (f *fakeSeats) DisableSeat(_ context.Context, seat string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.disabled {
		if s == seat {
			return repository.ErrDuplicate
		}
	}
	f.disabled = append(f.disabled, seat)
	return nil
}

func (f *fakeSeats) ReleaseSeat(_ context.Context, seat string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.disabled {
		if s == seat {
			f.disabled = append(f.disabled[:i], f.disabled[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeSeats) AddSeat(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.total++
	return f.total, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.SeatEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.SeatEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// sequentialIDs returns res-1, res-2, ... so tests can predict ids.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "res-" + strconv.Itoa(n)
	}
}
