package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatbook/internal/config"
	"github.com/iliyamo/seatbook/internal/handler"
	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/service"
	"github.com/iliyamo/seatbook/internal/utils"
)

const testSecret = "router-secret"

// recorder implements every service the handlers need and notes which
// operation each request reached.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) note(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func (r *recorder) Status(_ context.Context, date string) (service.SeatStatus, error) {
	r.note("Status %s", date)
	return service.SeatStatus{AvailableSeats: []string{"1"}, ReservedSeats: []string{}, DisabledSeats: []string{}, TotalSeats: 1}, nil
}
func (r *recorder) ReservedDetails(_ context.Context, date string) ([]model.ReservedDetail, error) {
	r.note("ReservedDetails %s", date)
	return []model.ReservedDetail{}, nil
}
func (r *recorder) Lookup(_ context.Context, seat, date string) (model.ReservedDetail, error) {
	r.note("Lookup %s %s", seat, date)
	return model.ReservedDetail{SeatNumber: seat}, nil
}
func (r *recorder) Reserve(_ context.Context, in service.ReserveInput) (model.Reservation, error) {
	r.note("Reserve %s", in.SeatNumber)
	return model.Reservation{ID: "r1", SeatNumber: in.SeatNumber}, nil
}
func (r *recorder) Update(_ context.Context, id string, in service.ReserveInput) (model.Reservation, bool, error) {
	r.note("Update %s", id)
	return model.Reservation{ID: id, SeatNumber: in.SeatNumber}, false, nil
}
func (r *recorder) Cancel(_ context.Context, id string) error {
	r.note("Cancel %s", id)
	return nil
}
func (r *recorder) Disable(_ context.Context, seat string) error {
	r.note("Disable %s", seat)
	return nil
}
func (r *recorder) Release(_ context.Context, seat string) error {
	r.note("Release %s", seat)
	return nil
}
func (r *recorder) AddSeat(context.Context) (string, error) {
	r.note("AddSeat")
	return "41", nil
}
func (r *recorder) Usage(_ context.Context, start, end string) (service.UsageReport, error) {
	r.note("Usage %s %s", start, end)
	return service.UsageReport{}, nil
}
func (r *recorder) ListByEmail(_ context.Context, email string) ([]model.Reservation, error) {
	r.note("ListByEmail %s", email)
	return []model.Reservation{}, nil
}
func (r *recorder) Reschedule(_ context.Context, id, seat, date string) (model.Reservation, error) {
	r.note("Reschedule %s %s %s", id, seat, date)
	return model.Reservation{ID: id, SeatNumber: seat, Date: date}, nil
}
func (r *recorder) Signup(_ context.Context, in service.SignupInput) (service.AccountView, error) {
	r.note("Signup %s", in.Email)
	return service.AccountView{Email: in.Email}, nil
}
func (r *recorder) Login(_ context.Context, email, _ string) (service.LoginResult, error) {
	r.note("Login %s", email)
	return service.LoginResult{Token: "tok"}, nil
}

func newTestServer(t *testing.T, cfg config.Config, rdb *redis.Client) (*echo.Echo, *recorder) {
	t.Helper()
	cfg.JWTSecret = testSecret
	rec := &recorder{}
	e := New(Deps{
		Config:       cfg,
		Redis:        rdb,
		Health:       handler.Health{},
		Auth:         handler.NewAuthHandler(rec),
		Seats:        handler.NewSeatHandler(rec, rec),
		Reservations: handler.NewReservationHandler(rec),
	})
	return e, rec
}

func do(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type route struct {
	method, target, body string
	want                 string
}

var apiRoutes = []route{
	{http.MethodGet, "/api/seats?date=2025-06-01", "", "Status 2025-06-01"},
	{http.MethodGet, "/api/seats/reserved-details?date=2025-06-01", "", "ReservedDetails 2025-06-01"},
	{http.MethodGet, "/api/seats/reservation?seatNumber=4&date=2025-06-01", "", "Lookup 4 2025-06-01"},
	{http.MethodGet, "/api/seats/usage-report?startDate=2025-06-01&endDate=2025-06-07", "", "Usage 2025-06-01 2025-06-07"},
	{http.MethodPost, "/api/seats/reserve", `{"seatNumber":4,"date":"2025-06-01","email":"a@x.com"}`, "Reserve 4"},
	{http.MethodPut, "/api/seats/reserve/r1", `{"seatNumber":"4","date":"2025-06-01","email":"a@x.com"}`, "Update r1"},
	{http.MethodDelete, "/api/seats/reserve/r1", "", "Cancel r1"},
	{http.MethodPost, "/api/seats/disable", `{"seatNumber":"3"}`, "Disable 3"},
	{http.MethodPost, "/api/seats/release", `{"seatNumber":"3"}`, "Release 3"},
	{http.MethodPost, "/api/seats/add-seat", "", "AddSeat"},
	{http.MethodGet, "/api/reservations/a@x.com", "", "ListByEmail a@x.com"},
	{http.MethodPut, "/api/reservations/r2", `{"seatNumber":"6","date":"2025-06-03"}`, "Reschedule r2 6 2025-06-03"},
	{http.MethodDelete, "/api/reservations/r2", "", "Cancel r2"},
}

func TestRoutesReachHandlers(t *testing.T) {
	t.Parallel()
	e, calls := newTestServer(t, config.Config{}, nil)

	for _, rt := range apiRoutes {
		res := do(e, rt.method, rt.target, rt.body, "")
		if res.Code != http.StatusOK {
			t.Errorf("%s %s: status %d (%s)", rt.method, rt.target, res.Code, res.Body.String())
			continue
		}
		if got := calls.last(); got != rt.want {
			t.Errorf("%s %s reached %q, want %q", rt.method, rt.target, got, rt.want)
		}
	}

	if res := do(e, http.MethodGet, "/healthz", "", ""); res.Code != http.StatusOK {
		t.Errorf("healthz status %d", res.Code)
	}
	if res := do(e, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"pw"}`, ""); res.Code != http.StatusOK || calls.last() != "Login a@x.com" {
		t.Errorf("login: %d %q", res.Code, calls.last())
	}
	if res := do(e, http.MethodPost, "/api/signup", `{"fullName":"Ann","email":"a@x.com","password":"pw"}`, ""); res.Code != http.StatusCreated {
		t.Errorf("signup status %d", res.Code)
	}
	if res := do(e, http.MethodPost, "/api/reservations/a@x.com", "", ""); res.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/reservations/:email status %d, want 405", res.Code)
	}
}

func TestRequireAuthGuardsAPI(t *testing.T) {
	t.Parallel()
	e, calls := newTestServer(t, config.Config{RequireAuth: true}, nil)
	tok, err := utils.NewAccessToken(testSecret, "acc-1", "a@x.com", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for _, rt := range apiRoutes {
		before := calls.last()
		if res := do(e, rt.method, rt.target, rt.body, ""); res.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", rt.method, rt.target, res.Code)
		}
		if calls.last() != before {
			t.Errorf("%s %s reached a handler without a token", rt.method, rt.target)
		}
		if res := do(e, rt.method, rt.target, rt.body, "garbage"); res.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: status %d, want 401", rt.method, rt.target, res.Code)
		}
		if res := do(e, rt.method, rt.target, rt.body, tok.Token); res.Code != http.StatusOK || calls.last() != rt.want {
			t.Errorf("%s %s with token: status %d reached %q", rt.method, rt.target, res.Code, calls.last())
		}
	}

	// Health, signup and login stay open.
	if res := do(e, http.MethodGet, "/healthz", "", ""); res.Code != http.StatusOK {
		t.Errorf("healthz status %d", res.Code)
	}
	if res := do(e, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"pw"}`, ""); res.Code != http.StatusOK {
		t.Errorf("login status %d", res.Code)
	}
}

func TestMeNeedsToken(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t, config.Config{}, nil)
	tok, _ := utils.NewAccessToken(testSecret, "acc-1", "a@x.com", time.Hour, time.Now())

	if res := do(e, http.MethodGet, "/api/me", "", ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /api/me status %d", res.Code)
	}
	res := do(e, http.MethodGet, "/api/me", "", tok.Token)
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"acc-1"`) {
		t.Fatalf("/api/me: %d %s", res.Code, res.Body.String())
	}
}

func TestWriteRoutesPurgeCache(t *testing.T) {
	t.Parallel()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("skipping Redis tests: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	cache := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       fmt.Sprintf("seatbook-router-test:%d", time.Now().UnixNano()),
		MaxBodyBytes: 1 << 20,
	}
	t.Cleanup(func() {
		ctx := context.Background()
		if keys, err := rdb.Keys(ctx, cache.Prefix+"*").Result(); err == nil && len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
	})
	e, _ := newTestServer(t, config.Config{Cache: cache}, rdb)

	const status = "/api/seats?date=2025-06-01"
	for _, rt := range apiRoutes {
		if rt.method == http.MethodGet {
			continue
		}
		do(e, http.MethodGet, status, "", "")
		if got := do(e, http.MethodGet, status, "", "").Header().Get("X-Cache"); got != "HIT" {
			t.Fatalf("warm cache before %s %s: X-Cache %q", rt.method, rt.target, got)
		}
		if res := do(e, rt.method, rt.target, rt.body, ""); res.Code != http.StatusOK {
			t.Fatalf("%s %s: status %d", rt.method, rt.target, res.Code)
		}
		if got := do(e, http.MethodGet, status, "", "").Header().Get("X-Cache"); got != "MISS" {
			t.Errorf("%s %s did not purge the cache: X-Cache %q", rt.method, rt.target, got)
		}
	}
}
