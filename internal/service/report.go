package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/seatbook/internal/model"
)

// ReportService aggregates reservations over a date range.
type ReportService struct {
	reservations ReservationStore
	accounts     AccountStore
	seats        SeatConfigStore
}

func NewReportService(reservations ReservationStore, accounts AccountStore, seats SeatConfigStore) *ReportService {
	return &ReportService{reservations: reservations, accounts: accounts, seats: seats}
}

// UsageDetail is one reservation inside a daily report.
type UsageDetail struct {
	SeatNumber string `json:"seatNumber"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Date       string `json:"date"`
}

// DailyUsage summarises one date that has at least one reservation.
type DailyUsage struct {
	Date               string        `json:"date"`
	TotalSeats         int           `json:"totalSeats"`
	AvailableSeats     int           `json:"availableSeats"`
	ReservedSeats      int           `json:"reservedSeats"`
	DisabledSeats      int           `json:"disabledSeats"`
	ReservationDetails []UsageDetail `json:"reservationDetails"`
}

// UsageSummary covers the whole range.  TotalReservedSeats counts
// distinct seat numbers across every day, so a seat reserved on two
// days is counted once.
type UsageSummary struct {
	TotalSeats          int `json:"totalSeats"`
	TotalAvailableSeats int `json:"totalAvailableSeats"`
	TotalReservedSeats  int `json:"totalReservedSeats"`
	TotalDisabledSeats  int `json:"totalDisabledSeats"`
	TotalReservations   int `json:"totalReservations"`
}

type UsageReport struct {
	Summary      UsageSummary `json:"summary"`
	DailyReports []DailyUsage `json:"dailyReports"`
}

// Usage builds the usage report for [start, end], both inclusive.
func (s *ReportService) Usage(ctx context.Context, start, end string) (UsageReport, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return UsageReport{}, invalid("Start date and end date are required")
	}
	from, err := parseDate(start)
	if err != nil {
		return UsageReport{}, err
	}
	to, err := parseDate(end)
	if err != nil {
		return UsageReport{}, err
	}
	if from.After(to) {
		return UsageReport{}, invalid("Start date must be before or equal to end date")
	}

	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return UsageReport{}, fmt.Errorf("load seat config: %w", err)
	}
	list, err := s.reservations.ListInRange(ctx, start, end)
	if err != nil {
		return UsageReport{}, fmt.Errorf("list reservations: %w", err)
	}
	names, err := fullNames(ctx, s.accounts, list)
	if err != nil {
		return UsageReport{}, err
	}
	return BuildUsageReport(cfg, list, names), nil
}

// BuildUsageReport buckets list by date.  Days are sorted
// chronologically; details keep the order of list.  names maps email to
// full name and falls back to model.UnknownName.
func BuildUsageReport(cfg model.SeatConfig, list []model.Reservation, names map[string]string) UsageReport {
	disabled := len(cfg.DisabledSeats)
	byDate := make(map[string]*DailyUsage)
	daySeats := make(map[string]map[string]struct{})
	allSeats := make(map[string]struct{})

	for _, r := range list {
		day, ok := byDate[r.Date]
		if !ok {
			day = &DailyUsage{
				Date:               r.Date,
				TotalSeats:         cfg.TotalSeats,
				DisabledSeats:      disabled,
				ReservationDetails: []UsageDetail{},
			}
			byDate[r.Date] = day
			daySeats[r.Date] = make(map[string]struct{})
		}
		day.ReservationDetails = append(day.ReservationDetails, UsageDetail{
			SeatNumber: r.SeatNumber,
			Email:      r.Email,
			FullName:   displayName(names, r.Email),
			Date:       r.Date,
		})
		daySeats[r.Date][r.SeatNumber] = struct{}{}
		allSeats[r.SeatNumber] = struct{}{}
	}

	days := make([]DailyUsage, 0, len(byDate))
	for date, day := range byDate {
		day.ReservedSeats = len(daySeats[date])
		day.AvailableSeats = nonNegative(cfg.TotalSeats - day.ReservedSeats - disabled)
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return UsageReport{
		Summary: UsageSummary{
			TotalSeats:          cfg.TotalSeats,
			TotalAvailableSeats: nonNegative(cfg.TotalSeats - len(allSeats) - disabled),
			TotalReservedSeats:  len(allSeats),
			TotalDisabledSeats:  disabled,
			TotalReservations:   len(list),
		},
		DailyReports: days,
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
