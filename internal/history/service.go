// Package history is the read side over transactions: paginated listings and
// dashboard statistics. Nothing here writes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BoardSource supplies the per area and vehicle type occupancy.
type BoardSource interface {
	Board(ctx context.Context) ([]domain.CapacityStatus, error)
}

type Service struct {
	db    *gorm.DB
	clock clock.Clock
	board BoardSource
}

func NewService(db *gorm.DB, clk clock.Clock, board BoardSource) *Service {
	return &Service{db: db, clock: clk, board: board}
}

// OpenPostgres wraps an existing connection pool so the read side shares it
// with the repositories.
func OpenPostgres(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}

type ActiveFilter struct {
	Search  string
	Page    int
	PerPage int
}

type HistoryFilter struct {
	From     time.Time
	To       time.Time
	Statuses []domain.TransactionStatus // defaults to COMPLETED and CANCELLED
	AreaID   uuid.NullUUID
	Search   string
	Page     int
	PerPage  int
}

func (s *Service) rows(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("transactions AS t").
		Joins("JOIN vehicles v ON v.id = t.vehicle_id").
		Joins("JOIN parking_areas a ON a.id = t.area_id").
		Joins("JOIN vehicle_types vt ON vt.id = t.vehicle_type_id")
}

const rowColumns = `t.id, t.code, v.plate_number, a.code AS area_code, a.name AS area_name,
	vt.code AS vehicle_type_code, vt.name AS vehicle_type_name, t.entry_time, t.exit_time,
	t.duration_minutes, t.total_paid, t.payment_method, t.status`

func (s *Service) list(ctx context.Context, order string, page, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (Page[TransactionRow], error) {
	paginate, page, perPage := Paginate(page, perPage)
	result := Page[TransactionRow]{Items: []TransactionRow{}, Page: page, PerPage: perPage}

	if err := s.rows(ctx).Scopes(scopes...).Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count transactions: %w", err)
	}
	if result.Total == 0 {
		return result, nil
	}
	err := s.rows(ctx).Select(rowColumns).Scopes(scopes...).Scopes(paginate).
		Order(order).Scan(&result.Items).Error
	if err != nil {
		return result, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// ListActive lists PARKED transactions, latest entry first.
func (s *Service) ListActive(ctx context.Context, f ActiveFilter) (Page[TransactionRow], error) {
	return s.list(ctx, "t.entry_time DESC, t.code DESC", f.Page, f.PerPage,
		WithStatuses(domain.StatusParked), WithSearch(f.Search))
}

// ListHistory lists finished transactions by entry time, latest first.
func (s *Service) ListHistory(ctx context.Context, f HistoryFilter) (Page[TransactionRow], error) {
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = []domain.TransactionStatus{domain.StatusCompleted, domain.StatusCancelled}
	}
	for _, st := range statuses {
		if !st.Valid() {
			return Page[TransactionRow]{}, fmt.Errorf("%w: unknown status '%s'", domain.ErrValidation, st)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return Page[TransactionRow]{}, fmt.Errorf("%w: 'from' must be before 'to'", domain.ErrValidation)
	}
	return s.list(ctx, "t.entry_time DESC, t.code DESC", f.Page, f.PerPage,
		WithStatuses(statuses...), WithEntryBetween(f.From, f.To), WithArea(f.AreaID), WithSearch(f.Search))
}

type SeriesPoint struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type Stats struct {
	GeneratedAt         time.Time               `json:"generated_at"`
	ParkedNow           int64                   `json:"parked_now"`
	CompletedToday      int                     `json:"completed_today"`
	RevenueToday        int64                   `json:"revenue_today"`
	RevenueYesterday    int64                   `json:"revenue_yesterday"`
	RevenueTrendPercent float64                 `json:"revenue_trend_percent"`
	Weekly              []SeriesPoint           `json:"weekly"`
	Monthly             []SeriesPoint           `json:"monthly"`
	Yearly              []SeriesPoint           `json:"yearly"`
	Occupancy           []domain.CapacityStatus `json:"occupancy"`
}

type exitRow struct {
	ExitTime  time.Time
	TotalPaid int64
}

// Stats aggregates the dashboard figures. Days are calendar days in the
// clock's location.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	loc := s.clock.Location()
	now := s.clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	since := yearStart
	for _, t := range []time.Time{weekStart, today.AddDate(0, 0, -1)} {
		if t.Before(since) {
			since = t
		}
	}

	stats := &Stats{GeneratedAt: now}
	if err := s.db.WithContext(ctx).Model(&TransactionModel{}).
		Where("status = ?", string(domain.StatusParked)).Count(&stats.ParkedNow).Error; err != nil {
		return nil, fmt.Errorf("count parked: %w", err)
	}

	var exits []exitRow
	err := s.db.WithContext(ctx).Model(&TransactionModel{}).
		Select("exit_time, total_paid").
		Where("status = ? AND exit_time >= ? AND exit_time < ?", string(domain.StatusCompleted), since.UTC(), today.AddDate(0, 0, 1).UTC()).
		Scan(&exits).Error
	if err != nil {
		return nil, fmt.Errorf("load completed transactions: %w", err)
	}

	weekly := dailySeries(weekStart, 7)
	monthly := dailySeries(monthStart, daysIn(monthStart))
	yearly := make([]SeriesPoint, 12)
	for i := range yearly {
		yearly[i].Label = yearStart.AddDate(0, i, 0).Format("2006-01")
	}

	for _, e := range exits {
		at := e.ExitTime.In(loc)
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
		switch {
		case day.Equal(today):
			stats.CompletedToday++
			stats.RevenueToday += e.TotalPaid
		case day.Equal(today.AddDate(0, 0, -1)):
			stats.RevenueYesterday += e.TotalPaid
		}
		addTo(weekly, daysBetween(weekStart, day), e.TotalPaid)
		addTo(monthly, daysBetween(monthStart, day), e.TotalPaid)
		if at.Year() == now.Year() {
			addTo(yearly, int(at.Month())-1, e.TotalPaid)
		}
	}
	stats.Weekly, stats.Monthly, stats.Yearly = weekly, monthly, yearly
	stats.RevenueTrendPercent = trendPercent(stats.RevenueToday, stats.RevenueYesterday)

	if s.board != nil {
		if stats.Occupancy, err = s.board.Board(ctx); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func dailySeries(start time.Time, days int) []SeriesPoint {
	series := make([]SeriesPoint, days)
	for i := range series {
		series[i].Label = start.AddDate(0, 0, i).Format(time.DateOnly)
	}
	return series
}

func addTo(series []SeriesPoint, i int, revenue int64) {
	if i < 0 || i >= len(series) {
		return
	}
	series[i].Count++
	series[i].Revenue += revenue
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}

// daysBetween counts calendar days from a to b, both midnight in the same zone.
func daysBetween(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// trendPercent is the change of today against yesterday, one decimal place.
func trendPercent(today, yesterday int64) float64 {
	if yesterday == 0 {
		if today > 0 {
			return 100
		}
		return 0
	}
	return math.Round(float64(today-yesterday)/float64(yesterday)*1000) / 10
}
