package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gopkg.in/guregu/null.v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type staticBoard []domain.CapacityStatus

func (b staticBoard) Board(ctx context.Context) ([]domain.CapacityStatus, error) { return b, nil }

type HistorySuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service
	ids map[string]uuid.UUID
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2024, month, day, hour, minute, 0, 0, time.UTC)
}

func (s *HistorySuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(filepath.Join(s.T().TempDir(), "history.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&AreaModel{}, &VehicleTypeModel{}, &VehicleModel{}, &TransactionModel{}))
	s.db = db
	s.ids = map[string]uuid.UUID{}

	area := AreaModel{ID: uuid.New(), Code: "A1", Name: "Basement 1"}
	car := VehicleTypeModel{ID: uuid.New(), Code: "CAR", Name: "Car"}
	s.Require().NoError(db.Create(&area).Error)
	s.Require().NoError(db.Create(&car).Error)
	for _, plate := range []string{"B1XY", "B2XY", "B3XY", "B4XY"} {
		v := VehicleModel{ID: uuid.New(), PlateNumber: plate, VehicleTypeID: car.ID, IsActive: true}
		s.Require().NoError(db.Create(&v).Error)
		s.ids[plate] = v.ID
	}

	add := func(code, plate string, status domain.TransactionStatus, entry time.Time, exit null.Time, total int64) {
		trx := TransactionModel{
			ID: uuid.New(), Code: code, VehicleID: s.ids[plate], AreaID: area.ID, VehicleTypeID: car.ID,
			EntryTime: entry, ExitTime: exit, TotalPaid: total, PaymentStatus: "UNPAID", Status: string(status),
		}
		if status == domain.StatusCompleted {
			trx.PaymentStatus = "PAID"
			trx.PaymentMethod = null.StringFrom("CASH")
			trx.DurationMinutes = null.IntFrom(int64(exit.Time.Sub(entry).Minutes()))
		}
		s.Require().NoError(db.Create(&trx).Error)
		s.ids[code] = trx.ID
	}
	add("TRX-20240315-0002", "B1XY", domain.StatusParked, at(3, 15, 11, 0), null.Time{}, 0)
	add("TRX-20240315-0003", "B2XY", domain.StatusParked, at(3, 15, 11, 30), null.Time{}, 0)
	add("TRX-20240315-0001", "B3XY", domain.StatusCompleted, at(3, 15, 8, 0), null.TimeFrom(at(3, 15, 9, 0)), 5000)
	add("TRX-20240314-0001", "B4XY", domain.StatusCompleted, at(3, 14, 8, 0), null.TimeFrom(at(3, 14, 10, 0)), 4000)
	add("TRX-20240310-0001", "B3XY", domain.StatusCancelled, at(3, 10, 8, 0), null.Time{}, 0)
	add("TRX-20240105-0001", "B4XY", domain.StatusCompleted, at(1, 5, 8, 0), null.TimeFrom(at(1, 5, 9, 0)), 3000)

	board := staticBoard{{AreaCode: "A1", VehicleTypeCode: "CAR", TotalSlots: 10, Occupied: 2, Available: 8}}
	s.svc = NewService(db, clock.NewFixed(at(3, 15, 12, 0)), board)
}

func codes(rows []TransactionRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Code
	}
	return out
}

func (s *HistorySuite) TestListActive() {
	page, err := s.svc.ListActive(context.Background(), ActiveFilter{})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
	s.Equal([]string{"TRX-20240315-0003", "TRX-20240315-0002"}, codes(page.Items))
	s.Equal("B2XY", page.Items[0].PlateNumber)
	s.Equal("A1", page.Items[0].AreaCode)
	s.Equal("Car", page.Items[0].VehicleTypeName)
	s.False(page.Items[0].ExitTime.Valid)

	page, err = s.svc.ListActive(context.Background(), ActiveFilter{Search: "b1"})
	s.Require().NoError(err)
	s.Equal([]string{"TRX-20240315-0002"}, codes(page.Items))

	page, err = s.svc.ListActive(context.Background(), ActiveFilter{Search: "nothing%"})
	s.Require().NoError(err)
	s.Zero(page.Total)
	s.NotNil(page.Items)
}

func (s *HistorySuite) TestListHistory() {
	ctx := context.Background()

	page, err := s.svc.ListHistory(ctx, HistoryFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"TRX-20240315-0001", "TRX-20240314-0001", "TRX-20240310-0001", "TRX-20240105-0001"}, codes(page.Items))
	s.Equal(20, page.PerPage)

	page, err = s.svc.ListHistory(ctx, HistoryFilter{
		Statuses: []domain.TransactionStatus{domain.StatusCompleted},
		From:     at(3, 1, 0, 0),
		PerPage:  1,
		Page:     2,
	})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
	s.Equal([]string{"TRX-20240314-0001"}, codes(page.Items))
	s.Equal(int64(4000), page.Items[0].TotalPaid)
	s.Equal(int64(120), page.Items[0].DurationMinutes.Int64)

	page, err = s.svc.ListHistory(ctx, HistoryFilter{Search: "B3XY"})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)

	_, err = s.svc.ListHistory(ctx, HistoryFilter{Statuses: []domain.TransactionStatus{"LOST"}})
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.ListHistory(ctx, HistoryFilter{From: at(3, 2, 0, 0), To: at(3, 1, 0, 0)})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *HistorySuite) TestStats() {
	stats, err := s.svc.Stats(context.Background())
	s.Require().NoError(err)

	s.Equal(int64(2), stats.ParkedNow)
	s.Equal(1, stats.CompletedToday)
	s.Equal(int64(5000), stats.RevenueToday)
	s.Equal(int64(4000), stats.RevenueYesterday)
	s.InDelta(25.0, stats.RevenueTrendPercent, 0.001)

	s.Require().Len(stats.Weekly, 7)
	s.Equal("2024-03-09", stats.Weekly[0].Label)
	s.Equal(int64(4000), stats.Weekly[5].Revenue)
	s.Equal(SeriesPoint{Label: "2024-03-15", Count: 1, Revenue: 5000}, stats.Weekly[6])

	s.Require().Len(stats.Monthly, 31)
	s.Equal(int64(5000), stats.Monthly[14].Revenue)

	s.Require().Len(stats.Yearly, 12)
	s.Equal(int64(3000), stats.Yearly[0].Revenue)
	s.Equal(SeriesPoint{Label: "2024-03", Count: 2, Revenue: 9000}, stats.Yearly[2])

	s.Len(stats.Occupancy, 1)
}

func TestPaginateClamps(t *testing.T) {
	_, page, perPage := Paginate(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPerPage, perPage)

	_, page, perPage = Paginate(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, maxPerPage, perPage)
}

func TestTrendPercent(t *testing.T) {
	assert.Equal(t, 0.0, trendPercent(0, 0))
	assert.Equal(t, 100.0, trendPercent(10, 0))
	assert.Equal(t, -50.0, trendPercent(50, 100))
	assert.InDelta(t, 33.3, trendPercent(4, 3), 0.001)
}

func TestDaysIn(t *testing.T) {
	require.Equal(t, 29, daysIn(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 31, daysIn(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}
