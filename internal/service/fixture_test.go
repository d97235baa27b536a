package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	clock     *clock.Fixed
	events    *recordingPublisher
	trx       *TransactionService
	tariffs   *TariffService
	discounts *DiscountService
	capacity  *CapacityLedger

	area *domain.ParkingArea
	car  *domain.VehicleType
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TransactionEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.TransactionEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []domain.TransactionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.TransactionEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var fixtureStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// newFixture seeds area A1 with slots Car slots and no tariff bands.
func newFixture(t *testing.T, slots int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	clk := clock.NewFixed(fixtureStart)
	events := &recordingPublisher{}

	repos := store.Repos()
	area, err := repos.Areas.Create(ctx, &domain.ParkingArea{Code: "A1", Name: "Basement 1"})
	require.NoError(t, err)
	car, err := repos.VehicleTypes.Create(ctx, &domain.VehicleType{Code: "CAR", Name: "Car"})
	require.NoError(t, err)
	_, err = repos.Capacities.Upsert(ctx, &domain.Capacity{AreaID: area.ID, VehicleTypeID: car.ID, TotalSlots: slots})
	require.NoError(t, err)

	return &fixture{
		store:     store,
		clock:     clk,
		events:    events,
		trx:       NewTransactionService(store, clk, events),
		tariffs:   NewTariffService(store),
		discounts: NewDiscountService(store, clk),
		capacity:  NewCapacityLedger(store),
		area:      area,
		car:       car,
	}
}

func (f *fixture) band(t *testing.T, min, max int, price int64) *domain.TariffBand {
	t.Helper()
	band, err := f.tariffs.CreateBand(context.Background(), domain.TariffBandDTO{
		VehicleTypeID: f.car.ID, DurationMin: min, DurationMax: max, Price: price,
	})
	require.NoError(t, err)
	return band
}

func (f *fixture) checkIn(t *testing.T, plate string) *domain.Transaction {
	t.Helper()
	trx, err := f.trx.CheckIn(context.Background(), f.request(plate))
	require.NoError(t, err)
	return trx
}

func (f *fixture) request(plate string) domain.CheckInRequest {
	return domain.CheckInRequest{Plate: plate, AreaID: f.area.ID, VehicleTypeID: f.car.ID}
}
