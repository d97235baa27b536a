package service

import (
	"context"
	"testing"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBand_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)

	tests := []struct {
		name     string
		min, max int
		wantErr  error
	}{
		{"intersects", 30, 90, domain.ErrOverlapConflict},
		{"touches upper bound", 60, 120, domain.ErrOverlapConflict},
		{"contained", 10, 20, domain.ErrOverlapConflict},
		{"disjoint", 61, 120, nil},
		{"inverted", 200, 100, domain.ErrValidation},
		{"negative", -1, 10, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tariffs.CreateBand(ctx, domain.TariffBandDTO{
				VehicleTypeID: f.car.ID, DurationMin: tt.min, DurationMax: tt.max, Price: 1000,
			})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateBand_InactiveBandsStillBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	inactive := false
	_, err := f.tariffs.CreateBand(ctx, domain.TariffBandDTO{
		VehicleTypeID: f.car.ID, DurationMin: 0, DurationMax: 60, Price: 5000, IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = f.tariffs.CreateBand(ctx, domain.TariffBandDTO{VehicleTypeID: f.car.ID, DurationMin: 0, DurationMax: 60, Price: 6000})
	assert.ErrorIs(t, err, domain.ErrOverlapConflict)

	band, err := f.tariffs.Resolve(ctx, f.car.ID, 30)
	require.NoError(t, err)
	assert.Nil(t, band)
}

func TestCreateBand_UnknownVehicleType(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.tariffs.CreateBand(context.Background(), domain.TariffBandDTO{VehicleTypeID: uuid.New(), DurationMin: 0, DurationMax: 60})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateBand_ExcludesItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	first := f.band(t, 0, 60, 5000)
	f.band(t, 61, 120, 8000)

	updated, err := f.tariffs.UpdateBand(ctx, first.ID, domain.TariffBandDTO{
		VehicleTypeID: f.car.ID, DurationMin: 0, DurationMax: 45, Price: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.DurationMax)
	assert.True(t, updated.IsActive)

	_, err = f.tariffs.UpdateBand(ctx, first.ID, domain.TariffBandDTO{
		VehicleTypeID: f.car.ID, DurationMin: 0, DurationMax: 61, Price: 4000,
	})
	assert.ErrorIs(t, err, domain.ErrOverlapConflict)
}

func TestResolve_OverlappingBandsPickLowestMinimum(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	repos := f.store.Repos()
	// Written straight to the repository to simulate corrupted data.
	for _, b := range []domain.TariffBand{
		{VehicleTypeID: f.car.ID, DurationMin: 30, DurationMax: 90, Price: 7000, IsActive: true},
		{VehicleTypeID: f.car.ID, DurationMin: 0, DurationMax: 60, Price: 5000, IsActive: true},
	} {
		_, err := repos.Tariffs.Create(ctx, &b)
		require.NoError(t, err)
	}

	band, err := f.tariffs.Resolve(ctx, f.car.ID, 45)
	require.NoError(t, err)
	require.NotNil(t, band)
	assert.Equal(t, int64(5000), band.Price)

	band, err = f.tariffs.Resolve(ctx, f.car.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, 0, band.DurationMin)

	band, err = f.tariffs.Resolve(ctx, f.car.ID, 61)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), band.Price)
}

func TestDeleteBand_BlockedOnceBilled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	billed := f.band(t, 0, 60, 5000)
	unused := f.band(t, 61, 120, 8000)

	parked := f.checkIn(t, "B1234XY")
	_, err := f.trx.CheckOut(ctx, domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	assert.ErrorIs(t, f.tariffs.DeleteBand(ctx, billed.ID), domain.ErrInUse)
	assert.NoError(t, f.tariffs.DeleteBand(ctx, unused.ID))

	bands, err := f.tariffs.ListBands(ctx, uuid.NullUUID{UUID: f.car.ID, Valid: true})
	require.NoError(t, err)
	assert.Len(t, bands, 1)
}
