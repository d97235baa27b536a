package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parked(vehicleID uuid.UUID, code string) *domain.Transaction {
	return &domain.Transaction{
		Code: code, VehicleID: vehicleID, AreaID: uuid.New(), VehicleTypeID: uuid.New(),
		EntryTime: time.Now(), Status: domain.StatusParked, PaymentStatus: domain.PaymentUnpaid,
	}
}

func TestWithinTx_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "B1234XY", IsActive: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Repos().Vehicles.FindByPlate(ctx, "B1234XY")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionRepo_EnforcesSingleParkedSession(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	vehicleID := uuid.New()

	_, err := repos.Transactions.Create(ctx, parked(vehicleID, "TRX-20240301-0001"))
	require.NoError(t, err)

	_, err = repos.Transactions.Create(ctx, parked(vehicleID, "TRX-20240301-0002"))
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveSession)

	_, err = repos.Transactions.Create(ctx, parked(uuid.New(), "TRX-20240301-0001"))
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
}

func TestTransactionRepo_LatestCodeIsNumericallyGreatest(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()

	for _, code := range []string{"TRX-20240301-9999", "TRX-20240301-10000", "TRX-20240302-0001"} {
		_, err := repos.Transactions.Create(ctx, parked(uuid.New(), code))
		require.NoError(t, err)
	}

	latest, err := repos.Transactions.FindLatestCodeWithPrefix(ctx, "TRX-20240301-")
	require.NoError(t, err)
	assert.Equal(t, "TRX-20240301-10000", latest)
}

func TestTransactionRepo_SearchPrefersExactMatch(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()

	exact, err := repos.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "B12", IsActive: true})
	require.NoError(t, err)
	partial, err := repos.Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "B123", IsActive: true})
	require.NoError(t, err)

	older := parked(exact.ID, "TRX-20240301-0001")
	older.EntryTime = time.Now().Add(-time.Hour)
	_, err = repos.Transactions.Create(ctx, older)
	require.NoError(t, err)
	_, err = repos.Transactions.Create(ctx, parked(partial.ID, "TRX-20240301-0002"))
	require.NoError(t, err)

	found, err := repos.Transactions.SearchParked(ctx, "B12", "B12", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, exact.ID, found[0].VehicleID)
}
