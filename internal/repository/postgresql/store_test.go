package postgresql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTx_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	areaID, typeID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions WHERE area_id = \$1 AND vehicle_type_id = \$2 AND status = \$3`).
		WithArgs(areaID, typeID, "PARKED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	store := NewStore(db)
	var parked int
	err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Transactions.CountParked(ctx, areaID, typeID)
		parked = n
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, parked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewStore(db).WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCapacityRepository_BoardClampsAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	areaID, carID, bikeID := uuid.New(), uuid.New(), uuid.New()
	rows := sqlmock.NewRows([]string{"id", "code", "name", "id", "code", "name", "total_slots", "occupied"}).
		AddRow(areaID.String(), "A1", "Basement", carID.String(), "CAR", "Car", 10, 4).
		AddRow(areaID.String(), "A1", "Basement", bikeID.String(), "MOTOR", "Motorcycle", 2, 3)
	mock.ExpectQuery(`FROM capacities c`).WithArgs("PARKED").WillReturnRows(rows)

	board, err := NewPgCapacityRepository(db).Board(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, 6, board[0].Available)
	assert.Equal(t, 0, board[1].Available)
	assert.Equal(t, "MOTOR", board[1].VehicleTypeCode)
}

func TestVehicleTypeRepository_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM vehicle_types WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPgVehicleTypeRepository(db).Delete(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
