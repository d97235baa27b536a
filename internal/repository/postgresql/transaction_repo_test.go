package postgresql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionRowColumns = []string{"id", "code", "vehicle_id", "area_id", "vehicle_type_id", "tariff_band_id",
	"entry_time", "exit_time", "duration_minutes", "base_price", "discount_percent", "total_paid",
	"payment_method", "payment_status", "status", "check_in_operator_id", "check_out_operator_id",
	"created_at", "updated_at"}

func newMock(t *testing.T) (*pgTransactionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &pgTransactionRepository{db: db}, mock
}

func TestTransactionRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := newMock(t)
	id := uuid.New()
	entry := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(transactionRowColumns).AddRow(
		id.String(), "TRX-20240301-0001", uuid.NewString(), uuid.NewString(), uuid.NewString(), nil,
		entry, nil, nil, 0, "0.00", 0,
		nil, "UNPAID", "PARKED", nil, nil,
		entry, entry,
	)
	mock.ExpectQuery(`FROM transactions t WHERE t.id = \$1 FOR UPDATE`).WithArgs(id).WillReturnRows(rows)

	trx, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, trx.ID)
	assert.Equal(t, domain.StatusParked, trx.Status)
	assert.False(t, trx.ExitTime.Valid)
	assert.False(t, trx.TariffBandID.Valid)
	assert.True(t, trx.DiscountPercent.Equal(decimal.Zero))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM transactions t WHERE t.id = \$1`).WithArgs(id).WillReturnRows(sqlmock.NewRows(transactionRowColumns))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRepository_Create_MapsParkedIndexViolation(t *testing.T) {
	repo, mock := newMock(t)
	trx := &domain.Transaction{
		ID: uuid.New(), Code: "TRX-20240301-0002", VehicleID: uuid.New(), AreaID: uuid.New(), VehicleTypeID: uuid.New(),
		EntryTime: time.Now(), DiscountPercent: decimal.Zero, PaymentStatus: domain.PaymentUnpaid, Status: domain.StatusParked,
	}
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_one_parked_per_vehicle"})

	_, err := repo.Create(context.Background(), trx)
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveSession)

	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_code_key"})
	_, err = repo.Create(context.Background(), trx)
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	assert.False(t, errors.Is(err, domain.ErrDuplicateActiveSession))
}

func TestTransactionRepository_LockCodeSequence(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("trx-code:TRX-20240301-").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockCodeSequence(context.Background(), "TRX-20240301-"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_FindLatestCodeWithPrefix(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT code FROM transactions WHERE code LIKE \$1 ORDER BY length\(code\) DESC, code DESC`).
		WithArgs("TRX-20240301-%").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("TRX-20240301-0042"))

	code, err := repo.FindLatestCodeWithPrefix(context.Background(), "TRX-20240301-")
	require.NoError(t, err)
	assert.Equal(t, "TRX-20240301-0042", code)

	mock.ExpectQuery(`SELECT code FROM transactions`).
		WithArgs("TRX-20240302-%").
		WillReturnRows(sqlmock.NewRows([]string{"code"}))
	code, err = repo.FindLatestCodeWithPrefix(context.Background(), "TRX-20240302-")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestTransactionRepository_SearchParkedEscapesWildcards(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`JOIN vehicles v ON v.id = t.vehicle_id`).
		WithArgs("PARKED", `%B\_1%`, `%B\_1%`, "B_1", "B_1", 5).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns))

	trxs, err := repo.SearchParked(context.Background(), "B_1", "B_1", 5)
	require.NoError(t, err)
	assert.Empty(t, trxs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
