package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

const transactionColumns = `t.id, t.code, t.vehicle_id, t.area_id, t.vehicle_type_id, t.tariff_band_id,
	t.entry_time, t.exit_time, t.duration_minutes, t.base_price, t.discount_percent, t.total_paid,
	t.payment_method, t.payment_status, t.status, t.check_in_operator_id, t.check_out_operator_id,
	t.created_at, t.updated_at`

const parkedPerVehicleIndex = "transactions_one_parked_per_vehicle"

type pgTransactionRepository struct {
	db DBTX
}

func NewPgTransactionRepository(db DBTX) repository.TransactionRepository {
	return &pgTransactionRepository{db: db}
}

func scanTransaction(row interface{ Scan(...any) error }, t *domain.Transaction) error {
	err := row.Scan(&t.ID, &t.Code, &t.VehicleID, &t.AreaID, &t.VehicleTypeID, &t.TariffBandID,
		&t.EntryTime, &t.ExitTime, &t.DurationMinutes, &t.BasePrice, &t.DiscountPercent, &t.TotalPaid,
		&t.PaymentMethod, &t.PaymentStatus, &t.Status, &t.CheckInOperatorID, &t.CheckOutOperatorID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}
	t.EntryTime = t.EntryTime.In(time.UTC)
	if t.ExitTime.Valid {
		t.ExitTime.Time = t.ExitTime.Time.In(time.UTC)
	}
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return nil
}

func (r *pgTransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `INSERT INTO transactions
	           (id, code, vehicle_id, area_id, vehicle_type_id, entry_time, base_price, discount_percent, total_paid,
	            payment_status, status, check_in_operator_id, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Code, t.VehicleID, t.AreaID, t.VehicleTypeID, t.EntryTime, t.BasePrice, t.DiscountPercent,
		t.TotalPaid, string(t.PaymentStatus), string(t.Status), t.CheckInOperatorID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == parkedPerVehicleIndex {
				return nil, fmt.Errorf("%w: vehicle %s", domain.ErrDuplicateActiveSession, t.VehicleID)
			}
			return nil, fmt.Errorf("%w: transaction code '%s'", repository.ErrDuplicateEntry, t.Code)
		}
		return nil, fmt.Errorf("TransactionRepository.Create: %w", err)
	}
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return t, nil
}

func (r *pgTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return r.findOne(ctx, "FindByID", `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id)
}

func (r *pgTransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return r.findOne(ctx, "FindByIDForUpdate", `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1 FOR UPDATE`, id)
}

func (r *pgTransactionRepository) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t
	           WHERE t.vehicle_id = $1 AND t.status = $2
	           ORDER BY t.entry_time DESC LIMIT 1`
	return r.findOne(ctx, "FindActiveByVehicle", query, vehicleID, string(domain.StatusParked))
}

func (r *pgTransactionRepository) findOne(ctx context.Context, op, query string, args ...any) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, args...), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TransactionRepository.%s: %w", op, err)
	}
	return t, nil
}

func (r *pgTransactionRepository) Update(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	query := `UPDATE transactions
	           SET tariff_band_id = $1, exit_time = $2, duration_minutes = $3, base_price = $4, discount_percent = $5,
	               total_paid = $6, payment_method = $7, payment_status = $8, status = $9, check_out_operator_id = $10,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $11
	           RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.TariffBandID, t.ExitTime, t.DurationMinutes, t.BasePrice, t.DiscountPercent, t.TotalPaid,
		t.PaymentMethod, string(t.PaymentStatus), string(t.Status), t.CheckOutOperatorID, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TransactionRepository.Update: %w", err)
	}
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return t, nil
}

func (r *pgTransactionRepository) CountParked(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE area_id = $1 AND vehicle_type_id = $2 AND status = $3`
	var n int
	if err := r.db.QueryRowContext(ctx, query, areaID, vehicleTypeID, string(domain.StatusParked)).Scan(&n); err != nil {
		return 0, fmt.Errorf("TransactionRepository.CountParked: %w", err)
	}
	return n, nil
}

// LockCodeSequence takes a transaction-scoped advisory lock keyed by the code
// prefix; it is released on commit or rollback.
func (r *pgTransactionRepository) LockCodeSequence(ctx context.Context, prefix string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "trx-code:"+prefix); err != nil {
		return fmt.Errorf("TransactionRepository.LockCodeSequence: %w", err)
	}
	return nil
}

func (r *pgTransactionRepository) FindLatestCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	// Longer codes carry larger sequences once the sequence outgrows four digits.
	query := `SELECT code FROM transactions WHERE code LIKE $1 ORDER BY length(code) DESC, code DESC LIMIT 1`
	var code string
	err := r.db.QueryRowContext(ctx, query, escapeLike(prefix)+"%").Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("TransactionRepository.FindLatestCodeWithPrefix: %w", err)
	}
	return code, nil
}

func (r *pgTransactionRepository) SearchParked(ctx context.Context, code, plate string, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t
	           JOIN vehicles v ON v.id = t.vehicle_id
	           WHERE t.status = $1 AND (t.code ILIKE $2 OR v.plate_number LIKE $3)
	           ORDER BY (upper(t.code) = $4 OR v.plate_number = $5) DESC, t.entry_time DESC
	           LIMIT $6`
	rows, err := r.db.QueryContext(ctx, query, string(domain.StatusParked),
		"%"+escapeLike(code)+"%", "%"+escapeLike(plate)+"%", code, plate, limit)
	if err != nil {
		return nil, fmt.Errorf("TransactionRepository.SearchParked: %w", err)
	}
	defer rows.Close()

	var trxs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, fmt.Errorf("TransactionRepository.SearchParked (scanning row): %w", err)
		}
		trxs = append(trxs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("TransactionRepository.SearchParked (rows error): %w", err)
	}
	return trxs, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
