package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

const tariffColumns = `id, vehicle_type_id, duration_min, duration_max, price, is_active, created_at, updated_at`

type pgTariffRepository struct {
	db DBTX
}

func NewPgTariffRepository(db DBTX) repository.TariffRepository {
	return &pgTariffRepository{db: db}
}

func scanTariff(row interface{ Scan(...any) error }, b *domain.TariffBand) error {
	if err := row.Scan(&b.ID, &b.VehicleTypeID, &b.DurationMin, &b.DurationMax, &b.Price, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	b.CreatedAt = b.CreatedAt.In(time.UTC)
	b.UpdatedAt = b.UpdatedAt.In(time.UTC)
	return nil
}

func (r *pgTariffRepository) Create(ctx context.Context, b *domain.TariffBand) (*domain.TariffBand, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `INSERT INTO tariff_bands (id, vehicle_type_id, duration_min, duration_max, price, is_active)
	           VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, b.ID, b.VehicleTypeID, b.DurationMin, b.DurationMax, b.Price, b.IsActive).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("TariffRepository.Create: %w", err)
	}
	b.CreatedAt = b.CreatedAt.In(time.UTC)
	b.UpdatedAt = b.UpdatedAt.In(time.UTC)
	return b, nil
}

func (r *pgTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TariffBand, error) {
	b := &domain.TariffBand{}
	err := scanTariff(r.db.QueryRowContext(ctx, `SELECT `+tariffColumns+` FROM tariff_bands WHERE id = $1`, id), b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TariffRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgTariffRepository) Update(ctx context.Context, b *domain.TariffBand) (*domain.TariffBand, error) {
	query := `UPDATE tariff_bands SET vehicle_type_id = $1, duration_min = $2, duration_max = $3, price = $4,
	               is_active = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $6 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, b.VehicleTypeID, b.DurationMin, b.DurationMax, b.Price, b.IsActive, b.ID).
		Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TariffRepository.Update: %w", err)
	}
	b.UpdatedAt = b.UpdatedAt.In(time.UTC)
	return b, nil
}

func (r *pgTariffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tariff_bands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("TariffRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("TariffRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgTariffRepository) FindByVehicleType(ctx context.Context, vehicleTypeID uuid.UUID) ([]domain.TariffBand, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_bands WHERE vehicle_type_id = $1 ORDER BY duration_min, id`
	return r.list(ctx, "FindByVehicleType", query, vehicleTypeID)
}

func (r *pgTariffRepository) FindAll(ctx context.Context) ([]domain.TariffBand, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_bands ORDER BY vehicle_type_id, duration_min`
	return r.list(ctx, "FindAll", query)
}

func (r *pgTariffRepository) FindActiveCovering(ctx context.Context, vehicleTypeID uuid.UUID, minutes int) ([]domain.TariffBand, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_bands
	           WHERE vehicle_type_id = $1 AND is_active AND duration_min <= $2 AND duration_max >= $2
	           ORDER BY duration_min, id`
	return r.list(ctx, "FindActiveCovering", query, vehicleTypeID, minutes)
}

func (r *pgTariffRepository) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE tariff_band_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("TariffRepository.CountTransactions: %w", err)
	}
	return n, nil
}

func (r *pgTariffRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.TariffBand, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("TariffRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var bands []domain.TariffBand
	for rows.Next() {
		var b domain.TariffBand
		if err := scanTariff(rows, &b); err != nil {
			return nil, fmt.Errorf("TariffRepository.%s (scanning row): %w", op, err)
		}
		bands = append(bands, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("TariffRepository.%s (rows error): %w", op, err)
	}
	return bands, nil
}
