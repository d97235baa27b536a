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

type pgVehicleTypeRepository struct {
	db DBTX
}

func NewPgVehicleTypeRepository(db DBTX) repository.VehicleTypeRepository {
	return &pgVehicleTypeRepository{db: db}
}

func (r *pgVehicleTypeRepository) Create(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error) {
	if vt.ID == uuid.Nil {
		vt.ID = uuid.New()
	}
	query := `INSERT INTO vehicle_types (id, code, name) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, vt.ID, vt.Code, vt.Name).Scan(&vt.CreatedAt, &vt.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: vehicle type code '%s' already exists", repository.ErrDuplicateEntry, vt.Code)
		}
		return nil, fmt.Errorf("VehicleTypeRepository.Create: %w", err)
	}
	vt.CreatedAt = vt.CreatedAt.In(time.UTC)
	vt.UpdatedAt = vt.UpdatedAt.In(time.UTC)
	return vt, nil
}

func (r *pgVehicleTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.VehicleType, error) {
	vt := &domain.VehicleType{}
	query := `SELECT id, code, name, created_at, updated_at FROM vehicle_types WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&vt.ID, &vt.Code, &vt.Name, &vt.CreatedAt, &vt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleTypeRepository.FindByID: %w", err)
	}
	vt.CreatedAt = vt.CreatedAt.In(time.UTC)
	vt.UpdatedAt = vt.UpdatedAt.In(time.UTC)
	return vt, nil
}

func (r *pgVehicleTypeRepository) FindAll(ctx context.Context) ([]domain.VehicleType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, created_at, updated_at FROM vehicle_types ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("VehicleTypeRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var types []domain.VehicleType
	for rows.Next() {
		var vt domain.VehicleType
		if err := rows.Scan(&vt.ID, &vt.Code, &vt.Name, &vt.CreatedAt, &vt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("VehicleTypeRepository.FindAll (scanning row): %w", err)
		}
		vt.CreatedAt = vt.CreatedAt.In(time.UTC)
		vt.UpdatedAt = vt.UpdatedAt.In(time.UTC)
		types = append(types, vt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleTypeRepository.FindAll (rows error): %w", err)
	}
	return types, nil
}

func (r *pgVehicleTypeRepository) Update(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error) {
	query := `UPDATE vehicle_types SET name = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, vt.Name, vt.ID).Scan(&vt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleTypeRepository.Update: %w", err)
	}
	vt.UpdatedAt = vt.UpdatedAt.In(time.UTC)
	return vt, nil
}

func (r *pgVehicleTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicle_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("VehicleTypeRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("VehicleTypeRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgVehicleTypeRepository) CountUsage(ctx context.Context, id uuid.UUID) (int, error) {
	query := `SELECT (SELECT COUNT(*) FROM transactions WHERE vehicle_type_id = $1)
	               + (SELECT COUNT(*) FROM vehicles WHERE vehicle_type_id = $1)
	               + (SELECT COUNT(*) FROM capacities WHERE vehicle_type_id = $1)
	               + (SELECT COUNT(*) FROM tariff_bands WHERE vehicle_type_id = $1)`
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("VehicleTypeRepository.CountUsage: %w", err)
	}
	return n, nil
}
