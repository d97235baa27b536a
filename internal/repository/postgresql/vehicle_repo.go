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

type pgVehicleRepository struct {
	db DBTX
}

func NewPgVehicleRepository(db DBTX) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func (r *pgVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	query := `INSERT INTO vehicles (id, plate_number, owner_name, vehicle_type_id, is_active)
	           VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, v.ID, v.PlateNumber, v.OwnerName, v.VehicleTypeID, v.IsActive).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: plate '%s' is already registered", repository.ErrDuplicateEntry, v.PlateNumber)
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	v.UpdatedAt = v.UpdatedAt.In(time.UTC)
	return v, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT id, plate_number, owner_name, vehicle_type_id, is_active, created_at, updated_at FROM vehicles WHERE id = $1`
	return r.findOne(ctx, "FindByID", query, id)
}

func (r *pgVehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT id, plate_number, owner_name, vehicle_type_id, is_active, created_at, updated_at FROM vehicles WHERE plate_number = $1`
	return r.findOne(ctx, "FindByPlate", query, plate)
}

func (r *pgVehicleRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&v.ID, &v.PlateNumber, &v.OwnerName, &v.VehicleTypeID,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.%s: %w", op, err)
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	v.UpdatedAt = v.UpdatedAt.In(time.UTC)
	return v, nil
}
