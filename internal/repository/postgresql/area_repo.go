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

type pgAreaRepository struct {
	db DBTX
}

func NewPgAreaRepository(db DBTX) repository.AreaRepository {
	return &pgAreaRepository{db: db}
}

func (r *pgAreaRepository) Create(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	query := `INSERT INTO parking_areas (id, code, name, location) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, area.ID, area.Code, area.Name, area.Location).Scan(&area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: area code '%s' already exists", repository.ErrDuplicateEntry, area.Code)
		}
		return nil, fmt.Errorf("AreaRepository.Create: %w", err)
	}
	area.CreatedAt = area.CreatedAt.In(time.UTC)
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	return area, nil
}

func (r *pgAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	area := &domain.ParkingArea{}
	query := `SELECT id, code, name, location, created_at, updated_at FROM parking_areas WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&area.ID, &area.Code, &area.Name, &area.Location, &area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("AreaRepository.FindByID: %w", err)
	}
	area.CreatedAt = area.CreatedAt.In(time.UTC)
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	return area, nil
}

func (r *pgAreaRepository) FindAll(ctx context.Context) ([]domain.ParkingArea, error) {
	query := `SELECT id, code, name, location, created_at, updated_at FROM parking_areas ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("AreaRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var areas []domain.ParkingArea
	for rows.Next() {
		var area domain.ParkingArea
		if err := rows.Scan(&area.ID, &area.Code, &area.Name, &area.Location, &area.CreatedAt, &area.UpdatedAt); err != nil {
			return nil, fmt.Errorf("AreaRepository.FindAll (scanning row): %w", err)
		}
		area.CreatedAt = area.CreatedAt.In(time.UTC)
		area.UpdatedAt = area.UpdatedAt.In(time.UTC)
		areas = append(areas, area)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("AreaRepository.FindAll (rows error): %w", err)
	}
	return areas, nil
}

func (r *pgAreaRepository) Update(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	query := `UPDATE parking_areas SET name = $1, location = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, area.Name, area.Location, area.ID).Scan(&area.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("AreaRepository.Update: %w", err)
	}
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	return area, nil
}

func (r *pgAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_areas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("AreaRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("AreaRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgAreaRepository) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE area_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("AreaRepository.CountTransactions: %w", err)
	}
	return n, nil
}
