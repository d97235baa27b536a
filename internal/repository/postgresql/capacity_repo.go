package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type pgCapacityRepository struct {
	db DBTX
}

func NewPgCapacityRepository(db DBTX) repository.CapacityRepository {
	return &pgCapacityRepository{db: db}
}

func (r *pgCapacityRepository) FindByAreaAndType(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (*domain.Capacity, error) {
	c := &domain.Capacity{}
	query := `SELECT id, area_id, vehicle_type_id, total_slots FROM capacities WHERE area_id = $1 AND vehicle_type_id = $2`
	err := r.db.QueryRowContext(ctx, query, areaID, vehicleTypeID).Scan(&c.ID, &c.AreaID, &c.VehicleTypeID, &c.TotalSlots)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("CapacityRepository.FindByAreaAndType: %w", err)
	}
	return c, nil
}

func (r *pgCapacityRepository) FindByArea(ctx context.Context, areaID uuid.UUID) ([]domain.Capacity, error) {
	query := `SELECT c.id, c.area_id, c.vehicle_type_id, c.total_slots
	           FROM capacities c JOIN vehicle_types vt ON vt.id = c.vehicle_type_id
	           WHERE c.area_id = $1 ORDER BY vt.code`
	rows, err := r.db.QueryContext(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("CapacityRepository.FindByArea: %w", err)
	}
	defer rows.Close()

	var caps []domain.Capacity
	for rows.Next() {
		var c domain.Capacity
		if err := rows.Scan(&c.ID, &c.AreaID, &c.VehicleTypeID, &c.TotalSlots); err != nil {
			return nil, fmt.Errorf("CapacityRepository.FindByArea (scanning row): %w", err)
		}
		caps = append(caps, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("CapacityRepository.FindByArea (rows error): %w", err)
	}
	return caps, nil
}

func (r *pgCapacityRepository) Upsert(ctx context.Context, c *domain.Capacity) (*domain.Capacity, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `INSERT INTO capacities (id, area_id, vehicle_type_id, total_slots) VALUES ($1, $2, $3, $4)
	           ON CONFLICT (area_id, vehicle_type_id) DO UPDATE SET total_slots = EXCLUDED.total_slots
	           RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.AreaID, c.VehicleTypeID, c.TotalSlots).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("CapacityRepository.Upsert: %w", err)
	}
	return c, nil
}

func (r *pgCapacityRepository) DeleteExcept(ctx context.Context, areaID uuid.UUID, keep []uuid.UUID) error {
	ids := make([]string, len(keep))
	for i, id := range keep {
		ids[i] = id.String()
	}
	query := `DELETE FROM capacities WHERE area_id = $1 AND NOT (vehicle_type_id = ANY($2::uuid[]))`
	if _, err := r.db.ExecContext(ctx, query, areaID, pq.Array(ids)); err != nil {
		return fmt.Errorf("CapacityRepository.DeleteExcept: %w", err)
	}
	return nil
}

func (r *pgCapacityRepository) Board(ctx context.Context) ([]domain.CapacityStatus, error) {
	query := `SELECT a.id, a.code, a.name, vt.id, vt.code, vt.name, c.total_slots,
	                 (SELECT COUNT(*) FROM transactions t
	                   WHERE t.area_id = c.area_id AND t.vehicle_type_id = c.vehicle_type_id AND t.status = $1) AS occupied
	           FROM capacities c
	           JOIN parking_areas a ON a.id = c.area_id
	           JOIN vehicle_types vt ON vt.id = c.vehicle_type_id
	           ORDER BY a.code, vt.code`
	rows, err := r.db.QueryContext(ctx, query, string(domain.StatusParked))
	if err != nil {
		return nil, fmt.Errorf("CapacityRepository.Board: %w", err)
	}
	defer rows.Close()

	var board []domain.CapacityStatus
	for rows.Next() {
		var s domain.CapacityStatus
		if err := rows.Scan(&s.AreaID, &s.AreaCode, &s.AreaName, &s.VehicleTypeID, &s.VehicleTypeCode,
			&s.VehicleTypeName, &s.TotalSlots, &s.Occupied); err != nil {
			return nil, fmt.Errorf("CapacityRepository.Board (scanning row): %w", err)
		}
		s.Available = max(s.TotalSlots-s.Occupied, 0)
		board = append(board, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("CapacityRepository.Board (rows error): %w", err)
	}
	return board, nil
}
