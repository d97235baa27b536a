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

const memberColumns = `id, vehicle_id, tier, discount_percent, start_date, end_date, created_at, updated_at`

type pgMemberRepository struct {
	db DBTX
}

func NewPgMemberRepository(db DBTX) repository.MemberRepository {
	return &pgMemberRepository{db: db}
}

func scanMember(row interface{ Scan(...any) error }, m *domain.Member) error {
	if err := row.Scan(&m.ID, &m.VehicleID, &m.Tier, &m.DiscountPercent, &m.StartDate, &m.EndDate,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	m.StartDate = asDate(m.StartDate)
	m.EndDate = asDate(m.EndDate)
	m.CreatedAt = m.CreatedAt.In(time.UTC)
	m.UpdatedAt = m.UpdatedAt.In(time.UTC)
	return nil
}

// asDate keeps the wall-clock date of a DATE column as midnight UTC.
func asDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func (r *pgMemberRepository) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `INSERT INTO members (id, vehicle_id, tier, discount_percent, start_date, end_date)
	           VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, m.ID, m.VehicleID, string(m.Tier), m.DiscountPercent,
		m.StartDate.Format(time.DateOnly), m.EndDate.Format(time.DateOnly)).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("MemberRepository.Create: %w", err)
	}
	m.CreatedAt = m.CreatedAt.In(time.UTC)
	m.UpdatedAt = m.UpdatedAt.In(time.UTC)
	return m, nil
}

func (r *pgMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	m := &domain.Member{}
	err := scanMember(r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("MemberRepository.FindByID: %w", err)
	}
	return m, nil
}

func (r *pgMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("MemberRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("MemberRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgMemberRepository) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE vehicle_id = $1 ORDER BY start_date`
	return r.list(ctx, "FindByVehicle", query, vehicleID)
}

func (r *pgMemberRepository) FindActiveOn(ctx context.Context, vehicleID uuid.UUID, day time.Time) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members
	           WHERE vehicle_id = $1 AND start_date <= $2::date AND end_date >= $2::date
	           ORDER BY start_date`
	return r.list(ctx, "FindActiveOn", query, vehicleID, day.Format(time.DateOnly))
}

func (r *pgMemberRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("MemberRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, fmt.Errorf("MemberRepository.%s (scanning row): %w", op, err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("MemberRepository.%s (rows error): %w", op, err)
	}
	return members, nil
}
