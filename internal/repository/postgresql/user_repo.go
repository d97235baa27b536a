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

type pgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) repository.UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Password, user.Role).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: username '%s' is taken", repository.ErrDuplicateEntry, user.Username)
		}
		return nil, fmt.Errorf("UserRepository.Create: %w", err)
	}
	user.CreatedAt = user.CreatedAt.In(time.UTC)
	user.UpdatedAt = user.UpdatedAt.In(time.UTC)
	return user, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE username = $1`
	return r.findOne(ctx, "FindByUsername", query, username)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE id = $1`
	return r.findOne(ctx, "FindByID", query, id)
}

func (r *pgUserRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.%s: %w", op, err)
	}
	user.CreatedAt = user.CreatedAt.In(time.UTC)
	user.UpdatedAt = user.UpdatedAt.In(time.UTC)
	return user, nil
}
