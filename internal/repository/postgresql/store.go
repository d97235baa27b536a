package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type pgStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) repository.Store {
	return &pgStore{db: db}
}

func newRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Users:        NewPgUserRepository(db),
		Areas:        NewPgAreaRepository(db),
		Capacities:   NewPgCapacityRepository(db),
		VehicleTypes: NewPgVehicleTypeRepository(db),
		Vehicles:     NewPgVehicleRepository(db),
		Tariffs:      NewPgTariffRepository(db),
		Members:      NewPgMemberRepository(db),
		Transactions: NewPgTransactionRepository(db),
	}
}

func (s *pgStore) Repos() repository.Repositories {
	return newRepositories(s.db)
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Store: rollback failed: %v (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
