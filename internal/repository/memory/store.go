// Package memory is an in-process implementation of repository.Store. Units of
// work are serialized by a store-wide lock and rolled back by restoring a
// snapshot, so it keeps the same guarantees as the PostgreSQL store: one
// PARKED transaction per vehicle, unique codes and unique plates.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

type tables struct {
	users        map[uuid.UUID]domain.User
	areas        map[uuid.UUID]domain.ParkingArea
	capacities   map[uuid.UUID]domain.Capacity
	vehicleTypes map[uuid.UUID]domain.VehicleType
	vehicles     map[uuid.UUID]domain.Vehicle
	tariffs      map[uuid.UUID]domain.TariffBand
	members      map[uuid.UUID]domain.Member
	transactions map[uuid.UUID]domain.Transaction
}

func newTables() tables {
	return tables{
		users:        map[uuid.UUID]domain.User{},
		areas:        map[uuid.UUID]domain.ParkingArea{},
		capacities:   map[uuid.UUID]domain.Capacity{},
		vehicleTypes: map[uuid.UUID]domain.VehicleType{},
		vehicles:     map[uuid.UUID]domain.Vehicle{},
		tariffs:      map[uuid.UUID]domain.TariffBand{},
		members:      map[uuid.UUID]domain.Member{},
		transactions: map[uuid.UUID]domain.Transaction{},
	}
}

func (t tables) clone() tables {
	return tables{
		users:        maps.Clone(t.users),
		areas:        maps.Clone(t.areas),
		capacities:   maps.Clone(t.capacities),
		vehicleTypes: maps.Clone(t.vehicleTypes),
		vehicles:     maps.Clone(t.vehicles),
		tariffs:      maps.Clone(t.tariffs),
		members:      maps.Clone(t.members),
		transactions: maps.Clone(t.transactions),
	}
}

type Store struct {
	txMu sync.Mutex   // held for a whole unit of work
	mu   sync.RWMutex // guards data
	data tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

// Repos returns repositories whose writes each run as their own unit of work.
// Reads outside a unit of work may observe uncommitted writes.
func (s *Store) Repos() repository.Repositories {
	return s.repos(false)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.repos(true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) repository.Repositories {
	h := handle{store: s, inTx: inTx}
	return repository.Repositories{
		Users:        userRepo{h},
		Areas:        areaRepo{h},
		Capacities:   capacityRepo{h},
		VehicleTypes: vehicleTypeRepo{h},
		Vehicles:     vehicleRepo{h},
		Tariffs:      tariffRepo{h},
		Members:      memberRepo{h},
		Transactions: transactionRepo{h},
	}
}

// handle is shared by every repository of one Repositories value.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) read(fn func(t *tables) error) error {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return fn(&h.store.data)
}

// write runs fn under the data lock. Outside a unit of work it also takes the
// unit-of-work lock so a concurrent rollback cannot discard it.
func (h handle) write(fn func(t *tables) error) error {
	if !h.inTx {
		h.store.txMu.Lock()
		defer h.store.txMu.Unlock()
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(&h.store.data)
}
