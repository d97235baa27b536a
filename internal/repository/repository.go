package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is the domain sentinel so that services and handlers can test a
// single value whatever layer produced it.
var ErrNotFound = domain.ErrNotFound
var ErrDuplicateEntry = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type AreaRepository interface {
	Create(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error)
	FindAll(ctx context.Context) ([]domain.ParkingArea, error)
	Update(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error)
	// Delete removes the area and, by cascade, its capacity records.
	Delete(ctx context.Context, id uuid.UUID) error
	// CountTransactions counts transactions of any status referencing the area.
	CountTransactions(ctx context.Context, id uuid.UUID) (int, error)
}

type CapacityRepository interface {
	FindByAreaAndType(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (*domain.Capacity, error)
	FindByArea(ctx context.Context, areaID uuid.UUID) ([]domain.Capacity, error)
	Upsert(ctx context.Context, capacity *domain.Capacity) (*domain.Capacity, error)
	// DeleteExcept drops the area's capacity records whose vehicle type is not in keep.
	DeleteExcept(ctx context.Context, areaID uuid.UUID, keep []uuid.UUID) error
	// Board lists every capacity record joined with its PARKED count, ordered
	// by area code then vehicle type code.
	Board(ctx context.Context) ([]domain.CapacityStatus, error)
}

type VehicleTypeRepository interface {
	Create(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.VehicleType, error)
	FindAll(ctx context.Context) ([]domain.VehicleType, error)
	Update(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CountUsage counts transactions, vehicles, capacities and tariff bands
	// referencing the vehicle type.
	CountUsage(ctx context.Context, id uuid.UUID) (int, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
}

type TariffRepository interface {
	Create(ctx context.Context, band *domain.TariffBand) (*domain.TariffBand, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TariffBand, error)
	Update(ctx context.Context, band *domain.TariffBand) (*domain.TariffBand, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByVehicleType returns active and inactive bands ordered by duration_min.
	FindByVehicleType(ctx context.Context, vehicleTypeID uuid.UUID) ([]domain.TariffBand, error)
	FindAll(ctx context.Context) ([]domain.TariffBand, error)
	// FindActiveCovering returns active bands containing minutes, ordered by duration_min.
	FindActiveCovering(ctx context.Context, vehicleTypeID uuid.UUID, minutes int) ([]domain.TariffBand, error)
	CountTransactions(ctx context.Context, id uuid.UUID) (int, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (*domain.Member, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByVehicle returns every window of the vehicle ordered by start_date.
	FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Member, error)
	// FindActiveOn returns windows containing day, ordered by start_date.
	FindActiveOn(ctx context.Context, vehicleID uuid.UUID, day time.Time) ([]domain.Member, error)
}

type TransactionRepository interface {
	// Create fails with domain.ErrDuplicateActiveSession when the vehicle is
	// already PARKED and ErrDuplicateEntry when the code is taken.
	Create(ctx context.Context, trx *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// FindByIDForUpdate row-locks the transaction until the unit of work ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.Transaction, error)
	Update(ctx context.Context, trx *domain.Transaction) (*domain.Transaction, error)
	CountParked(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (int, error)
	// LockCodeSequence serializes every unit of work using the same code prefix.
	LockCodeSequence(ctx context.Context, prefix string) error
	// FindLatestCodeWithPrefix returns the code with the greatest sequence for
	// prefix, or "" when none exists.
	FindLatestCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	// SearchParked matches PARKED transactions by code or plate, exact matches
	// first then latest entry first.
	SearchParked(ctx context.Context, code, plate string, limit int) ([]domain.Transaction, error)
}

// Repositories is the set of repositories bound to one connection or one
// unit of work.
type Repositories struct {
	Users        UserRepository
	Areas        AreaRepository
	Capacities   CapacityRepository
	VehicleTypes VehicleTypeRepository
	Vehicles     VehicleRepository
	Tariffs      TariffRepository
	Members      MemberRepository
	Transactions TransactionRepository
}

// Store hands out repositories. WithinTx runs fn in a single unit of work:
// any error returned by fn rolls back every write made through repos.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
