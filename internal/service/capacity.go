package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

// CapacityLedger derives free slots from the transaction table; there is no
// stored counter to drift.
type CapacityLedger struct {
	store repository.Store
}

func NewCapacityLedger(store repository.Store) *CapacityLedger {
	return &CapacityLedger{store: store}
}

// AvailableSlots returns total slots minus PARKED sessions for the pair, or 0
// when the area has no allotment for the vehicle type.
func (l *CapacityLedger) AvailableSlots(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (int, error) {
	return availableSlots(ctx, l.store.Repos(), areaID, vehicleTypeID)
}

// Board reports every capacity record with its occupancy.
func (l *CapacityLedger) Board(ctx context.Context) ([]domain.CapacityStatus, error) {
	board, err := l.store.Repos().Capacities.Board(ctx)
	if err != nil {
		return nil, fmt.Errorf("load capacity board: %w", err)
	}
	return board, nil
}

func availableSlots(ctx context.Context, repos repository.Repositories, areaID, vehicleTypeID uuid.UUID) (int, error) {
	capacity, err := repos.Capacities.FindByAreaAndType(ctx, areaID, vehicleTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	parked, err := repos.Transactions.CountParked(ctx, areaID, vehicleTypeID)
	if err != nil {
		return 0, err
	}
	return max(capacity.TotalSlots-parked, 0), nil
}
