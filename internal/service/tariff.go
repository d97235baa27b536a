package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

type TariffService struct {
	store repository.Store
}

func NewTariffService(store repository.Store) *TariffService {
	return &TariffService{store: store}
}

// Resolve returns the active band of the vehicle type covering minutes, or nil.
func (s *TariffService) Resolve(ctx context.Context, vehicleTypeID uuid.UUID, minutes int) (*domain.TariffBand, error) {
	return resolveTariff(ctx, s.store.Repos(), vehicleTypeID, minutes)
}

func resolveTariff(ctx context.Context, repos repository.Repositories, vehicleTypeID uuid.UUID, minutes int) (*domain.TariffBand, error) {
	bands, err := repos.Tariffs.FindActiveCovering(ctx, vehicleTypeID, minutes)
	if err != nil {
		return nil, fmt.Errorf("resolve tariff: %w", err)
	}
	if len(bands) == 0 {
		return nil, nil
	}
	if len(bands) > 1 {
		log.Printf("TariffService: DATA INTEGRITY WARNING: %d active bands of vehicle type %s cover %d minutes; using band %s [%d,%d]",
			len(bands), vehicleTypeID, minutes, bands[0].ID, bands[0].DurationMin, bands[0].DurationMax)
	}
	band := bands[0]
	return &band, nil
}

// ValidateNoOverlap reports whether [minMinutes, maxMinutes] is disjoint from
// every band of the vehicle type, active or not, other than excludeID.
func (s *TariffService) ValidateNoOverlap(ctx context.Context, vehicleTypeID uuid.UUID, minMinutes, maxMinutes int, excludeID uuid.NullUUID) (bool, error) {
	return validateBandOverlap(ctx, s.store.Repos(), vehicleTypeID, minMinutes, maxMinutes, excludeID)
}

func validateBandOverlap(ctx context.Context, repos repository.Repositories, vehicleTypeID uuid.UUID, minMinutes, maxMinutes int, excludeID uuid.NullUUID) (bool, error) {
	bands, err := repos.Tariffs.FindByVehicleType(ctx, vehicleTypeID)
	if err != nil {
		return false, fmt.Errorf("load tariff bands: %w", err)
	}
	for _, b := range bands {
		if excludeID.Valid && b.ID == excludeID.UUID {
			continue
		}
		if domain.RangesOverlap(minMinutes, maxMinutes, b.DurationMin, b.DurationMax) {
			return false, nil
		}
	}
	return true, nil
}

func validateBand(dto domain.TariffBandDTO) error {
	if dto.DurationMin < 0 {
		return fmt.Errorf("%w: duration_min must not be negative", domain.ErrValidation)
	}
	if dto.DurationMax < dto.DurationMin {
		return fmt.Errorf("%w: duration_max must be greater than or equal to duration_min", domain.ErrValidation)
	}
	if dto.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return nil
}

func (s *TariffService) CreateBand(ctx context.Context, dto domain.TariffBandDTO) (*domain.TariffBand, error) {
	if err := validateBand(dto); err != nil {
		return nil, err
	}
	band := &domain.TariffBand{
		VehicleTypeID: dto.VehicleTypeID,
		DurationMin:   dto.DurationMin,
		DurationMax:   dto.DurationMax,
		Price:         dto.Price,
		IsActive:      dto.IsActive == nil || *dto.IsActive,
	}
	var created *domain.TariffBand
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.VehicleTypes.FindByID(ctx, dto.VehicleTypeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: vehicle type %s", domain.ErrNotFound, dto.VehicleTypeID)
			}
			return err
		}
		ok, err := validateBandOverlap(ctx, repos, band.VehicleTypeID, band.DurationMin, band.DurationMax, uuid.NullUUID{})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: band [%d,%d] intersects an existing band", domain.ErrOverlapConflict, band.DurationMin, band.DurationMax)
		}
		created, err = repos.Tariffs.Create(ctx, band)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("TariffService: created band %s [%d,%d] price %d for vehicle type %s",
		created.ID, created.DurationMin, created.DurationMax, created.Price, created.VehicleTypeID)
	return created, nil
}

func (s *TariffService) UpdateBand(ctx context.Context, id uuid.UUID, dto domain.TariffBandDTO) (*domain.TariffBand, error) {
	if err := validateBand(dto); err != nil {
		return nil, err
	}
	var updated *domain.TariffBand
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		band, err := repos.Tariffs.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if dto.VehicleTypeID != band.VehicleTypeID {
			if _, err := repos.VehicleTypes.FindByID(ctx, dto.VehicleTypeID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: vehicle type %s", domain.ErrNotFound, dto.VehicleTypeID)
				}
				return err
			}
		}
		ok, err := validateBandOverlap(ctx, repos, dto.VehicleTypeID, dto.DurationMin, dto.DurationMax, uuid.NullUUID{UUID: id, Valid: true})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: band [%d,%d] intersects an existing band", domain.ErrOverlapConflict, dto.DurationMin, dto.DurationMax)
		}
		band.VehicleTypeID = dto.VehicleTypeID
		band.DurationMin = dto.DurationMin
		band.DurationMax = dto.DurationMax
		band.Price = dto.Price
		if dto.IsActive != nil {
			band.IsActive = *dto.IsActive
		}
		updated, err = repos.Tariffs.Update(ctx, band)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBand refuses to remove a band that priced a completed transaction;
// deactivate it instead.
func (s *TariffService) DeleteBand(ctx context.Context, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Tariffs.CountTransactions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: tariff band %s priced %d transactions", domain.ErrInUse, id, n)
		}
		return repos.Tariffs.Delete(ctx, id)
	})
}

func (s *TariffService) ListBands(ctx context.Context, vehicleTypeID uuid.NullUUID) ([]domain.TariffBand, error) {
	repos := s.store.Repos()
	if vehicleTypeID.Valid {
		return repos.Tariffs.FindByVehicleType(ctx, vehicleTypeID.UUID)
	}
	return repos.Tariffs.FindAll(ctx)
}
