package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

// MasterDataService maintains parking areas, their slot allotments and the
// vehicle type catalogue.
type MasterDataService struct {
	store repository.Store
}

func NewMasterDataService(store repository.Store) *MasterDataService {
	return &MasterDataService{store: store}
}

func (s *MasterDataService) CreateArea(ctx context.Context, dto domain.CreateAreaDTO) (*domain.ParkingArea, error) {
	area := &domain.ParkingArea{
		Code:     strings.ToUpper(strings.TrimSpace(dto.Code)),
		Name:     strings.TrimSpace(dto.Name),
		Location: strings.TrimSpace(dto.Location),
	}
	if area.Code == "" || area.Name == "" {
		return nil, fmt.Errorf("%w: area code and name are required", domain.ErrValidation)
	}
	created, err := s.store.Repos().Areas.Create(ctx, area)
	if err != nil {
		return nil, err
	}
	log.Printf("MasterDataService: created area %s (%s)", created.Code, created.ID)
	return created, nil
}

// GetArea returns the area with its capacity records.
func (s *MasterDataService) GetArea(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	repos := s.store.Repos()
	area, err := repos.Areas.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "area", id)
	}
	if area.Capacities, err = repos.Capacities.FindByArea(ctx, id); err != nil {
		return nil, err
	}
	return area, nil
}

func (s *MasterDataService) ListAreas(ctx context.Context) ([]domain.ParkingArea, error) {
	repos := s.store.Repos()
	areas, err := repos.Areas.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range areas {
		if areas[i].Capacities, err = repos.Capacities.FindByArea(ctx, areas[i].ID); err != nil {
			return nil, err
		}
	}
	return areas, nil
}

func (s *MasterDataService) UpdateArea(ctx context.Context, id uuid.UUID, dto domain.UpdateAreaDTO) (*domain.ParkingArea, error) {
	var updated *domain.ParkingArea
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		area, err := repos.Areas.FindByID(ctx, id)
		if err != nil {
			return notFound(err, "area", id)
		}
		if dto.Name != nil {
			area.Name = strings.TrimSpace(*dto.Name)
		}
		if dto.Location != nil {
			area.Location = strings.TrimSpace(*dto.Location)
		}
		if area.Name == "" {
			return fmt.Errorf("%w: area name must not be empty", domain.ErrValidation)
		}
		updated, err = repos.Areas.Update(ctx, area)
		return err
	})
	return updated, err
}

// DeleteArea removes an area and its capacity records. Areas referenced by any
// transaction, finished or not, are kept so history stays resolvable.
func (s *MasterDataService) DeleteArea(ctx context.Context, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Areas.CountTransactions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: area %s is referenced by %d transactions", domain.ErrInUse, id, n)
		}
		if err := repos.Areas.Delete(ctx, id); err != nil {
			return notFound(err, "area", id)
		}
		log.Printf("MasterDataService: deleted area %s", id)
		return nil
	})
}

// SetCapacities replaces the slot allotments of an area. Vehicle types left
// out of dto lose their allotment.
func (s *MasterDataService) SetCapacities(ctx context.Context, areaID uuid.UUID, dto domain.SetCapacitiesDTO) ([]domain.Capacity, error) {
	seen := make(map[uuid.UUID]bool, len(dto.Capacities))
	keep := make([]uuid.UUID, 0, len(dto.Capacities))
	for _, c := range dto.Capacities {
		if c.TotalSlots < 0 {
			return nil, fmt.Errorf("%w: total_slots must not be negative", domain.ErrValidation)
		}
		if seen[c.VehicleTypeID] {
			return nil, fmt.Errorf("%w: vehicle type %s listed twice", domain.ErrValidation, c.VehicleTypeID)
		}
		seen[c.VehicleTypeID] = true
		keep = append(keep, c.VehicleTypeID)
	}

	var result []domain.Capacity
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Areas.FindByID(ctx, areaID); err != nil {
			return notFound(err, "area", areaID)
		}
		for _, c := range dto.Capacities {
			if _, err := repos.VehicleTypes.FindByID(ctx, c.VehicleTypeID); err != nil {
				return notFound(err, "vehicle type", c.VehicleTypeID)
			}
			if _, err := repos.Capacities.Upsert(ctx, &domain.Capacity{AreaID: areaID, VehicleTypeID: c.VehicleTypeID, TotalSlots: c.TotalSlots}); err != nil {
				return err
			}
		}
		if err := repos.Capacities.DeleteExcept(ctx, areaID, keep); err != nil {
			return err
		}
		var err error
		result, err = repos.Capacities.FindByArea(ctx, areaID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("MasterDataService: area %s now has %d capacity records", areaID, len(result))
	return result, nil
}

func (s *MasterDataService) CreateVehicleType(ctx context.Context, dto domain.CreateVehicleTypeDTO) (*domain.VehicleType, error) {
	vt := &domain.VehicleType{
		Code: strings.ToUpper(strings.TrimSpace(dto.Code)),
		Name: strings.TrimSpace(dto.Name),
	}
	if vt.Code == "" || vt.Name == "" {
		return nil, fmt.Errorf("%w: vehicle type code and name are required", domain.ErrValidation)
	}
	return s.store.Repos().VehicleTypes.Create(ctx, vt)
}

func (s *MasterDataService) ListVehicleTypes(ctx context.Context) ([]domain.VehicleType, error) {
	return s.store.Repos().VehicleTypes.FindAll(ctx)
}

// UpdateVehicleType only renames; the code of a referenced type never changes.
func (s *MasterDataService) UpdateVehicleType(ctx context.Context, id uuid.UUID, dto domain.UpdateVehicleTypeDTO) (*domain.VehicleType, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: vehicle type name is required", domain.ErrValidation)
	}
	var updated *domain.VehicleType
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		vt, err := repos.VehicleTypes.FindByID(ctx, id)
		if err != nil {
			return notFound(err, "vehicle type", id)
		}
		vt.Name = name
		updated, err = repos.VehicleTypes.Update(ctx, vt)
		return err
	})
	return updated, err
}

func (s *MasterDataService) DeleteVehicleType(ctx context.Context, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.VehicleTypes.CountUsage(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: vehicle type %s is used by %d records", domain.ErrInUse, id, n)
		}
		return notFound(repos.VehicleTypes.Delete(ctx, id), "vehicle type", id)
	})
}
