package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type DiscountService struct {
	store repository.Store
	clock clock.Clock
}

func NewDiscountService(store repository.Store, clk clock.Clock) *DiscountService {
	return &DiscountService{store: store, clock: clk}
}

// ActiveDiscount returns the discount percent of the membership covering the
// calendar date of onDate, or zero.
func (s *DiscountService) ActiveDiscount(ctx context.Context, vehicleID uuid.UUID, onDate time.Time) (decimal.Decimal, error) {
	return activeDiscount(ctx, s.store.Repos(), vehicleID, clock.DateOf(onDate, s.clock.Location()))
}

func activeDiscount(ctx context.Context, repos repository.Repositories, vehicleID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	members, err := repos.Members.FindActiveOn(ctx, vehicleID, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve membership discount: %w", err)
	}
	if len(members) == 0 {
		return decimal.Zero, nil
	}
	if len(members) > 1 {
		log.Printf("DiscountService: DATA INTEGRITY WARNING: %d memberships of vehicle %s cover %s; using %s",
			len(members), vehicleID, day.Format(time.DateOnly), members[0].ID)
	}
	return members[0].DiscountPercent, nil
}

// PackageEndDate is the last day of a package of months starting on start, so
// that a renewal starting the next day tiles without gap or overlap.
func PackageEndDate(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0).AddDate(0, 0, -1)
}

// ValidateNoOverlap reports whether [start, end] is disjoint from every
// membership window of the vehicle other than excludeID.
func (s *DiscountService) ValidateNoOverlap(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error) {
	return validateMembershipOverlap(ctx, s.store.Repos(), vehicleID, start, end, excludeID)
}

func validateMembershipOverlap(ctx context.Context, repos repository.Repositories, vehicleID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error) {
	members, err := repos.Members.FindByVehicle(ctx, vehicleID)
	if err != nil {
		return false, fmt.Errorf("load memberships: %w", err)
	}
	for _, m := range members {
		if excludeID.Valid && m.ID == excludeID.UUID {
			continue
		}
		if domain.DatesOverlap(start, end, m.StartDate, m.EndDate) {
			return false, nil
		}
	}
	return true, nil
}

func normalizeDiscount(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: discount_percent must be between 0 and 100", domain.ErrValidation)
	}
	return d.Round(2), nil
}

func (s *DiscountService) CreateMembership(ctx context.Context, dto domain.CreateMembershipDTO) (*domain.Member, error) {
	if !dto.Tier.Valid() {
		return nil, fmt.Errorf("%w: unknown tier %q", domain.ErrValidation, dto.Tier)
	}
	if dto.Months < 1 {
		return nil, fmt.Errorf("%w: months must be at least 1", domain.ErrValidation)
	}
	discount, err := normalizeDiscount(dto.DiscountPercent)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(time.DateOnly, dto.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	member := &domain.Member{
		VehicleID:       dto.VehicleID,
		Tier:            dto.Tier,
		DiscountPercent: discount,
		StartDate:       start,
		EndDate:         PackageEndDate(start, dto.Months),
	}
	return s.insertMembership(ctx, member, nil)
}

// RenewMembership appends a package to the vehicle's memberships. The new
// window starts the day after the latest window ends, or today when the
// vehicle has no current or future membership. Tier and discount default to
// the latest membership.
func (s *DiscountService) RenewMembership(ctx context.Context, dto domain.RenewMembershipDTO) (*domain.Member, error) {
	if dto.Months < 1 {
		return nil, fmt.Errorf("%w: months must be at least 1", domain.ErrValidation)
	}
	if dto.Tier != "" && !dto.Tier.Valid() {
		return nil, fmt.Errorf("%w: unknown tier %q", domain.ErrValidation, dto.Tier)
	}
	today := clock.DateOf(s.clock.Now(), s.clock.Location())

	member := &domain.Member{VehicleID: dto.VehicleID, Tier: dto.Tier}
	if dto.DiscountPercent != nil {
		d, err := normalizeDiscount(*dto.DiscountPercent)
		if err != nil {
			return nil, err
		}
		member.DiscountPercent = d
	}
	return s.insertMembership(ctx, member, func(existing []domain.Member) error {
		start := today
		if len(existing) > 0 {
			latest := existing[0]
			for _, m := range existing[1:] {
				if m.EndDate.After(latest.EndDate) {
					latest = m
				}
			}
			if next := latest.EndDate.AddDate(0, 0, 1); next.After(today) {
				start = next
			}
			if member.Tier == "" {
				member.Tier = latest.Tier
			}
			if dto.DiscountPercent == nil {
				member.DiscountPercent = latest.DiscountPercent
			}
		}
		if member.Tier == "" {
			return fmt.Errorf("%w: tier is required for a first membership", domain.ErrValidation)
		}
		member.StartDate = start
		member.EndDate = PackageEndDate(start, dto.Months)
		return nil
	})
}

// insertMembership runs prepare (when set) against the vehicle's existing
// windows, then checks overlap and inserts, all in one unit of work.
func (s *DiscountService) insertMembership(ctx context.Context, member *domain.Member, prepare func(existing []domain.Member) error) (*domain.Member, error) {
	var created *domain.Member
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Vehicles.FindByID(ctx, member.VehicleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: vehicle %s", domain.ErrNotFound, member.VehicleID)
			}
			return err
		}
		if prepare != nil {
			existing, err := repos.Members.FindByVehicle(ctx, member.VehicleID)
			if err != nil {
				return err
			}
			if err := prepare(existing); err != nil {
				return err
			}
		}
		ok, err := validateMembershipOverlap(ctx, repos, member.VehicleID, member.StartDate, member.EndDate, uuid.NullUUID{})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: membership %s..%s intersects an existing window", domain.ErrOverlapConflict,
				member.StartDate.Format(time.DateOnly), member.EndDate.Format(time.DateOnly))
		}
		created, err = repos.Members.Create(ctx, member)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("DiscountService: membership %s (%s, %s%%) for vehicle %s valid %s..%s", created.ID, created.Tier,
		created.DiscountPercent.StringFixed(2), created.VehicleID,
		created.StartDate.Format(time.DateOnly), created.EndDate.Format(time.DateOnly))
	return created, nil
}

func (s *DiscountService) ListMemberships(ctx context.Context, vehicleID uuid.UUID) ([]domain.Member, error) {
	return s.store.Repos().Members.FindByVehicle(ctx, vehicleID)
}

func (s *DiscountService) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	return s.store.Repos().Members.Delete(ctx, id)
}
