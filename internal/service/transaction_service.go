package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

const searchLimit = 10

// TransactionService owns the PARKED -> COMPLETED/CANCELLED lifecycle. It is
// the only writer of transactions; every mutation runs in one unit of work.
type TransactionService struct {
	store  repository.Store
	clock  clock.Clock
	events EventPublisher
}

func NewTransactionService(store repository.Store, clk clock.Clock, events EventPublisher) *TransactionService {
	return &TransactionService{store: store, clock: clk, events: events}
}

// DurationMinutes is the number of whole minutes between entry and exit,
// never negative.
func DurationMinutes(entry, exit time.Time) int {
	d := exit.Sub(entry)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// ComputeTotal applies a percentage discount to base and truncates toward zero.
func ComputeTotal(base int64, discountPercent decimal.Decimal) int64 {
	b := decimal.NewFromInt(base)
	return b.Sub(b.Mul(discountPercent).Div(hundred)).Truncate(0).IntPart()
}

type quote struct {
	minutes  int
	band     *domain.TariffBand
	discount decimal.Decimal
	total    int64
}

func (s *TransactionService) quote(ctx context.Context, repos repository.Repositories, trx *domain.Transaction, at time.Time) (quote, error) {
	q := quote{minutes: DurationMinutes(trx.EntryTime, at)}
	band, err := resolveTariff(ctx, repos, trx.VehicleTypeID, q.minutes)
	if err != nil {
		return q, err
	}
	discount, err := activeDiscount(ctx, repos, trx.VehicleID, clock.DateOf(at, s.clock.Location()))
	if err != nil {
		return q, err
	}
	q.band = band
	q.discount = discount.Round(2)
	if band != nil {
		q.total = ComputeTotal(band.Price, q.discount)
	}
	return q, nil
}

func (s *TransactionService) CheckIn(ctx context.Context, req domain.CheckInRequest) (*domain.Transaction, error) {
	plate := domain.NormalizePlate(req.Plate)
	if !req.VehicleID.Valid && plate == "" {
		return nil, fmt.Errorf("%w: vehicle id or plate number is required", domain.ErrValidation)
	}
	if plate != "" && !domain.ValidPlate(plate) {
		return nil, fmt.Errorf("%w: plate number %q is not valid", domain.ErrValidation, req.Plate)
	}
	if req.AreaID == uuid.Nil {
		return nil, fmt.Errorf("%w: area is required", domain.ErrValidation)
	}
	if req.VehicleTypeID == uuid.Nil {
		return nil, fmt.Errorf("%w: vehicle type is required", domain.ErrValidation)
	}

	now := s.clock.Now()
	prefix := CodePrefix(now, s.clock.Location())

	var created *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// Serializes every check-in of the day: code allocation, the
		// duplicate-session check and capacity admission.
		if err := repos.Transactions.LockCodeSequence(ctx, prefix); err != nil {
			return err
		}

		area, err := repos.Areas.FindByID(ctx, req.AreaID)
		if err != nil {
			return notFound(err, "area", req.AreaID)
		}
		vt, err := repos.VehicleTypes.FindByID(ctx, req.VehicleTypeID)
		if err != nil {
			return notFound(err, "vehicle type", req.VehicleTypeID)
		}

		vehicle, err := s.resolveVehicle(ctx, repos, req, plate)
		if err != nil {
			return err
		}

		active, err := repos.Transactions.FindActiveByVehicle(ctx, vehicle.ID)
		if err == nil {
			return fmt.Errorf("%w: %s is parked under %s", domain.ErrDuplicateActiveSession, vehicle.PlateNumber, active.Code)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		available, err := availableSlots(ctx, repos, area.ID, vt.ID)
		if err != nil {
			return err
		}
		if available <= 0 {
			return fmt.Errorf("%w: area %s has no free %s slots", domain.ErrAreaFull, area.Code, vt.Name)
		}

		code, err := nextCode(ctx, repos.Transactions, prefix)
		if err != nil {
			return err
		}

		trx := &domain.Transaction{
			ID:                uuid.New(),
			Code:              code,
			VehicleID:         vehicle.ID,
			AreaID:            area.ID,
			VehicleTypeID:     vt.ID,
			EntryTime:         now,
			DiscountPercent:   decimal.Zero,
			PaymentStatus:     domain.PaymentUnpaid,
			Status:            domain.StatusParked,
			CheckInOperatorID: req.OperatorID,
		}
		created, err = repos.Transactions.Create(ctx, trx)
		if err != nil {
			return err
		}
		return s.loadRelations(ctx, repos, created)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("TransactionService: checked in %s (vehicle %s, area %s)", created.Code, created.Vehicle.PlateNumber, created.Area.Code)
	s.publish(ctx, domain.EventCheckedIn, created)
	return created, nil
}

func (s *TransactionService) resolveVehicle(ctx context.Context, repos repository.Repositories, req domain.CheckInRequest, plate string) (*domain.Vehicle, error) {
	var vehicle *domain.Vehicle
	var err error
	if req.VehicleID.Valid {
		vehicle, err = repos.Vehicles.FindByID(ctx, req.VehicleID.UUID)
		if err != nil {
			return nil, notFound(err, "vehicle", req.VehicleID.UUID)
		}
	} else {
		vehicle, err = repos.Vehicles.FindByPlate(ctx, plate)
		if errors.Is(err, repository.ErrNotFound) {
			vehicle, err = repos.Vehicles.Create(ctx, &domain.Vehicle{
				PlateNumber:   plate,
				OwnerName:     null.NewString(strings.TrimSpace(req.OwnerName), strings.TrimSpace(req.OwnerName) != ""),
				VehicleTypeID: req.VehicleTypeID,
				IsActive:      true,
			})
			if err == nil {
				log.Printf("TransactionService: registered new vehicle %s", plate)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if !vehicle.IsActive {
		return nil, fmt.Errorf("%w: vehicle %s is deactivated", domain.ErrValidation, vehicle.PlateNumber)
	}
	return vehicle, nil
}

func (s *TransactionService) CheckOut(ctx context.Context, req domain.CheckOutRequest) (*domain.Transaction, error) {
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: payment method must be one of CASH, CARD, EWALLET", domain.ErrValidation)
	}

	var updated *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		trx, err := repos.Transactions.FindByIDForUpdate(ctx, req.TransactionID)
		if err != nil {
			return notFound(err, "transaction", req.TransactionID)
		}
		if trx.Status != domain.StatusParked {
			return fmt.Errorf("%w: transaction %s is %s", domain.ErrInvalidState, trx.Code, trx.Status)
		}

		now := s.clock.Now()
		q, err := s.quote(ctx, repos, trx, now)
		if err != nil {
			return err
		}
		if q.band == nil {
			return fmt.Errorf("%w: %d minutes for transaction %s", domain.ErrNoTariffForDuration, q.minutes, trx.Code)
		}

		trx.ExitTime = null.TimeFrom(now)
		trx.DurationMinutes = null.IntFrom(int64(q.minutes))
		trx.TariffBandID = uuid.NullUUID{UUID: q.band.ID, Valid: true}
		trx.BasePrice = q.band.Price
		trx.DiscountPercent = q.discount
		trx.TotalPaid = q.total
		trx.PaymentMethod = null.StringFrom(string(req.PaymentMethod))
		trx.PaymentStatus = domain.PaymentPaid
		trx.Status = domain.StatusCompleted
		trx.CheckOutOperatorID = req.OperatorID

		updated, err = repos.Transactions.Update(ctx, trx)
		if err != nil {
			return err
		}
		return s.loadRelations(ctx, repos, updated)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("TransactionService: checked out %s after %d min, base %d, discount %s%%, total %d (%s)",
		updated.Code, updated.DurationMinutes.Int64, updated.BasePrice, updated.DiscountPercent.StringFixed(2),
		updated.TotalPaid, req.PaymentMethod)
	s.publish(ctx, domain.EventCheckedOut, updated)
	return updated, nil
}

// Cancel closes a PARKED transaction without billing it.
func (s *TransactionService) Cancel(ctx context.Context, transactionID uuid.UUID, operatorID uuid.NullUUID) (*domain.Transaction, error) {
	var cancelled *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		trx, err := repos.Transactions.FindByIDForUpdate(ctx, transactionID)
		if err != nil {
			return notFound(err, "transaction", transactionID)
		}
		if trx.Status != domain.StatusParked {
			return fmt.Errorf("%w: transaction %s is %s", domain.ErrInvalidState, trx.Code, trx.Status)
		}
		trx.Status = domain.StatusCancelled
		trx.CheckOutOperatorID = operatorID

		cancelled, err = repos.Transactions.Update(ctx, trx)
		if err != nil {
			return err
		}
		return s.loadRelations(ctx, repos, cancelled)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("TransactionService: cancelled %s", cancelled.Code)
	s.publish(ctx, domain.EventCancelled, cancelled)
	return cancelled, nil
}

// Search finds a PARKED transaction by code or plate and prices it as if it
// were checked out now. It returns nil when nothing matches and never writes.
func (s *TransactionService) Search(ctx context.Context, term string) (*domain.TransactionPreview, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrValidation)
	}
	repos := s.store.Repos()

	matches, err := repos.Transactions.SearchParked(ctx, strings.ToUpper(term), domain.NormalizePlate(term), searchLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	trx := matches[0]
	if err := s.loadRelations(ctx, repos, &trx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	q, err := s.quote(ctx, repos, &trx, now)
	if err != nil {
		return nil, err
	}
	preview := &domain.TransactionPreview{
		Transaction:       &trx,
		ComputedAt:        now,
		EstimatedDuration: q.minutes,
		EstimatedDiscount: q.discount,
		EstimatedTotal:    q.total,
		TariffMissing:     q.band == nil,
	}
	if q.band != nil {
		preview.EstimatedTariff = q.band
		preview.EstimatedBase = q.band.Price
	}
	return preview, nil
}

// FindActiveByPlate returns the PARKED transaction of the vehicle with plate.
func (s *TransactionService) FindActiveByPlate(ctx context.Context, plate string) (*domain.Transaction, error) {
	normalized := domain.NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate number is required", domain.ErrValidation)
	}
	repos := s.store.Repos()
	vehicle, err := repos.Vehicles.FindByPlate(ctx, normalized)
	if err != nil {
		return nil, notFound(err, "vehicle", normalized)
	}
	trx, err := repos.Transactions.FindActiveByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, notFound(err, "active transaction for", normalized)
	}
	if err := s.loadRelations(ctx, repos, trx); err != nil {
		return nil, err
	}
	return trx, nil
}

func (s *TransactionService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	repos := s.store.Repos()
	trx, err := repos.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	if err := s.loadRelations(ctx, repos, trx); err != nil {
		return nil, err
	}
	return trx, nil
}

func (s *TransactionService) loadRelations(ctx context.Context, repos repository.Repositories, trx *domain.Transaction) error {
	var err error
	if trx.Vehicle, err = repos.Vehicles.FindByID(ctx, trx.VehicleID); err != nil {
		return fmt.Errorf("load vehicle of %s: %w", trx.Code, err)
	}
	if trx.Area, err = repos.Areas.FindByID(ctx, trx.AreaID); err != nil {
		return fmt.Errorf("load area of %s: %w", trx.Code, err)
	}
	if trx.VehicleType, err = repos.VehicleTypes.FindByID(ctx, trx.VehicleTypeID); err != nil {
		return fmt.Errorf("load vehicle type of %s: %w", trx.Code, err)
	}
	if trx.TariffBandID.Valid {
		if trx.TariffBand, err = repos.Tariffs.FindByID(ctx, trx.TariffBandID.UUID); err != nil {
			return fmt.Errorf("load tariff band of %s: %w", trx.Code, err)
		}
	}
	if trx.CheckInOperatorID.Valid {
		trx.Operator, err = repos.Users.FindByID(ctx, trx.CheckInOperatorID.UUID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("load operator of %s: %w", trx.Code, err)
		}
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, typ domain.TransactionEventType, trx *domain.Transaction) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.TransactionEvent{Type: typ, Transaction: trx, OccurredAt: s.clock.Now()})
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %v", domain.ErrNotFound, what, id)
	}
	return err
}
