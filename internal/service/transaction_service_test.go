package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOut_SingleBandNoMember(t *testing.T) {
	f := newFixture(t, 10)
	band := f.band(t, 0, 60, 5000)
	parked := f.checkIn(t, "B1234XY")

	f.clock.Advance(45 * time.Minute)
	done, err := f.trx.CheckOut(context.Background(), domain.CheckOutRequest{
		TransactionID: parked.ID, PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.Equal(t, domain.PaymentPaid, done.PaymentStatus)
	assert.Equal(t, int64(45), done.DurationMinutes.Int64)
	assert.Equal(t, band.ID, done.TariffBandID.UUID)
	assert.Equal(t, int64(5000), done.BasePrice)
	assert.True(t, done.DiscountPercent.IsZero())
	assert.Equal(t, int64(5000), done.TotalPaid)
	assert.Equal(t, "CASH", done.PaymentMethod.String)
	assert.Equal(t, fixtureStart.Add(45*time.Minute), done.ExitTime.Time)
	require.NotNil(t, done.TariffBand)
	assert.Equal(t, []domain.TransactionEventType{domain.EventCheckedIn, domain.EventCheckedOut}, f.events.types())
}

func TestCheckOut_AppliesActiveMembershipDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)
	parked := f.checkIn(t, "B1234XY")

	_, err := f.discounts.CreateMembership(ctx, domain.CreateMembershipDTO{
		VehicleID: parked.VehicleID, Tier: domain.TierSilver, DiscountPercent: decimal.NewFromInt(5),
		StartDate: "2024-03-01", Months: 1,
	})
	require.NoError(t, err)

	f.clock.Advance(45 * time.Minute)
	done, err := f.trx.CheckOut(ctx, domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: domain.PaymentCard})
	require.NoError(t, err)

	assert.Equal(t, "5.00", done.DiscountPercent.StringFixed(2))
	assert.Equal(t, int64(5000), done.BasePrice)
	assert.Equal(t, int64(4750), done.TotalPaid)
}

func TestCheckOut_SelectsBandByDuration(t *testing.T) {
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)
	second := f.band(t, 61, 120, 8000)
	parked := f.checkIn(t, "B1234XY")

	f.clock.Advance(65 * time.Minute)
	done, err := f.trx.CheckOut(context.Background(), domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: domain.PaymentEWallet})
	require.NoError(t, err)

	assert.Equal(t, int64(65), done.DurationMinutes.Int64)
	assert.Equal(t, second.ID, done.TariffBandID.UUID)
	assert.Equal(t, int64(8000), done.TotalPaid)
}

func TestCheckOut_NoTariffLeavesTransactionParked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)
	f.band(t, 61, 120, 8000)
	parked := f.checkIn(t, "B1234XY")

	f.clock.Advance(200 * time.Minute)
	_, err := f.trx.CheckOut(ctx, domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: domain.PaymentCash})
	require.ErrorIs(t, err, domain.ErrNoTariffForDuration)

	stored, err := f.trx.FindByID(ctx, parked.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusParked, stored.Status)
	assert.Equal(t, domain.PaymentUnpaid, stored.PaymentStatus)
	assert.False(t, stored.ExitTime.Valid)
	assert.False(t, stored.TariffBandID.Valid)
	assert.Zero(t, stored.TotalPaid)
	assert.Equal(t, []domain.TransactionEventType{domain.EventCheckedIn}, f.events.types())
}

func TestCheckIn_ConcurrentSamePlateAdmitsOnce(t *testing.T) {
	f := newFixture(t, 50)
	const attempts = 10

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.trx.CheckIn(context.Background(), f.request("B1234XY"))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateActiveSession)
	}
	assert.Equal(t, 1, succeeded)

	available, err := f.capacity.AvailableSlots(context.Background(), f.area.ID, f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, 49, available)
}

func TestCheckIn_ConcurrentCodesAreUnique(t *testing.T) {
	f := newFixture(t, 50)
	const vehicles = 20

	var wg sync.WaitGroup
	codes := make([]string, vehicles)
	for i := range vehicles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trx, err := f.trx.CheckIn(context.Background(), f.request(fmt.Sprintf("B%dXY", 1000+i)))
			if assert.NoError(t, err) {
				codes[i] = trx.Code
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, code := range codes {
		assert.False(t, seen[code], "code %s issued twice", code)
		seen[code] = true
		assert.Regexp(t, `^TRX-20240301-\d{4}$`, code)
	}
	assert.True(t, seen["TRX-20240301-0001"])
	assert.True(t, seen[fmt.Sprintf("TRX-20240301-%04d", vehicles)])
}

func TestCheckIn_CreatesVehicleAndLoadsRelations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	req := f.request("b 1234-xy")
	req.OwnerName = " Budi "
	trx, err := f.trx.CheckIn(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "TRX-20240301-0001", trx.Code)
	assert.Equal(t, domain.StatusParked, trx.Status)
	assert.Equal(t, domain.PaymentUnpaid, trx.PaymentStatus)
	assert.Equal(t, fixtureStart, trx.EntryTime)
	assert.Zero(t, trx.TotalPaid)
	require.NotNil(t, trx.Vehicle)
	assert.Equal(t, "B1234XY", trx.Vehicle.PlateNumber)
	assert.Equal(t, "Budi", trx.Vehicle.OwnerName.String)
	assert.Equal(t, "A1", trx.Area.Code)
	assert.Equal(t, "CAR", trx.VehicleType.Code)

	byPlate, err := f.trx.FindActiveByPlate(ctx, "B1234XY")
	require.NoError(t, err)
	assert.Equal(t, trx.ID, byPlate.ID)
}

func TestCheckIn_ByVehicleID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	vehicle, err := f.store.Repos().Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "D5678ABC", VehicleTypeID: f.car.ID, IsActive: true})
	require.NoError(t, err)

	trx, err := f.trx.CheckIn(ctx, domain.CheckInRequest{
		VehicleID: uuid.NullUUID{UUID: vehicle.ID, Valid: true}, AreaID: f.area.ID, VehicleTypeID: f.car.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, trx.VehicleID)

	_, err = f.trx.CheckIn(ctx, domain.CheckInRequest{
		VehicleID: uuid.NullUUID{UUID: uuid.New(), Valid: true}, AreaID: f.area.ID, VehicleTypeID: f.car.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckIn_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	_, err := f.trx.CheckIn(ctx, domain.CheckInRequest{AreaID: f.area.ID, VehicleTypeID: f.car.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.trx.CheckIn(ctx, f.request("not a plate!"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	req := f.request("B1234XY")
	req.AreaID = uuid.New()
	_, err = f.trx.CheckIn(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.checkIn(t, "B1234XY")
	_, err = f.trx.CheckIn(ctx, f.request("B5678XY"))
	assert.ErrorIs(t, err, domain.ErrAreaFull)

	// The rejected check-in must not leave its lazily created vehicle behind.
	_, err = f.store.Repos().Vehicles.FindByPlate(ctx, "B5678XY")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	motor, err := f.store.Repos().VehicleTypes.Create(ctx, &domain.VehicleType{Code: "MOTOR", Name: "Motorcycle"})
	require.NoError(t, err)
	req = f.request("B9999XY")
	req.VehicleTypeID = motor.ID
	_, err = f.trx.CheckIn(ctx, req)
	assert.ErrorIs(t, err, domain.ErrAreaFull)
}

func TestCheckIn_DeactivatedVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	_, err := f.store.Repos().Vehicles.Create(ctx, &domain.Vehicle{PlateNumber: "B1234XY", VehicleTypeID: f.car.ID})
	require.NoError(t, err)

	_, err = f.trx.CheckIn(ctx, f.request("B1234XY"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)
	operator := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	completed := f.checkIn(t, "B1234XY")
	_, err := f.trx.CheckOut(ctx, domain.CheckOutRequest{TransactionID: completed.ID, PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	cancelled := f.checkIn(t, "B5678XY")
	got, err := f.trx.Cancel(ctx, cancelled.ID, operator)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, operator, got.CheckOutOperatorID)
	assert.Zero(t, got.TotalPaid)
	assert.Equal(t, domain.PaymentUnpaid, got.PaymentStatus)

	for _, id := range []uuid.UUID{completed.ID, cancelled.ID} {
		_, err = f.trx.CheckOut(ctx, domain.CheckOutRequest{TransactionID: id, PaymentMethod: domain.PaymentCash})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = f.trx.Cancel(ctx, id, operator)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}

	_, err = f.trx.Cancel(ctx, uuid.New(), operator)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Both vehicles can park again.
	f.checkIn(t, "B1234XY")
	f.checkIn(t, "B5678XY")
}

func TestCheckOut_RejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t, 10)
	parked := f.checkIn(t, "B1234XY")

	_, err := f.trx.CheckOut(context.Background(), domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: "BARTER"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckOut_IsDeterministic(t *testing.T) {
	totals := make([]int64, 2)
	for i := range totals {
		f := newFixture(t, 10)
		f.band(t, 0, 60, 5000)
		f.band(t, 61, 180, 9000)
		parked := f.checkIn(t, "B1234XY")
		_, err := f.discounts.CreateMembership(context.Background(), domain.CreateMembershipDTO{
			VehicleID: parked.VehicleID, Tier: domain.TierGold, DiscountPercent: decimal.RequireFromString("12.5"),
			StartDate: "2024-02-15", Months: 1,
		})
		require.NoError(t, err)
		f.clock.Advance(95*time.Minute + 59*time.Second)
		done, err := f.trx.CheckOut(context.Background(), domain.CheckOutRequest{TransactionID: parked.ID, PaymentMethod: domain.PaymentCash})
		require.NoError(t, err)
		assert.Equal(t, int64(95), done.DurationMinutes.Int64)
		totals[i] = done.TotalPaid
	}
	assert.Equal(t, int64(7875), totals[0])
	assert.Equal(t, totals[0], totals[1])
}

func TestSearch_PreviewDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.band(t, 0, 60, 5000)
	parked := f.checkIn(t, "B1234XY")
	f.checkIn(t, "B1234XYZ")

	f.clock.Advance(30 * time.Minute)
	preview, err := f.trx.Search(ctx, "b 1234 xy")
	require.NoError(t, err)
	require.NotNil(t, preview)

	assert.Equal(t, parked.ID, preview.Transaction.ID)
	assert.Equal(t, 30, preview.EstimatedDuration)
	assert.Equal(t, int64(5000), preview.EstimatedBase)
	assert.Equal(t, int64(5000), preview.EstimatedTotal)
	assert.False(t, preview.TariffMissing)
	assert.Equal(t, fixtureStart.Add(30*time.Minute), preview.ComputedAt)

	stored, err := f.trx.FindByID(ctx, parked.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusParked, stored.Status)
	assert.False(t, stored.ExitTime.Valid)

	byCode, err := f.trx.Search(ctx, "trx-20240301-0001")
	require.NoError(t, err)
	assert.Equal(t, parked.ID, byCode.Transaction.ID)

	f.clock.Advance(3 * time.Hour)
	late, err := f.trx.Search(ctx, "B1234XY")
	require.NoError(t, err)
	assert.True(t, late.TariffMissing)
	assert.Zero(t, late.EstimatedTotal)
}

func TestSearch_NoMatch(t *testing.T) {
	f := newFixture(t, 10)

	preview, err := f.trx.Search(context.Background(), "Z9999")
	require.NoError(t, err)
	assert.Nil(t, preview)

	_, err = f.trx.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 0, DurationMinutes(fixtureStart, fixtureStart.Add(59*time.Second)))
	assert.Equal(t, 1, DurationMinutes(fixtureStart, fixtureStart.Add(time.Minute)))
	assert.Equal(t, 0, DurationMinutes(fixtureStart, fixtureStart.Add(-time.Hour)))
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, int64(4750), ComputeTotal(5000, decimal.NewFromInt(5)))
	assert.Equal(t, int64(2916), ComputeTotal(3333, decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(0), ComputeTotal(5000, decimal.NewFromInt(100)))
	assert.Equal(t, int64(5000), ComputeTotal(5000, decimal.Zero))
}
