package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemberTier string

const (
	TierRegular MemberTier = "REGULAR"
	TierSilver  MemberTier = "SILVER"
	TierGold    MemberTier = "GOLD"
)

func (t MemberTier) Valid() bool {
	switch t {
	case TierRegular, TierSilver, TierGold:
		return true
	}
	return false
}

// Member is a membership window for one vehicle. StartDate and EndDate are
// calendar dates (midnight UTC) and both are inclusive.
type Member struct {
	ID              uuid.UUID       `json:"id"`
	VehicleID       uuid.UUID       `json:"vehicle_id"`
	Tier            MemberTier      `json:"tier"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ActiveOn reports whether the calendar date day falls inside the window.
func (m Member) ActiveOn(day time.Time) bool {
	return !day.Before(m.StartDate) && !day.After(m.EndDate)
}

// DatesOverlap is the inclusive interval test applied to calendar dates.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

type CreateMembershipDTO struct {
	VehicleID       uuid.UUID       `json:"vehicle_id" binding:"required"`
	Tier            MemberTier      `json:"tier" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartDate       string          `json:"start_date" binding:"required"` // YYYY-MM-DD
	Months          int             `json:"months" binding:"required,min=1,max=120"`
}

type RenewMembershipDTO struct {
	VehicleID       uuid.UUID        `json:"vehicle_id" binding:"required"`
	Months          int              `json:"months" binding:"required,min=1,max=120"`
	Tier            MemberTier       `json:"tier,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}
