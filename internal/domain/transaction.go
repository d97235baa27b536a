package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

type TransactionStatus string

const (
	StatusParked    TransactionStatus = "PARKED"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusParked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentCard    PaymentMethod = "CARD"
	PaymentEWallet PaymentMethod = "EWALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentEWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Transaction is one parking session. VehicleTypeID is copied from the request
// at check-in and billing always uses it, even if the vehicle is re-typed later.
type Transaction struct {
	ID                 uuid.UUID         `json:"id"`
	Code               string            `json:"code"`
	VehicleID          uuid.UUID         `json:"vehicle_id"`
	AreaID             uuid.UUID         `json:"area_id"`
	VehicleTypeID      uuid.UUID         `json:"vehicle_type_id"`
	TariffBandID       uuid.NullUUID     `json:"tariff_band_id"`
	EntryTime          time.Time         `json:"entry_time"`
	ExitTime           null.Time         `json:"exit_time"`
	DurationMinutes    null.Int          `json:"duration_minutes"`
	BasePrice          int64             `json:"base_price"`
	DiscountPercent    decimal.Decimal   `json:"discount_percent"`
	TotalPaid          int64             `json:"total_paid"`
	PaymentMethod      null.String       `json:"payment_method"`
	PaymentStatus      PaymentStatus     `json:"payment_status"`
	Status             TransactionStatus `json:"status"`
	CheckInOperatorID  uuid.NullUUID     `json:"check_in_operator_id"`
	CheckOutOperatorID uuid.NullUUID     `json:"check_out_operator_id"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Vehicle     *Vehicle     `json:"vehicle,omitempty"`
	Area        *ParkingArea `json:"area,omitempty"`
	VehicleType *VehicleType `json:"vehicle_type,omitempty"`
	TariffBand  *TariffBand  `json:"tariff_band,omitempty"`
	Operator    *User        `json:"operator,omitempty"`
}

// TransactionPreview is a PARKED transaction together with the price it would
// be charged if checked out at ComputedAt. Nothing in it is persisted.
type TransactionPreview struct {
	Transaction       *Transaction    `json:"transaction"`
	ComputedAt        time.Time       `json:"computed_at"`
	EstimatedDuration int             `json:"estimated_duration_minutes"`
	EstimatedTariff   *TariffBand     `json:"estimated_tariff,omitempty"`
	EstimatedBase     int64           `json:"estimated_base_price"`
	EstimatedDiscount decimal.Decimal `json:"estimated_discount_percent"`
	EstimatedTotal    int64           `json:"estimated_total"`
	TariffMissing     bool            `json:"tariff_missing"`
}

type CheckInRequest struct {
	VehicleID     uuid.NullUUID
	Plate         string
	OwnerName     string
	AreaID        uuid.UUID
	VehicleTypeID uuid.UUID
	OperatorID    uuid.NullUUID
}

type CheckOutRequest struct {
	TransactionID uuid.UUID
	PaymentMethod PaymentMethod
	OperatorID    uuid.NullUUID
}

// CheckInDTO is the HTTP body of a check-in; either vehicle_id or plate_number is required.
type CheckInDTO struct {
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
	PlateNumber   string     `json:"plate_number,omitempty" binding:"omitempty,plate"`
	OwnerName     string     `json:"owner_name,omitempty" binding:"max=100"`
	AreaID        uuid.UUID  `json:"area_id" binding:"required"`
	VehicleTypeID uuid.UUID  `json:"vehicle_type_id" binding:"required"`
}

type CheckOutDTO struct {
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required"`
}

type TransactionEventType string

const (
	EventCheckedIn  TransactionEventType = "checked_in"
	EventCheckedOut TransactionEventType = "checked_out"
	EventCancelled  TransactionEventType = "cancelled"
)

// TransactionEvent is emitted after a state change has been committed.
type TransactionEvent struct {
	Type        TransactionEventType `json:"type"`
	Transaction *Transaction         `json:"transaction"`
	OccurredAt  time.Time            `json:"occurred_at"`
}
