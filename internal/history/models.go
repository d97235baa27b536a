package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

// The models below mirror the tables written by the transaction engine. They
// are only ever read through gorm.

type AreaModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:100;not null"`
	Location  string    `gorm:"size:255;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AreaModel) TableName() string { return "parking_areas" }

type VehicleTypeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (VehicleTypeModel) TableName() string { return "vehicle_types" }

type VehicleModel struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey"`
	PlateNumber   string      `gorm:"size:20;not null;uniqueIndex"`
	OwnerName     null.String `gorm:"size:100"`
	VehicleTypeID uuid.UUID   `gorm:"type:uuid;not null"`
	IsActive      bool        `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VehicleModel) TableName() string { return "vehicles" }

type TransactionModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code               string          `gorm:"size:32;not null;uniqueIndex"`
	VehicleID          uuid.UUID       `gorm:"type:uuid;not null"`
	AreaID             uuid.UUID       `gorm:"type:uuid;not null"`
	VehicleTypeID      uuid.UUID       `gorm:"type:uuid;not null"`
	TariffBandID       uuid.NullUUID   `gorm:"type:uuid"`
	EntryTime          time.Time       `gorm:"not null;index"`
	ExitTime           null.Time       `gorm:"index"`
	DurationMinutes    null.Int
	BasePrice          int64           `gorm:"not null;default:0"`
	DiscountPercent    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	TotalPaid          int64           `gorm:"not null;default:0"`
	PaymentMethod      null.String     `gorm:"size:10"`
	PaymentStatus      string          `gorm:"size:10;not null;default:UNPAID"`
	Status             string          `gorm:"size:10;not null;default:PARKED"`
	CheckInOperatorID  uuid.NullUUID   `gorm:"type:uuid"`
	CheckOutOperatorID uuid.NullUUID   `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (TransactionModel) TableName() string { return "transactions" }

// TransactionRow is one line of the active and history listings.
type TransactionRow struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	PlateNumber     string      `json:"plate_number"`
	AreaCode        string      `json:"area_code"`
	AreaName        string      `json:"area_name"`
	VehicleTypeCode string      `json:"vehicle_type_code"`
	VehicleTypeName string      `json:"vehicle_type_name"`
	EntryTime       time.Time   `json:"entry_time"`
	ExitTime        null.Time   `json:"exit_time"`
	DurationMinutes null.Int    `json:"duration_minutes"`
	TotalPaid       int64       `json:"total_paid"`
	PaymentMethod   null.String `json:"payment_method"`
	Status          string      `json:"status"`
}

type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}
