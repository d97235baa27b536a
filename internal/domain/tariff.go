package domain

import (
	"time"

	"github.com/google/uuid"
)

// TariffBand prices a parking session whose duration in minutes falls inside
// [DurationMin, DurationMax], both ends inclusive.
type TariffBand struct {
	ID            uuid.UUID `json:"id"`
	VehicleTypeID uuid.UUID `json:"vehicle_type_id"`
	DurationMin   int       `json:"duration_min"`
	DurationMax   int       `json:"duration_max"`
	Price         int64     `json:"price"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Covers reports whether minutes lies inside the band.
func (b TariffBand) Covers(minutes int) bool {
	return b.DurationMin <= minutes && minutes <= b.DurationMax
}

// RangesOverlap reports whether the inclusive ranges [a,b] and [c,d] intersect.
// Touching bounds count as overlap.
func RangesOverlap(a, b, c, d int) bool {
	return a <= d && c <= b
}

type TariffBandDTO struct {
	VehicleTypeID uuid.UUID `json:"vehicle_type_id" binding:"required"`
	DurationMin   int       `json:"duration_min"`
	DurationMax   int       `json:"duration_max"`
	Price         int64     `json:"price"`
	IsActive      *bool     `json:"is_active,omitempty"`
}
