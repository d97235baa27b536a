package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type VehicleType struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID            uuid.UUID   `json:"id"`
	PlateNumber   string      `json:"plate_number"`
	OwnerName     null.String `json:"owner_name"`
	VehicleTypeID uuid.UUID   `json:"vehicle_type_id"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type CreateVehicleTypeDTO struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateVehicleTypeDTO only carries display fields; the code is fixed once created.
type UpdateVehicleTypeDTO struct {
	Name string `json:"name" binding:"required,max=100"`
}

// platePattern matches a normalized Indonesian registration: region letters,
// up to four digits, then an optional letter suffix (e.g. B1234XYZ).
var platePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,4}[A-Z]{0,3}$`)

// ValidPlate reports whether a normalized plate looks like a registration number.
func ValidPlate(plate string) bool {
	return platePattern.MatchString(plate)
}

// NormalizePlate upper-cases a plate number and strips spaces, dashes and dots.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer(" ", "", "-", "", ".", "").Replace(plate)
}
