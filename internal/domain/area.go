package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParkingArea struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Capacities []Capacity `json:"capacities,omitempty"`
}

// Capacity is the slot allotment of one vehicle type inside an area.
type Capacity struct {
	ID            uuid.UUID `json:"id"`
	AreaID        uuid.UUID `json:"area_id"`
	VehicleTypeID uuid.UUID `json:"vehicle_type_id"`
	TotalSlots    int       `json:"total_slots"`
}

// CapacityStatus is one row of the capacity board.
type CapacityStatus struct {
	AreaID          uuid.UUID `json:"area_id"`
	AreaCode        string    `json:"area_code"`
	AreaName        string    `json:"area_name"`
	VehicleTypeID   uuid.UUID `json:"vehicle_type_id"`
	VehicleTypeCode string    `json:"vehicle_type_code"`
	VehicleTypeName string    `json:"vehicle_type_name"`
	TotalSlots      int       `json:"total_slots"`
	Occupied        int       `json:"occupied"`
	Available       int       `json:"available"`
}

type CreateAreaDTO struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required,max=100"`
	Location string `json:"location" binding:"max=255"`
}

type UpdateAreaDTO struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Location *string `json:"location,omitempty" binding:"omitempty,max=255"`
}

type CapacityDTO struct {
	VehicleTypeID uuid.UUID `json:"vehicle_type_id" binding:"required"`
	TotalSlots    int       `json:"total_slots" binding:"min=0"`
}

type SetCapacitiesDTO struct {
	Capacities []CapacityDTO `json:"capacities" binding:"required,dive"`
}
