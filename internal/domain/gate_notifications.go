package domain

import (
	"time"

	"github.com/google/uuid"
)

type GateDirection string

const (
	GateDirectionEntry GateDirection = "entry"
	GateDirectionExit  GateDirection = "exit"
)

// GateRead is a plate read reported by a gate controller through the queue.
type GateRead struct {
	MessageID     string
	GateID        string
	Direction     GateDirection
	PlateNumber   string
	AreaID        uuid.UUID
	VehicleTypeID uuid.UUID
	PaymentMethod PaymentMethod
	ReadAt        time.Time
}

// BarrierCommandPayload is published to the gate's MQTT command topic.
type BarrierCommandPayload struct {
	Command         string    `json:"command"` // "open"
	RequestID       string    `json:"request_id"`
	TransactionCode string    `json:"transaction_code"`
	Direction       string    `json:"direction"`
	IssuedAt        time.Time `json:"issued_at"`
}
