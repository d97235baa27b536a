// Package gate connects physical gate controllers to the transaction engine:
// plate reads arrive through SQS and barrier commands leave over AWS IoT.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Engine is the part of the transaction service driven by gate reads.
type Engine interface {
	CheckIn(ctx context.Context, req domain.CheckInRequest) (*domain.Transaction, error)
	CheckOut(ctx context.Context, req domain.CheckOutRequest) (*domain.Transaction, error)
	FindActiveByPlate(ctx context.Context, plate string) (*domain.Transaction, error)
}

// Processor turns plate_read messages into check-ins and check-outs.
type Processor struct {
	engine Engine
}

func NewProcessor(engine Engine) *Processor {
	return &Processor{engine: engine}
}

// Handle implements MessageHandler. Malformed messages and rejected
// operations are logged and acknowledged; only infrastructure failures are
// returned so the queue redelivers them.
func (p *Processor) Handle(ctx context.Context, body string) error {
	if !gjson.Valid(body) {
		log.Printf("GateProcessor: dropping invalid JSON: %.200s", body)
		return nil
	}
	msgType := gjson.Get(body, "message_type").String()
	if msgType != "plate_read" {
		log.Printf("GateProcessor: ignoring message type '%s'", msgType)
		return nil
	}

	read, err := ParseGateRead(body)
	if err != nil {
		log.Printf("GateProcessor: dropping message: %v", err)
		return nil
	}

	var trx *domain.Transaction
	switch read.Direction {
	case domain.GateDirectionEntry:
		trx, err = p.engine.CheckIn(ctx, domain.CheckInRequest{
			Plate:         read.PlateNumber,
			AreaID:        read.AreaID,
			VehicleTypeID: read.VehicleTypeID,
		})
	case domain.GateDirectionExit:
		trx, err = p.checkOut(ctx, read)
	}
	if err != nil {
		if isRejection(err) {
			log.Printf("GateProcessor: %s read %s at gate %s rejected: %v", read.Direction, read.PlateNumber, read.GateID, err)
			return nil
		}
		return fmt.Errorf("gate %s %s %s: %w", read.GateID, read.Direction, read.PlateNumber, err)
	}
	log.Printf("GateProcessor: gate %s %s %s -> %s (%s)", read.GateID, read.Direction, read.PlateNumber, trx.Code, trx.Status)
	return nil
}

func (p *Processor) checkOut(ctx context.Context, read domain.GateRead) (*domain.Transaction, error) {
	active, err := p.engine.FindActiveByPlate(ctx, read.PlateNumber)
	if err != nil {
		return nil, err
	}
	return p.engine.CheckOut(ctx, domain.CheckOutRequest{
		TransactionID: active.ID,
		PaymentMethod: read.PaymentMethod,
	})
}

// ParseGateRead extracts a plate read from a gate message body.
func ParseGateRead(body string) (domain.GateRead, error) {
	fields := gjson.GetMany(body, "message_id", "gate_id", "direction", "plate_number",
		"area_id", "vehicle_type_id", "payment_method", "timestamp")

	read := domain.GateRead{
		MessageID:     fields[0].String(),
		GateID:        fields[1].String(),
		Direction:     domain.GateDirection(fields[2].String()),
		PlateNumber:   domain.NormalizePlate(fields[3].String()),
		PaymentMethod: domain.PaymentMethod(fields[6].String()),
	}
	if read.PlateNumber == "" {
		return read, fmt.Errorf("%w: plate_number is required", domain.ErrValidation)
	}

	switch read.Direction {
	case domain.GateDirectionEntry:
		var err error
		if read.AreaID, err = uuid.Parse(fields[4].String()); err != nil {
			return read, fmt.Errorf("%w: area_id: %v", domain.ErrValidation, err)
		}
		if read.VehicleTypeID, err = uuid.Parse(fields[5].String()); err != nil {
			return read, fmt.Errorf("%w: vehicle_type_id: %v", domain.ErrValidation, err)
		}
	case domain.GateDirectionExit:
		if read.PaymentMethod == "" {
			read.PaymentMethod = domain.PaymentCash
		}
	default:
		return read, fmt.Errorf("%w: unknown direction '%s'", domain.ErrValidation, read.Direction)
	}

	read.ReadAt = timeNow().UTC()
	if ts := fields[7].String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			read.ReadAt = t
		}
	}
	return read, nil
}

var timeNow = time.Now

func isRejection(err error) bool {
	for _, kind := range []error{
		domain.ErrValidation,
		domain.ErrDuplicateActiveSession,
		domain.ErrNotFound,
		domain.ErrInvalidState,
		domain.ErrNoTariffForDuration,
		domain.ErrAreaFull,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
