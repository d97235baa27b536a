package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
)

// MQTTPublisher is the part of the IoT data plane client used for commands.
type MQTTPublisher interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// BarrierCommander opens the barrier of an area after a committed check-in
// or check-out. It is registered as a transaction event publisher.
type BarrierCommander struct {
	client MQTTPublisher
}

func NewBarrierCommander(client MQTTPublisher) *BarrierCommander {
	return &BarrierCommander{client: client}
}

// BarrierTopic is the command topic of one barrier of an area.
func BarrierTopic(areaCode string, direction domain.GateDirection) string {
	return fmt.Sprintf("parking/command/barriers/%s/%s", areaCode, direction)
}

func (b *BarrierCommander) Publish(ctx context.Context, event domain.TransactionEvent) {
	var direction domain.GateDirection
	switch event.Type {
	case domain.EventCheckedIn:
		direction = domain.GateDirectionEntry
	case domain.EventCheckedOut:
		direction = domain.GateDirectionExit
	default:
		return
	}
	trx := event.Transaction
	if trx == nil || trx.Area == nil {
		log.Printf("BarrierCommander: %s event without area, no command sent", event.Type)
		return
	}
	if err := b.Open(ctx, trx.Area.Code, direction, trx.Code); err != nil {
		log.Printf("BarrierCommander: %v", err)
	}
}

// Open publishes an open command with QoS 1.
func (b *BarrierCommander) Open(ctx context.Context, areaCode string, direction domain.GateDirection, transactionCode string) error {
	payload := domain.BarrierCommandPayload{
		Command:         "open",
		RequestID:       uuid.NewString(),
		TransactionCode: transactionCode,
		Direction:       string(direction),
		IssuedAt:        timeNow().UTC(),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal barrier command: %w", err)
	}

	topic := BarrierTopic(areaCode, direction)
	_, err = b.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("publish barrier command to %s: %w", topic, err)
	}
	log.Printf("BarrierCommander: sent 'open' (req %s) to %s for %s", payload.RequestID, topic, transactionCode)
	return nil
}
