package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const envelopeVersion = 1

// 全イベント共通の外枠
type Envelope[T any] struct {
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	EventID      string    `json:"eventId"`
	Producer     string    `json:"producer"`
	PartitionKey string    `json:"partitionKey"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      T         `json:"payload"`
}

func NewEnvelope[T any](producer, name, key string, payload T, now time.Time) Envelope[T] {
	return Envelope[T]{
		EventName:    name,
		EventVersion: envelopeVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: key,
		OccurredAt:   now.UTC(),
		Payload:      payload,
	}
}

// ID・名前・キーが揃っているか
func (e Envelope[T]) Validate(expectedName string) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != envelopeVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}
