package publisher

import (
	"context"
	"encoding/json"

	"github.com/kusinaops/inventory-service/internal/inventory"
	"github.com/kusinaops/inventory-service/pkg/broker"
)

// KafkaPublisher emits inventory-changed events to the inventory events
// topic, keyed by ingredient id so per-ingredient ordering is preserved.
type KafkaPublisher struct {
	publisher *broker.KafkaPublisher
}

func NewKafkaPublisher(publisher *broker.KafkaPublisher) *KafkaPublisher {
	return &KafkaPublisher{publisher: publisher}
}

func (p *KafkaPublisher) PublishInventoryChanged(ctx context.Context, event *inventory.InventoryChangedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, event.IngredientID, value)
}
