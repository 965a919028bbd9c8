package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/internal/inventory"
	"github.com/kusinaops/inventory-service/internal/inventory/dto"
	"github.com/kusinaops/inventory-service/internal/model"
	"github.com/kusinaops/inventory-service/pkg/broker"
	"github.com/kusinaops/inventory-service/pkg/logger"
)

// OrderListener consumes order events from the ordering service and deducts
// recipe ingredients from stock.
type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderPlacedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID           string             `json:"id"`
	RestaurantID string             `json:"restaurant_id"`
	Items        []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ItemID                string   `json:"item_id"`
	DishID                string   `json:"dish_id"`
	Quantity              int      `json:"quantity"`
	VariantMultiplier     float64  `json:"variant_multiplier"`
	ExcludedIngredientIDs []string `json:"excluded_ingredient_ids"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderPlaced" {
		return
	}

	l.logger.Info("Processing OrderPlaced event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		input := &dto.DishSaleInput{
			RestaurantID:          event.Payload.RestaurantID,
			DishID:                item.DishID,
			Quantity:              item.Quantity,
			VariantMultiplier:     item.VariantMultiplier,
			ExcludedIngredientIDs: item.ExcludedIngredientIDs,
			ReferenceID:           item.ItemID,
			UserID:                "system",
		}

		_, err := l.uc.SubtractStockFromDishSale(ctx, input)
		if err != nil {
			var short *model.InsufficientStockError
			if errors.As(err, &short) {
				// The order was already accepted upstream; flag the shortage
				// for the kitchen rather than retrying.
				l.logger.Warn("Order item exceeds available stock",
					zap.String("order_id", event.Payload.ID),
					zap.String("dish_id", item.DishID),
					zap.String("ingredient_id", short.IngredientID),
					zap.Float64("shortage", short.Requested-short.Available),
				)
				continue
			}
			l.logger.Error("Failed to deduct stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("dish_id", item.DishID),
				zap.Error(err),
			)
		}
	}
}
