package inventory

import (
	"context"
	"time"
)

// InventoryChangedEvent notifies collaborators (dashboards, reorder alerts)
// of a committed stock mutation.
type InventoryChangedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"` // always "InventoryChanged"
	RestaurantID  string    `json:"restaurant_id"`
	IngredientID  string    `json:"ingredient_id"`
	Action        string    `json:"action"` // 'increased', 'decreased', 'updated'
	PreviousStock float64   `json:"previous_stock"`
	NewStock      float64   `json:"new_stock"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishInventoryChanged(ctx context.Context, event *InventoryChangedEvent) error
}
