package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusNew       = "NEW"
	OrderStatusAccepted  = "ACCEPTED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCanceled  = "CANCELED"
)

type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items,omitempty"`
	Total       decimal.Decimal `json:"total"`
	PickupPoint string          `json:"pickup_point"`
	CreatedAt   time.Time       `json:"created_at"`
	ReadyAt     *time.Time      `json:"ready_at,omitempty"` // nil until the store marks the order ready
}

// OrderStatusTerminal reports whether the status can still change.
// Ready orders stay terminal from the customer's point of view: the
// remaining transitions (pickup, timeout cancel) need no further watching.
func OrderStatusTerminal(status string) bool {
	switch status {
	case OrderStatusReady, OrderStatusCompleted, OrderStatusCanceled:
		return true
	default:
		return false
	}
}
