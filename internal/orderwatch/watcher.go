// Package orderwatch polls an order until the store finishes preparing it.
package orderwatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/models"
)

const defaultPollInterval = 5 * time.Second

type orderGetter interface {
	Get(ctx context.Context, id uuid.UUID) (models.Order, error)
}

type Watcher struct {
	interval time.Duration
	orders   orderGetter
	logger   logger.Logger
}

func New(orders orderGetter, log logger.Logger) *Watcher {
	return &Watcher{
		interval: defaultPollInterval,
		orders:   orders,
		logger:   log,
	}
}

// NewWithInterval is meant for tests and impatient callers.
func NewWithInterval(orders orderGetter, log logger.Logger, interval time.Duration) *Watcher {
	w := New(orders, log)
	w.interval = interval
	return w
}

// Watch polls the order and delivers every status change on the returned
// channel. The channel closes once the order reaches a terminal status, the
// session ends, or ctx is done.
func (w *Watcher) Watch(ctx context.Context, orderID uuid.UUID) <-chan models.Order {
	out := make(chan models.Order, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		var lastStatus string
		for {
			order, err := w.orders.Get(ctx, orderID)
			switch {
			case err != nil:
				w.logger.Error("Failed to fetch watched order", "error", err, "order_id", orderID)

				// Retrying can't help a gone order or a dead session
				if errors.Is(err, apperrors.ErrOrderNotFound) || errors.Is(err, apperrors.ErrSessionExpired) {
					return
				}

			case order.Status != lastStatus:
				lastStatus = order.Status
				w.logger.Debug("Order status changed", "order_id", orderID, "status", order.Status)

				select {
				case out <- order:
				case <-ctx.Done():
					return
				}

				if models.OrderStatusTerminal(order.Status) {
					return
				}
			}

			select {
			case <-ctx.Done():
				w.logger.Debug("Order watch stopped by context", "order_id", orderID)
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}
