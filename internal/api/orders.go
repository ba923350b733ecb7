package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/models"
	"github.com/pickmart/pickmart-go/internal/transport"
)

type OrderService struct {
	client *Client
}

// Create places a pickup order from the current cart contents.
func (s *OrderService) Create(ctx context.Context, pickupPoint string, comment string) (models.Order, error) {
	var order models.Order

	type createOrderRequest struct {
		PickupPoint string `json:"pickup_point" validate:"required,min=2,max=100"`
		Comment     string `json:"comment,omitempty" validate:"max=500"`
	}

	req, err := jsonRequest(http.MethodPost, "/api/orders", createOrderRequest{
		PickupPoint: pickupPoint,
		Comment:     comment,
	})
	if err != nil {
		return order, err
	}

	if err := s.client.doJSON(ctx, req, &order); err != nil {
		return order, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	req := &transport.Request{Method: http.MethodGet, Path: "/api/orders"}

	var orders []models.Order
	if err := s.client.doJSON(ctx, req, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	req := &transport.Request{Method: http.MethodGet, Path: "/api/orders/" + id.String()}

	var order models.Order
	if err := s.client.doJSON(ctx, req, &order); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return order, fmt.Errorf("%w: %s", apperrors.ErrOrderNotFound, id)
		}
		return order, err
	}
	return order, nil
}
