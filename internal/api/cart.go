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

type CartService struct {
	client *Client
}

func (s *CartService) Get(ctx context.Context) (models.Cart, error) {
	req := &transport.Request{Method: http.MethodGet, Path: "/api/cart"}

	var cart models.Cart
	if err := s.client.doJSON(ctx, req, &cart); err != nil {
		return cart, err
	}
	return cart, nil
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=99"`
}

func (s *CartService) AddItem(ctx context.Context, productID uuid.UUID, quantity int) (models.Cart, error) {
	var cart models.Cart

	req, err := jsonRequest(http.MethodPost, "/api/cart/items", cartItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return cart, err
	}

	if err := s.client.doJSON(ctx, req, &cart); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return cart, fmt.Errorf("%w: %s", apperrors.ErrProductNotFound, productID)
		}
		return cart, err
	}
	return cart, nil
}

func (s *CartService) UpdateItem(ctx context.Context, productID uuid.UUID, quantity int) (models.Cart, error) {
	var cart models.Cart

	type updateItemRequest struct {
		Quantity int `json:"quantity" validate:"required,min=1,max=99"`
	}

	req, err := jsonRequest(http.MethodPut, "/api/cart/items/"+productID.String(), updateItemRequest{
		Quantity: quantity,
	})
	if err != nil {
		return cart, err
	}

	if err := s.client.doJSON(ctx, req, &cart); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return cart, fmt.Errorf("%w: %s", apperrors.ErrCartItemNotFound, productID)
		}
		return cart, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, productID uuid.UUID) (models.Cart, error) {
	var cart models.Cart

	req := &transport.Request{Method: http.MethodDelete, Path: "/api/cart/items/" + productID.String()}

	if err := s.client.doJSON(ctx, req, &cart); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return cart, fmt.Errorf("%w: %s", apperrors.ErrCartItemNotFound, productID)
		}
		return cart, err
	}
	return cart, nil
}
