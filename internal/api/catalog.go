package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/models"
	"github.com/pickmart/pickmart-go/internal/transport"
)

type CatalogService struct {
	client *Client
}

type ListProductsOpts struct {
	// Free-text search query
	Search string

	// Limit the number of returned products, 0 means server default
	Limit int
}

func (s *CatalogService) ListProducts(ctx context.Context, opts ListProductsOpts) ([]models.Product, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("q", opts.Search)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	req := &transport.Request{Method: http.MethodGet, Path: "/api/products", Query: query}

	var products []models.Product
	if err := s.client.doJSON(ctx, req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	req := &transport.Request{Method: http.MethodGet, Path: "/api/products/" + id.String()}

	var product models.Product
	if err := s.client.doJSON(ctx, req, &product); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return product, fmt.Errorf("%w: %s", apperrors.ErrProductNotFound, id)
		}
		return product, err
	}
	return product, nil
}
