// Package api exposes the typed Pickmart resource calls: auth, catalog, cart
// and orders. Each call is a thin wrapper over the authenticated transport,
// which handles bearer attachment and token refresh transparently.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/transport"
)

type Config struct {
	// Base URL of the Pickmart API, e.g. https://api.pickmart.example
	BaseURL string

	// Store for the credential set. Defaults to an in-memory store.
	Store credentials.Store

	// HTTPClient used for all calls. Defaults to a plain http.Client.
	HTTPClient *http.Client

	// Defaults to the no-op logger
	Logger logger.Logger
}

// Client is the Pickmart API client. Construct one per credential set;
// independent clients refresh independently.
type Client struct {
	transport *transport.Transport
	store     credentials.Store
	logger    logger.Logger

	Auth    *AuthService
	Catalog *CatalogService
	Cart    *CartService
	Orders  *OrderService
}

func New(cfg Config) (*Client, error) {
	store := cfg.Store
	if store == nil {
		store = credentials.NewMemoryStore()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	tr, err := transport.New(transport.Config{
		BaseURL:    cfg.BaseURL,
		Store:      store,
		HTTPClient: cfg.HTTPClient,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("can't create transport: %w", err)
	}

	c := &Client{
		transport: tr,
		store:     store,
		logger:    log,
	}
	c.Auth = &AuthService{client: c}
	c.Catalog = &CatalogService{client: c}
	c.Cart = &CartService{client: c}
	c.Orders = &OrderService{client: c}

	return c, nil
}

// OnSessionExpired registers the hosting application's session-expiry hook.
// Called at most once per failed refresh cycle; last registration wins.
func (c *Client) OnSessionExpired(l transport.SessionListener) {
	c.transport.OnSessionExpired(l)
}

// doJSON sends the request and decodes a 2xx body into out (out may be nil).
// Non-2xx responses become *Error; unauthorized ones additionally match
// apperrors.ErrUnauthorized.
func (c *Client) doJSON(ctx context.Context, req *transport.Request, out any) error {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, apiErr)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// jsonRequest validates the payload and builds a replayable request from it.
// Validation failures surface before anything touches the wire.
func jsonRequest(method string, path string, payload any) (*transport.Request, error) {
	req := &transport.Request{Method: method, Path: path}
	if payload == nil {
		return req, nil
	}

	if err := validateRequest(payload); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req.Body = body

	return req, nil
}
