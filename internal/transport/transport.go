// Package transport implements the authenticated HTTP layer of the Pickmart
// client: bearer attachment, expiry detection and the single-flight token
// refresh protocol. Typed resource calls live one level up in internal/api.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/models"
)

// Auth endpoint paths. Requests to these are never routed through the
// refresh coordinator.
const (
	PathAuthRegister = "/api/auth/register"
	PathAuthLogin    = "/api/auth/login"
	PathAuthRefresh  = "/api/auth/refresh"
	PathAuthLogout   = "/api/auth/logout"

	authPathPrefix = "/api/auth/"
)

// Request is an explicit, replayable description of one API call. The body
// is a byte slice so the request can be transmitted again after a token
// refresh, and the retry mark lives here instead of being stamped onto a
// transient http.Request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	// retried is set once the request has been replayed after a refresh
	retried bool
}

type Config struct {
	// Base URL of the Pickmart API, e.g. https://api.pickmart.example
	BaseURL string

	// Store holding the current credential set
	Store credentials.Store

	// HTTPClient performs the actual calls. Timeouts are its concern.
	// Defaults to a plain http.Client.
	HTTPClient *http.Client

	// Defaults to the no-op logger
	Logger logger.Logger
}

// Transport issues API calls with the current access token attached and owns
// the refresh coordinator. Construct one per client; independent transports
// coordinate independently.
type Transport struct {
	baseURL string
	client  *http.Client
	store   credentials.Store
	logger  logger.Logger

	notifier *notifier
	coord    *coordinator
}

func New(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL must not be empty")
	}
	if cfg.Store == nil {
		return nil, errors.New("credential store must not be nil")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	t := &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		store:   cfg.Store,
		logger:  log,
	}
	t.notifier = &notifier{logger: log}
	t.coord = &coordinator{
		store:    cfg.Store,
		refresh:  t.refreshPair,
		notifier: t.notifier,
		logger:   log,
	}

	return t, nil
}

// OnSessionExpired registers the listener invoked once per failed refresh
// cycle. Last registration wins; intended to be set once at startup.
func (t *Transport) OnSessionExpired(l SessionListener) {
	t.notifier.register(l)
}

// Do sends the request with the current access token attached. On an
// authentication-expired failure it coordinates a token refresh and replays
// the request once with the new credential. Transport errors and every other
// failure pass through unchanged.
func (t *Transport) Do(ctx context.Context, req *Request) (*http.Response, error) {
	access := t.currentAccess(ctx)

	resp, err := t.send(ctx, req, access)
	if err != nil {
		return nil, err
	}

	if !eligibleForRefresh(req, resp.StatusCode, access != "") {
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	t.logger.Debug("Access token rejected, going through refresh", "method", req.Method, "path", req.Path)

	access, err = t.coord.awaitRefresh(ctx)
	if err != nil {
		return nil, err
	}

	req.retried = true
	return t.send(ctx, req, access)
}

// Refresh forces a refresh cycle, or joins the one already in flight, and
// returns the resulting access token.
func (t *Transport) Refresh(ctx context.Context) (string, error) {
	return t.coord.awaitRefresh(ctx)
}

// currentAccess reads the access token immediately before transmission.
// No stored credential means the request goes out unauthenticated.
func (t *Transport) currentAccess(ctx context.Context) string {
	cred, err := t.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoCredential) {
			t.logger.Warn("Failed to load credential, sending unauthenticated", "error", err)
		}
		return ""
	}
	return cred.AccessToken
}

func (t *Transport) send(ctx context.Context, req *Request, bearer string) (*http.Response, error) {
	u := t.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// refreshPair exchanges the refresh token for a new pair. It goes through the
// same sending machinery but targets an auth endpoint, so a failure here can
// never reenter the coordinator.
func (t *Transport) refreshPair(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return pair, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	resp, err := t.send(ctx, &Request{Method: http.MethodPost, Path: PathAuthRefresh, Body: body}, "")
	if err != nil {
		return pair, err
	}
	defer resp.Body.Close() // nolint:errcheck

	// Any non-success answer from the refresh endpoint is unrecoverable
	if resp.StatusCode != http.StatusOK {
		return pair, fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return pair, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return pair, errors.New("refresh endpoint returned incomplete token pair")
	}

	return pair, nil
}
