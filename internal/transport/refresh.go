package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/models"
)

// outcome of one refresh cycle, delivered to every queued waiter
type outcome struct {
	access string
	err    error
}

// coordinator owns the refresh state machine: idle or refreshing, plus the
// queue of requests that hit an expired token while a refresh was already in
// flight. State is per instance, one coordinator per transport.
//
// Invariant: the idle->refreshing check-and-set and the queue creation happen
// under a single mutex acquisition with no blocking call inside, so two
// concurrent eligible requests can never both start a refresh.
type coordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan outcome

	store    credentials.Store
	refresh  func(ctx context.Context, refreshToken string) (models.TokenPair, error)
	notifier *notifier
	logger   logger.Logger
}

// awaitRefresh returns the access token produced by a refresh cycle. The
// first caller in an idle state runs the cycle itself; callers arriving while
// one is in flight queue up and share its outcome. Queued waiters are not
// cancellable: the refresh always settles, and they settle with it.
func (c *coordinator) awaitRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan outcome, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		o := <-ch
		return o.access, o.err
	}
	c.refreshing = true
	c.waiters = nil
	c.mu.Unlock()

	access, err := c.runRefresh(ctx)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	o := outcome{access: access, err: err}
	for _, ch := range waiters {
		ch <- o
	}

	return access, err
}

// runRefresh performs exactly one refresh cycle: exchange the stored refresh
// token for a new pair and persist it, or wipe the credential set and signal
// the session end. A cycle started with nothing stored fails plainly: there
// is no session to end.
func (c *coordinator) runRefresh(ctx context.Context) (string, error) {
	// The cycle must settle even if the triggering request gets cancelled,
	// queued waiters have no other way to resolve.
	ctx = context.WithoutCancel(ctx)

	pair, err := c.exchange(ctx)
	if err != nil {
		// A refresh without a stored credential ends nothing: there is no
		// session to clear and nobody to notify.
		if errors.Is(err, apperrors.ErrNoCredential) {
			c.logger.Debug("Token refresh requested with no stored credential", "error", err)
			return "", err
		}

		c.logger.Warn("Token refresh failed, ending session", "error", err)

		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error("Failed to clear credentials after refresh failure", "error", clearErr)
		}

		err = fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, err)
		c.notifier.notify(err)
		return "", err
	}

	c.logger.Debug("Token refresh succeeded")
	return pair.AccessToken, nil
}

func (c *coordinator) exchange(ctx context.Context) (models.TokenPair, error) {
	cred, err := c.store.Load(ctx)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("no refresh token available: %w", err)
	}

	pair, err := c.refresh(ctx, cred.RefreshToken)
	if err != nil {
		return pair, err
	}

	// Keep the cached profile, swap the rotated pair in one write
	cred.AccessToken = pair.AccessToken
	cred.RefreshToken = pair.RefreshToken
	if err := c.store.Save(ctx, cred); err != nil {
		return pair, fmt.Errorf("can't persist refreshed credential: %w", err)
	}

	return pair, nil
}
