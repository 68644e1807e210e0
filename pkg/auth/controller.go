// Package auth owns the client-side session lifecycle: login, logout, and the
// timer that force-expires a session after session.Duration.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/naveenspark/yorch/pkg/domain"
	"github.com/naveenspark/yorch/pkg/session"
)

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Status is the controller's lifecycle state.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Reason says why an Event was published.
type Reason int

const (
	ReasonInitialized Reason = iota
	ReasonLogin
	ReasonLogout
	ReasonExpired      // local timer or lazy expiry check
	ReasonUnauthorized // backend answered 401
)

func (r Reason) String() string {
	switch r {
	case ReasonInitialized:
		return "initialized"
	case ReasonLogin:
		return "login"
	case ReasonLogout:
		return "logout"
	case ReasonExpired:
		return "expired"
	case ReasonUnauthorized:
		return "unauthorized"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Forced reports whether the session ended without the user asking.
func (r Reason) Forced() bool {
	return r == ReasonExpired || r == ReasonUnauthorized
}

// Event is published on every state transition.
type Event struct {
	State  domain.AuthState
	Reason Reason
}

// Controller is the single owner of the persisted session.
type Controller struct {
	store *session.Store
	authn Authenticator
	clock clock.Clock
	log   zerolog.Logger

	logins singleflight.Group

	mu     sync.Mutex
	status Status
	sess   domain.Session
	timer  *clock.Timer
	gen    uint64 // bumped whenever the timer is stopped or rearmed
	closed bool
	events chan Event
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// NewController returns a controller in StatusLoading. Call Initialize before use.
func NewController(store *session.Store, authn Authenticator, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		authn:  authn,
		clock:  clock.New(),
		log:    zerolog.Nop(),
		status: StatusLoading,
		events: make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the persisted session. It only has an effect the first time.
func (c *Controller) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.status != StatusLoading {
		return
	}

	now := c.clock.Now()
	sess, ok, err := c.store.Read()
	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("read session")
		c.status = StatusUnauthenticated
	case !ok:
		c.status = StatusUnauthenticated
		c.clearStoreLocked()
	case session.Remaining(sess, now) <= 0:
		c.log.Info().Time("issued_at", sess.IssuedAt).Msg("stored session expired")
		c.status = StatusUnauthenticated
		c.clearStoreLocked()
	default:
		c.status = StatusAuthenticated
		c.sess = sess
		remaining := session.Remaining(sess, now)
		c.armLocked(remaining)
		c.log.Info().Dur("remaining", remaining).Msg("session restored")
	}
	c.publishLocked(ReasonInitialized)
}

// State returns the current auth state. An authenticated session whose time
// is up is expired here, even if the timer has not fired yet.
func (c *Controller) State() domain.AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkExpiryLocked()
	return c.stateLocked()
}

// Status returns the lifecycle status, applying the same expiry check as State.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkExpiryLocked()
	return c.status
}

// Token returns the bearer token while authenticated.
func (c *Controller) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkExpiryLocked()
	if c.status != StatusAuthenticated {
		return "", false
	}
	return c.sess.Token, true
}

// Remaining returns the time left on the current session, or 0.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkExpiryLocked()
	if c.status != StatusAuthenticated {
		return 0
	}
	return session.Remaining(c.sess, c.clock.Now())
}

// Username returns the token's subject claim, or "" when unknown.
func (c *Controller) Username() string {
	tok, ok := c.Token()
	if !ok {
		return ""
	}
	return Subject(tok)
}

// Events delivers state transitions. Only the latest undelivered event is
// kept; receivers should treat an Event as "state changed, re-read". The
// channel is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Login authenticates against the backend and starts a fresh session.
// Concurrent calls with the same credentials share one network round trip;
// a caller whose ctx ends first returns ctx.Err() without waiting for it.
// Rejections are returned as *AuthError and leave the state untouched.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	ch := c.logins.DoChan(loginKey(username, password), func() (any, error) {
		return nil, c.login(ctx, username, password)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loginKey identifies a credential pair without keeping the password itself.
func loginKey(username, password string) string {
	sum := sha256.Sum256([]byte(password))
	return username + "\x00" + hex.EncodeToString(sum[:])
}

func (c *Controller) login(ctx context.Context, username, password string) error {
	token, err := c.authn.Login(ctx, username, password)
	if err != nil {
		var ae *AuthError
		if !errors.As(err, &ae) {
			ae = &AuthError{Message: DefaultLoginMessage, Err: err}
		}
		c.log.Info().Str("username", username).Int("status", ae.StatusCode).Str("reason", ae.Message).Msg("login rejected")
		return ae
	}
	if token == "" {
		return &AuthError{Message: DefaultLoginMessage}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	now := c.clock.Now()
	if err := c.store.Write(token, now); err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}
	c.status = StatusAuthenticated
	c.sess = domain.Session{Token: token, IssuedAt: now}
	c.armLocked(session.Duration)
	c.log.Info().Str("username", username).Msg("logged in")
	c.publishLocked(ReasonLogin)
	return nil
}

// Logout ends the session. It always succeeds.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(ReasonLogout)
	c.log.Info().Msg("logged out")
}

// Expire ends the session because the backend rejected the token. It is
// safe to call from any goroutine and any number of times.
func (c *Controller) Expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusAuthenticated {
		c.log.Warn().Msg("backend rejected session token")
	}
	c.endLocked(ReasonUnauthorized)
}

// Close cancels the timer and closes Events. Later transitions still update
// state but publish nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.closed = true
	close(c.events)
}

func (c *Controller) stateLocked() domain.AuthState {
	return domain.AuthState{
		IsAuthenticated: c.status == StatusAuthenticated,
		IsLoading:       c.status == StatusLoading,
	}
}

func (c *Controller) checkExpiryLocked() {
	if c.status != StatusAuthenticated {
		return
	}
	if session.Remaining(c.sess, c.clock.Now()) > 0 {
		return
	}
	c.log.Info().Msg("session expired")
	c.endLocked(ReasonExpired)
}

func (c *Controller) endLocked(reason Reason) {
	c.stopTimerLocked()
	c.clearStoreLocked()
	c.status = StatusUnauthenticated
	c.sess = domain.Session{}
	c.publishLocked(reason)
}

func (c *Controller) clearStoreLocked() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("clear session")
	}
}

// armLocked replaces any pending timer with one firing after d.
func (c *Controller) armLocked(d time.Duration) {
	c.stopTimerLocked()
	gen := c.gen
	c.timer = c.clock.AfterFunc(d, func() { c.onTimer(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) onTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.status != StatusAuthenticated {
		return
	}
	c.log.Info().Msg("session timer fired")
	c.endLocked(ReasonExpired)
}

func (c *Controller) publishLocked(reason Reason) {
	if c.closed {
		return
	}
	select {
	case <-c.events:
	default:
	}
	c.events <- Event{State: c.stateLocked(), Reason: reason}
}
