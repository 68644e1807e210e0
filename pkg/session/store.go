// Package session persists the bearer token and its issuance time.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenspark/yorch/pkg/domain"
)

// Duration is how long a session stays valid after login. It is fixed.
const Duration = 6 * time.Hour

// Storage keys.
const (
	TokenKey     = "yorch_token"
	LoginTimeKey = "yorch_login_time"
)

// ErrStorageUnavailable wraps any failure of the underlying KV.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Store reads and writes the session through a KV.
type Store struct {
	kv  KV
	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns a Store over kv.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the stored session. ok is false when no token is stored.
// A token whose login time is missing or unparseable comes back with a zero
// IssuedAt, which is always expired.
func (s *Store) Read() (sess domain.Session, ok bool, err error) {
	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("session.Read: %w: %w", ErrStorageUnavailable, err)
	}
	if !ok || token == "" {
		return domain.Session{}, false, nil
	}
	sess.Token = token

	raw, _, err := s.kv.Get(LoginTimeKey)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("session.Read: %w: %w", ErrStorageUnavailable, err)
	}
	if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		sess.IssuedAt = time.UnixMilli(ms)
	} else {
		s.log.Debug().Str("login_time", raw).Msg("unparseable login time, treating session as expired")
	}
	return sess, true, nil
}

// Write stores token with now as its issuance time, replacing any prior session.
func (s *Store) Write(token string, now time.Time) error {
	err := s.kv.Set(map[string]string{
		TokenKey:     token,
		LoginTimeKey: strconv.FormatInt(now.UnixMilli(), 10),
	})
	if err != nil {
		return fmt.Errorf("session.Write: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Clear removes both keys.
func (s *Store) Clear() error {
	if err := s.kv.Delete(TokenKey, LoginTimeKey); err != nil {
		return fmt.Errorf("session.Clear: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Remaining returns how long the stored session has left at now, or 0 if
// there is none. A login time in the future is clamped to a full Duration.
func (s *Store) Remaining(now time.Time) time.Duration {
	sess, ok, err := s.Read()
	if err != nil || !ok {
		return 0
	}
	return Remaining(sess, now)
}

// Valid reports whether a stored session has time left at now.
func (s *Store) Valid(now time.Time) bool {
	return s.Remaining(now) > 0
}

// Remaining returns max(0, Duration - (now - sess.IssuedAt)), capped at Duration.
func Remaining(sess domain.Session, now time.Time) time.Duration {
	if sess.IssuedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(sess.IssuedAt)
	if elapsed < 0 {
		return Duration
	}
	if elapsed >= Duration {
		return 0
	}
	return Duration - elapsed
}
