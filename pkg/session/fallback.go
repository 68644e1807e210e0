package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// FallbackKV writes through to a primary KV until the primary fails once.
// From then on it serves from memory for the rest of the process, so a
// session survives a read-only home directory or a full disk without ever
// being persisted.
type FallbackKV struct {
	primary KV
	memory  *MemoryKV
	log     zerolog.Logger

	mu       sync.Mutex
	degraded bool
}

// NewFallbackKV wraps primary with an in-memory fallback.
func NewFallbackKV(primary KV, log zerolog.Logger) *FallbackKV {
	return &FallbackKV{primary: primary, memory: NewMemoryKV(), log: log}
}

// Degraded reports whether the primary has failed and values now live in memory only.
func (f *FallbackKV) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

func (f *FallbackKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.degraded {
		v, ok, err := f.primary.Get(key)
		if err == nil {
			return v, ok, nil
		}
		f.degrade("get", err)
	}
	return f.memory.Get(key)
}

func (f *FallbackKV) Set(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.degraded {
		err := f.primary.Set(values)
		if err == nil {
			return nil
		}
		f.degrade("set", err)
	}
	return f.memory.Set(values)
}

func (f *FallbackKV) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.degraded {
		if err := f.primary.Delete(keys...); err != nil {
			f.degrade("delete", err)
		}
	}
	return f.memory.Delete(keys...)
}

// degrade must be called with mu held.
func (f *FallbackKV) degrade(op string, err error) {
	f.degraded = true
	f.log.Warn().Err(err).Str("op", op).Msg("session storage unavailable, continuing in memory")
}
