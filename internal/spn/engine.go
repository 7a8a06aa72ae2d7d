package spn

import (
	"sync"
	"sync/atomic"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// Engine owns the current Config of one learner. Setup and Commit replace it
// as a whole; a failed Setup or Commit leaves the previous Config in place.
type Engine struct {
	mu  sync.RWMutex
	cfg *Config

	// change serialises Restore and Commit.
	change   sync.Mutex
	restored atomic.Bool
}

// Setup validates and installs a new Config.
func (e *Engine) Setup(rounds int, sboxHex string, key bitstr.BitString) (*Config, error) {
	cfg, err := NewConfig(rounds, sboxHex, key)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Commit runs persist and, if it succeeds, installs cfg. persist may be nil.
// Commits on one engine never interleave, so the last persisted Config is
// the one left installed.
func (e *Engine) Commit(cfg *Config, persist func(*Config) error) error {
	e.change.Lock()
	defer e.change.Unlock()
	if persist != nil {
		if err := persist(cfg); err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	e.restored.Store(true)
	return nil
}

// Restore calls load until it succeeds once. Callers arriving while a load
// is running wait for it. A loaded Config is installed only if nothing was
// committed first; load returns a nil Config when there is nothing saved.
func (e *Engine) Restore(load func() (*Config, error)) error {
	if e.restored.Load() {
		return nil
	}
	e.change.Lock()
	defer e.change.Unlock()
	if e.restored.Load() {
		return nil
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if cfg != nil {
		e.mu.Lock()
		if e.cfg == nil {
			e.cfg = cfg
		}
		e.mu.Unlock()
	}
	e.restored.Store(true)
	return nil
}

// Config returns the installed Config or ErrUnconfigured.
func (e *Engine) Config() (*Config, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cfg == nil {
		return nil, cryptoerr.ErrUnconfigured
	}
	return e.cfg, nil
}

func (e *Engine) Encrypt(plaintext bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	cfg, err := e.Config()
	if err != nil {
		return nil, nil, err
	}
	return cfg.Encrypt(plaintext)
}

func (e *Engine) Decrypt(ciphertext bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	cfg, err := e.Config()
	if err != nil {
		return nil, nil, err
	}
	return cfg.Decrypt(ciphertext)
}

// Registry keeps one Engine per learner id.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*Engine)}
}

// Engine returns the learner's engine, creating an unconfigured one on first
// use.
func (r *Registry) Engine(learnerID string) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[learnerID]
	if !ok {
		e = &Engine{}
		r.engines[learnerID] = e
	}
	return e
}

// Forget drops the learner's engine. The next Engine call starts from an
// unconfigured, unrestored engine.
func (r *Registry) Forget(learnerID string) {
	r.mu.Lock()
	delete(r.engines, learnerID)
	r.mu.Unlock()
}
