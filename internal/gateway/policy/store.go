package policy

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Store loads and saves the settings document. Save replaces the whole
// document; concurrent saves are last-write-wins.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

// MemoryStore keeps the settings in process memory.
type MemoryStore struct {
	current atomic.Pointer[Config]
}

// NewMemoryStore returns a store holding a copy of initial, or an empty
// document when initial is nil.
func NewMemoryStore(initial *Config) *MemoryStore {
	s := &MemoryStore{}
	s.current.Store(initial.Clone().Normalize())
	return s
}

func (s *MemoryStore) Load(_ context.Context) (*Config, error) {
	return s.current.Load(), nil
}

func (s *MemoryStore) Save(_ context.Context, cfg *Config) error {
	s.current.Store(cfg.Clone().Normalize())
	return nil
}

// CachedStore serves loads from the last known snapshot of a slower backend.
// A successful Save replaces the snapshot, so readers never observe a
// document older than the last save made through this store.
type CachedStore struct {
	backend Store

	mu       sync.Mutex
	snapshot atomic.Pointer[Config]
	onSave   []func()
}

// NewCachedStore wraps backend.
func NewCachedStore(backend Store) *CachedStore {
	return &CachedStore{backend: backend}
}

// OnSave registers a hook run after every successful save.
func (s *CachedStore) OnSave(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = append(s.onSave, hook)
}

func (s *CachedStore) Load(ctx context.Context) (*Config, error) {
	if cfg := s.snapshot.Load(); cfg != nil {
		return cfg, nil
	}
	cfg, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot.CompareAndSwap(nil, cfg)
	return s.snapshot.Load(), nil
}

func (s *CachedStore) Save(ctx context.Context, cfg *Config) error {
	saved := cfg.Clone().Normalize()
	if err := s.backend.Save(ctx, saved); err != nil {
		return err
	}
	s.snapshot.Store(saved)

	s.mu.Lock()
	hooks := append([]func(){}, s.onSave...)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// Invalidate drops the snapshot so the next Load reads the backend.
func (s *CachedStore) Invalidate() {
	s.snapshot.Store(nil)
}

// LoadSeed reads a YAML settings document.
func LoadSeed(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-SEED: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("GW-POLICY-SEED: %w", err)
	}
	return cfg.Normalize(), nil
}

// SeedIfEmpty saves seed when the store holds an empty document.
func SeedIfEmpty(ctx context.Context, store Store, seed *Config) error {
	current, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if !current.IsEmpty() {
		log.Println("📜 Gateway settings already present, seed skipped")
		return nil
	}
	if err := store.Save(ctx, seed); err != nil {
		return err
	}
	log.Println("✅ Gateway settings seeded")
	return nil
}

// IsEmpty reports whether the document carries no settings at all.
func (c *Config) IsEmpty() bool {
	return c == nil || (len(c.DisabledResourceTypes) == 0 &&
		len(c.RoleResourceGrants) == 0 &&
		len(c.DisabledLocales) == 0 &&
		len(c.ResourceDisabledLocales) == 0 &&
		len(c.ResourceDisabledFields) == 0)
}
