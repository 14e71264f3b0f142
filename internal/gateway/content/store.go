package content

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Store reads entities. Missing entities are reported with a NotFound error.
type Store interface {
	// Load returns the revision selected by version. The zero Version selects
	// the revision flagged as default; an entity without one is NotFound.
	Load(ctx context.Context, key resource.Key, id string, version Version) (*Entity, error)
	// List returns the default revisions of every entity of the type, ordered by id.
	List(ctx context.Context, key resource.Key) ([]*Entity, error)
	// LoadMany returns the default revisions of the referenced entities in
	// input order. References that cannot be resolved are skipped.
	LoadMany(ctx context.Context, ids []Identifier) ([]*Entity, error)
}

// MemoryStore holds every revision in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	revisions map[resource.Key]map[string][]*Entity
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revisions: make(map[resource.Key]map[string][]*Entity)}
}

// Put stores one revision. An empty id gets a random UUID, a zero revision id
// gets the next free number. When the revision is marked default, previously
// stored default revisions of the entity are demoted.
func (s *MemoryStore) Put(e Entity) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	byID, ok := s.revisions[e.Type]
	if !ok {
		byID = make(map[string][]*Entity)
		s.revisions[e.Type] = byID
	}
	revs := byID[e.ID]
	if e.RevisionID == 0 {
		e.RevisionID = int64(len(revs) + 1)
		for _, r := range revs {
			if r.RevisionID >= e.RevisionID {
				e.RevisionID = r.RevisionID + 1
			}
		}
	}
	stored := e
	if stored.DefaultRevision {
		for i, r := range revs {
			if r.DefaultRevision {
				demoted := *r
				demoted.DefaultRevision = false
				revs[i] = &demoted
			}
		}
	}
	revs = append(revs, &stored)
	slices.SortFunc(revs, func(a, b *Entity) int { return int(a.RevisionID - b.RevisionID) })
	for i, r := range revs {
		latest := i == len(revs)-1
		if r.LatestRevision != latest {
			cp := *r
			cp.LatestRevision = latest
			revs[i] = &cp
		}
	}
	if !slices.ContainsFunc(revs, func(r *Entity) bool { return r.DefaultRevision }) {
		cp := *revs[len(revs)-1]
		cp.DefaultRevision = true
		revs[len(revs)-1] = &cp
	}
	byID[e.ID] = revs
	for _, r := range revs {
		if r.RevisionID == stored.RevisionID {
			return r
		}
	}
	return &stored
}

func (s *MemoryStore) Load(_ context.Context, key resource.Key, id string, version Version) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[key][id]
	if len(revs) == 0 {
		return nil, common.NewErrNotFound(fmt.Sprintf("%s %s", key, id))
	}
	switch version.Kind {
	case VersionByID:
		for _, r := range revs {
			if r.RevisionID == version.RevisionID {
				return r, nil
			}
		}
		return nil, common.NewErrNotFound(fmt.Sprintf("%s %s revision %d", key, id, version.RevisionID))
	case VersionWorkingCopy:
		return revs[len(revs)-1], nil
	default:
		for _, r := range revs {
			if r.DefaultRevision {
				return r, nil
			}
		}
		return nil, common.NewErrNotFound(fmt.Sprintf("%s %s default revision", key, id))
	}
}

func (s *MemoryStore) List(ctx context.Context, key resource.Key) ([]*Entity, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.revisions[key]))
	for id := range s.revisions[key] {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.Load(ctx, key, id, Version{})
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryStore) LoadMany(ctx context.Context, ids []Identifier) ([]*Entity, error) {
	out := make([]*Entity, 0, len(ids))
	for _, ref := range ids {
		e, err := s.Load(ctx, ref.Type, ref.ID, Version{})
		if common.IsErrNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Seed is the YAML layout of a content fixture file.
type Seed struct {
	Entities []SeedEntity `yaml:"entities"`
}

// SeedEntity is one revision in a fixture file. DefaultRevision defaults to
// true.
type SeedEntity struct {
	ID              string                  `yaml:"id"`
	Type            string                  `yaml:"type"`
	Langcode        string                  `yaml:"langcode"`
	Label           string                  `yaml:"label"`
	Published       *bool                   `yaml:"published"`
	RevisionID      int64                   `yaml:"revisionId"`
	DefaultRevision *bool                   `yaml:"defaultRevision"`
	Attributes      map[string]any          `yaml:"attributes"`
	Relationships   map[string][]Identifier `yaml:"relationships"`
	Translations    map[string]Translation  `yaml:"translations"`
}

// LoadSeed reads a fixture file into the store.
func (s *MemoryStore) LoadSeed(path string) error {
	log.Printf("📁 Loading content seed from file: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("GW-CONTENT-SEED: %w", err)
	}
	return s.ApplySeed(data)
}

// ApplySeed stores every revision of a YAML fixture.
func (s *MemoryStore) ApplySeed(data []byte) error {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("GW-CONTENT-SEED: %w", err)
	}
	for i, se := range seed.Entities {
		key, err := resource.ParseKey(se.Type)
		if err != nil {
			return fmt.Errorf("GW-CONTENT-SEED: entity %d: %w", i, err)
		}
		if se.ID != "" {
			if _, err := uuid.Parse(se.ID); err != nil {
				return fmt.Errorf("GW-CONTENT-SEED: entity %d: id %q is not a UUID", i, se.ID)
			}
		}
		s.Put(Entity{
			ID:              strings.ToLower(se.ID),
			Type:            key,
			Langcode:        se.Langcode,
			Label:           se.Label,
			Published:       se.Published == nil || *se.Published,
			RevisionID:      se.RevisionID,
			DefaultRevision: se.DefaultRevision == nil || *se.DefaultRevision,
			Attributes:      se.Attributes,
			Relationships:   se.Relationships,
			Translations:    se.Translations,
		})
	}
	log.Printf("✅ Content seed applied: %d revisions", len(seed.Entities))
	return nil
}
