package routing

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/access"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Builder memoizes the route table of one namespace. The table is rebuilt
// lazily after SetRebuildNeeded; readers keep using the previous table until
// the new one is complete.
type Builder struct {
	catalog   resource.Catalog
	resolver  *access.VisibilityResolver
	store     policy.Store
	namespace access.Namespace
	prefix    string
	basePath  string

	current       atomic.Pointer[Table]
	rebuildNeeded atomic.Bool
	mu            sync.Mutex
}

// NewBuilder returns a builder for the namespace. Route names start with
// prefix. The standard namespace ignores the gateway settings and routes every
// public catalog type.
func NewBuilder(catalog resource.Catalog, store policy.Store, ns access.Namespace, prefix, basePath string) *Builder {
	b := &Builder{
		catalog:   catalog,
		resolver:  access.NewVisibilityResolver(catalog),
		store:     store,
		namespace: ns,
		prefix:    prefix,
		basePath:  basePath,
	}
	b.rebuildNeeded.Store(true)
	return b
}

// SetRebuildNeeded marks the current table as stale.
func (b *Builder) SetRebuildNeeded() {
	b.rebuildNeeded.Store(true)
}

// RebuildNeeded reports whether the next Table call rebuilds.
func (b *Builder) RebuildNeeded() bool {
	return b.rebuildNeeded.Load()
}

// Table returns the current table, rebuilding it first when needed.
func (b *Builder) Table(ctx context.Context) (*Table, error) {
	if err := b.RebuildIfNeeded(ctx); err != nil {
		if t := b.current.Load(); t != nil {
			log.Printf("⚠️ Route rebuild failed, serving previous table: %v", err)
			return t, nil
		}
		return nil, err
	}
	return b.current.Load(), nil
}

// RebuildIfNeeded rebuilds the table when it is stale. Concurrent callers
// wait for a single rebuild.
func (b *Builder) RebuildIfNeeded(ctx context.Context) error {
	if !b.rebuildNeeded.Load() && b.current.Load() != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.rebuildNeeded.Load() && b.current.Load() != nil {
		return nil
	}
	return b.rebuildLocked(ctx)
}

// Rebuild rebuilds the table unconditionally.
func (b *Builder) Rebuild(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rebuildLocked(ctx)
}

func (b *Builder) rebuildLocked(ctx context.Context) error {
	// Clear the flag first so a signal raised during the build is not lost.
	b.rebuildNeeded.Store(false)

	cfg := policy.NewConfig()
	if b.namespace == access.NamespaceGateway {
		loaded, err := b.store.Load(ctx)
		if err != nil {
			b.rebuildNeeded.Store(true)
			return fmt.Errorf("GW-ROUTES-REBUILD: %w", err)
		}
		cfg = loaded
	}

	var types []resource.Type
	for _, key := range b.resolver.ResolveRoutable(cfg) {
		rt, err := b.catalog.Get(key)
		if err != nil {
			b.rebuildNeeded.Store(true)
			return fmt.Errorf("GW-ROUTES-REBUILD: %w", err)
		}
		types = append(types, rt)
	}
	table := newTable(b.prefix, b.basePath, types)
	b.current.Store(table)

	common.RecordRouteRebuild(b.namespace.String())
	log.Printf("🗺️ Rebuilt %s routes: %d resource types, %d routes", b.namespace, len(types), table.Len())
	return nil
}

// Builders fans rebuild signals out to the tables of several namespaces.
type Builders []*Builder

// SetRebuildNeeded marks every table as stale.
func (bs Builders) SetRebuildNeeded() {
	for _, b := range bs {
		b.SetRebuildNeeded()
	}
}

// Rebuild rebuilds every table and returns the first error.
func (bs Builders) Rebuild(ctx context.Context) error {
	for _, b := range bs {
		if err := b.Rebuild(ctx); err != nil {
			return err
		}
	}
	return nil
}
