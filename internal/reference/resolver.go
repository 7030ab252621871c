package reference

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/platform/resilience"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

const defaultWorkers = 4

// Collection is an entity collection the resolver can load and search.
// crud.Service satisfies it for every entity type.
type Collection interface {
	Descriptor() schema.Descriptor
	LoadAll(ctx context.Context) error
	Options(label string) []crud.Option
	Lookup(id int64) (any, bool)
}

type Config struct {
	Workers int
	Logger  *logging.Logger
}

// Resolver fetches referenced collections ahead of form rendering and maps
// selected identifiers back to records.
type Resolver struct {
	mu          sync.RWMutex
	collections map[string]Collection
	workers     int
	flight      resilience.SingleFlight[struct{}]
	logger      *logging.Logger
}

func NewResolver(cfg Config, collections ...Collection) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	r := &Resolver{
		collections: make(map[string]Collection, len(collections)),
		workers:     workers,
		logger:      logger,
	}
	for _, collection := range collections {
		r.Register(collection)
	}
	return r
}

func (r *Resolver) Register(collection Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection.Descriptor().Name] = collection
}

func (r *Resolver) collection(name string) (Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	collection, ok := r.collections[name]
	return collection, ok
}

// Prepare loads the full collection of every relation target of desc and
// returns the dropdown options keyed by relation name. A failed load is
// logged and leaves that dropdown with whatever was loaded before.
func (r *Resolver) Prepare(ctx context.Context, desc schema.Descriptor) (map[string][]crud.Option, error) {
	ctx, span := startSpan(ctx, "reference.Resolver.Prepare")
	defer span.End()

	targets := make([]Collection, 0, len(desc.Relations))
	seen := make(map[string]struct{}, len(desc.Relations))
	for _, rel := range desc.Relations {
		collection, ok := r.collection(rel.Target)
		if !ok {
			return nil, fmt.Errorf("no collection registered for %s.%s target %s", desc.Name, rel.Name, rel.Target)
		}
		if _, dup := seen[rel.Target]; dup {
			continue
		}
		seen[rel.Target] = struct{}{}
		targets = append(targets, collection)
	}

	if len(targets) > 0 {
		if err := r.loadAll(ctx, targets); err != nil {
			return nil, err
		}
	}

	return r.Options(desc), nil
}

func (r *Resolver) loadAll(ctx context.Context, targets []Collection) error {
	pool, err := ants.NewPool(min(r.workers, len(targets)))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			name := target.Descriptor().Name
			_, err, shared := r.flight.Do(name, func() (struct{}, error) {
				return struct{}{}, target.LoadAll(ctx)
			})
			if err != nil {
				r.logger.WarnContext(ctx, "load reference collection failed", "entity", name, "shared", shared, "error", err)
			}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit reference load to worker pool: %w", err)
		}
	}

	workers.Wait()
	return nil
}

// Options returns the currently loaded dropdown options without fetching.
func (r *Resolver) Options(desc schema.Descriptor) map[string][]crud.Option {
	out := make(map[string][]crud.Option, len(desc.Relations))
	for _, rel := range desc.Relations {
		collection, ok := r.collection(rel.Target)
		if !ok {
			out[rel.Name] = []crud.Option{}
			continue
		}
		out[rel.Name] = collection.Options(rel.Label)
	}
	return out
}

// Find returns the first loaded record of target with the given id.
func (r *Resolver) Find(target string, id int64) (any, bool) {
	collection, ok := r.collection(target)
	if !ok {
		return nil, false
	}
	return collection.Lookup(id)
}

// Stubs maps selected identifiers to {id} records in selection order. The
// backend resolves them to the full records.
func (r *Resolver) Stubs(ids []int64) []entity.Ref {
	return entity.Stubs(ids)
}
