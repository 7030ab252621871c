package crud

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/riskibarqy/tournament-admin/internal/store"
)

// Option is one selectable record in a relation dropdown.
type Option struct {
	ID    int64
	Label string
}

type ServiceConfig struct {
	// DefaultQuery is used for the list refresh that follows every mutation.
	DefaultQuery ListQuery
	Validator    *validator.Validate
	Logger       *logging.Logger
}

// Service joins a gateway and a store: every call records its lifecycle in
// the store, and successful mutations refresh the collection.
type Service[T entity.Record] struct {
	desc         schema.Descriptor
	gateway      Gateway[T]
	store        *store.Store[T]
	validate     *validator.Validate
	defaultQuery ListQuery
	logger       *logging.Logger
}

func NewService[T entity.Record](desc schema.Descriptor, gateway Gateway[T], st *store.Store[T], cfg ServiceConfig) *Service[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	v := cfg.Validator
	if v == nil {
		v = NewValidator()
	}
	if st == nil {
		st = store.New[T](desc.Name)
	}

	return &Service[T]{
		desc:         desc,
		gateway:      gateway,
		store:        st,
		validate:     v,
		defaultQuery: cfg.DefaultQuery,
		logger:       logger.With("entity", desc.Name),
	}
}

func (s *Service[T]) Descriptor() schema.Descriptor {
	return s.desc
}

func (s *Service[T]) Store() *store.Store[T] {
	return s.store
}

func (s *Service[T]) DefaultQuery() ListQuery {
	return s.defaultQuery
}

func (s *Service[T]) List(ctx context.Context, query ListQuery) (Page[T], error) {
	ctx, span := startSpan(ctx, "crud.Service.List")
	defer span.End()

	s.store.BeginFetch()
	page, err := s.gateway.List(ctx, query)
	if err != nil {
		s.store.Fail(err)
		return Page[T]{}, err
	}
	s.store.CompleteList(page.Items, page.Total)
	return page, nil
}

// LoadAll fetches the whole collection without sorting or pagination.
func (s *Service[T]) LoadAll(ctx context.Context) error {
	ctx, span := startSpan(ctx, "crud.Service.LoadAll")
	defer span.End()

	_, err := s.List(ctx, ListQuery{Eagerload: s.desc.Eagerload})
	return err
}

func (s *Service[T]) Get(ctx context.Context, id int64) (T, error) {
	ctx, span := startSpan(ctx, "crud.Service.Get")
	defer span.End()

	s.store.BeginFetch()
	record, err := s.gateway.Get(ctx, id)
	if err != nil {
		s.store.Fail(err)
		return record, err
	}
	s.store.CompleteFocus(record)
	return record, nil
}

func (s *Service[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, span := startSpan(ctx, "crud.Service.Create")
	defer span.End()

	if err := checkRecord(ctx, s.validate, s.desc, record); err != nil {
		return record, err
	}
	return s.mutate(ctx, "create", func(ctx context.Context) (T, error) {
		return s.gateway.Create(ctx, record)
	})
}

func (s *Service[T]) Update(ctx context.Context, record T) (T, error) {
	ctx, span := startSpan(ctx, "crud.Service.Update")
	defer span.End()

	if record.GetID() <= 0 {
		return record, missingID(s.desc)
	}
	if err := checkRecord(ctx, s.validate, s.desc, record); err != nil {
		return record, err
	}
	return s.mutate(ctx, "update", func(ctx context.Context) (T, error) {
		return s.gateway.Update(ctx, record)
	})
}

// PartialUpdate sends only the fields set on record plus an explicit null for
// each cleared field. Field constraints are left to the backend since absent
// fields are not part of the change, but required fields cannot be cleared.
func (s *Service[T]) PartialUpdate(ctx context.Context, record T, cleared ...string) (T, error) {
	ctx, span := startSpan(ctx, "crud.Service.PartialUpdate")
	defer span.End()

	if record.GetID() <= 0 {
		return record, missingID(s.desc)
	}
	if err := checkCleared(s.desc, cleared); err != nil {
		return record, err
	}
	return s.mutate(ctx, "partial update", func(ctx context.Context) (T, error) {
		return s.gateway.PartialUpdate(ctx, record, cleared)
	})
}

func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	ctx, span := startSpan(ctx, "crud.Service.Delete")
	defer span.End()

	if id <= 0 {
		return missingID(s.desc)
	}

	s.store.BeginMutate()
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.store.Fail(err)
		return err
	}

	s.store.BeginFetch()
	s.store.CompleteDelete()
	s.refresh(ctx, "delete")
	return nil
}

// mutate runs the write, starts the list refresh before the result lands in
// the store and finishes the refresh afterwards.
func (s *Service[T]) mutate(ctx context.Context, action string, call func(context.Context) (T, error)) (T, error) {
	s.store.BeginMutate()
	saved, err := call(ctx)
	if err != nil {
		s.store.Fail(err)
		return saved, err
	}

	s.store.BeginFetch()
	s.store.CompleteMutate(saved)
	s.refresh(ctx, action)
	return saved, nil
}

func (s *Service[T]) refresh(ctx context.Context, action string) {
	page, err := s.gateway.List(ctx, s.defaultQuery)
	if err != nil {
		s.logger.WarnContext(ctx, "list refresh after mutation failed", "action", action, "error", err)
		s.store.Fail(err)
		return
	}
	s.store.CompleteList(page.Items, page.Total)
}

// Find returns the first loaded record with the given id.
func (s *Service[T]) Find(id int64) (T, bool) {
	for _, record := range s.store.Snapshot().Entities {
		if record.GetID() == id {
			return record, true
		}
	}
	var zero T
	return zero, false
}

// Lookup is Find without the static type, for callers working across entities.
func (s *Service[T]) Lookup(id int64) (any, bool) {
	return s.Find(id)
}

// Options lists the loaded records labelled by the given field.
func (s *Service[T]) Options(label string) []Option {
	records := s.store.Snapshot().Entities
	out := make([]Option, 0, len(records))
	for _, record := range records {
		text := strconv.FormatInt(record.GetID(), 10)
		if label != "" && label != "id" {
			text = labelOf(record, label)
		}
		out = append(out, Option{ID: record.GetID(), Label: text})
	}
	return out
}
