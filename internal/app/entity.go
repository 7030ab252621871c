package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/form"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

var recordAPI = jsoniter.Config{
	EscapeHTML:             false,
	UseNumber:              true,
	DisallowUnknownFields:  true,
	ValidateJsonRawMessage: true,
}.Froze()

// Listing is one page of records with the backend's total count.
type Listing struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// ConfirmFunc decides whether a loaded record may be deleted.
type ConfirmFunc func(record any) bool

// Entity is the type-erased surface of one entity's service and screens,
// for callers that pick the entity at runtime.
type Entity interface {
	Descriptor() schema.Descriptor
	List(ctx context.Context, query crud.ListQuery) (Listing, error)
	Get(ctx context.Context, id int64) (any, error)
	// Form returns the inputs for a new record when id is zero, otherwise
	// for editing the stored record.
	Form(ctx context.Context, id int64) ([]form.Input, error)
	// Save opens the create (id zero) or edit form, overlays fields on the
	// defaults and submits.
	Save(ctx context.Context, id int64, fields url.Values) (any, error)
	// Patch overlays a JSON object on the stored record and sends the result
	// as a partial update. A null member clears an optional field and is
	// rejected on a required one.
	Patch(ctx context.Context, id int64, raw []byte) (any, error)
	// Delete loads the record, asks confirm and deletes on approval. It
	// reports whether the record was deleted.
	Delete(ctx context.Context, id int64, confirm ConfirmFunc) (bool, error)
	ErrorMessage() string
}

type handle[T entity.Record] struct {
	state   *State
	service *crud.Service[T]
}

func (h *handle[T]) Descriptor() schema.Descriptor {
	return h.service.Descriptor()
}

func (h *handle[T]) List(ctx context.Context, query crud.ListQuery) (Listing, error) {
	sc := Screen[T](h.state, h.service)
	if err := sc.OpenList(ctx, query); err != nil {
		return Listing{}, err
	}
	snapshot := sc.State()
	return Listing{Items: snapshot.Entities, Total: snapshot.TotalItems}, nil
}

func (h *handle[T]) Get(ctx context.Context, id int64) (any, error) {
	sc := Screen[T](h.state, h.service)
	if err := sc.OpenDetail(ctx, id); err != nil {
		return nil, err
	}
	snapshot := sc.State()
	if snapshot.Entity == nil {
		return nil, fmt.Errorf("%w: %s %d", crud.ErrNotFound, h.Descriptor().Name, id)
	}
	return *snapshot.Entity, nil
}

func (h *handle[T]) Form(ctx context.Context, id int64) ([]form.Input, error) {
	sc := Screen[T](h.state, h.service)
	var err error
	if id > 0 {
		err = sc.OpenEdit(ctx, id)
	} else {
		err = sc.OpenCreate(ctx)
	}
	if err != nil {
		return nil, err
	}
	return sc.Inputs(), nil
}

func (h *handle[T]) Save(ctx context.Context, id int64, fields url.Values) (any, error) {
	sc := Screen[T](h.state, h.service)
	var err error
	if id > 0 {
		err = sc.OpenEdit(ctx, id)
	} else {
		err = sc.OpenCreate(ctx)
	}
	if err != nil {
		return nil, err
	}

	for name, values := range fields {
		if name == "id" {
			continue
		}
		sc.SetField(name, values...)
	}

	saved, err := sc.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (h *handle[T]) Patch(ctx context.Context, id int64, raw []byte) (any, error) {
	if id <= 0 {
		return nil, fmt.Errorf("patch %s: id must be > 0", h.Descriptor().Name)
	}

	var changes map[string]any
	if err := recordAPI.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("decode %s patch: %w", h.Descriptor().Name, err)
	}

	current, err := h.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	encoded, err := recordAPI.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode %s %d: %w", h.Descriptor().Name, id, err)
	}
	merged := make(map[string]any)
	if err := recordAPI.Unmarshal(encoded, &merged); err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", h.Descriptor().Name, id, err)
	}
	cleared := make([]string, 0)
	for name, value := range changes {
		if value == nil {
			delete(merged, name)
			cleared = append(cleared, name)
			continue
		}
		merged[name] = value
	}
	sort.Strings(cleared)
	merged["id"] = id

	normalized, err := recordAPI.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", h.Descriptor().Name, err)
	}
	var record T
	if err := recordAPI.Unmarshal(normalized, &record); err != nil {
		return nil, fmt.Errorf("decode %s patch: %w", h.Descriptor().Name, err)
	}

	return h.service.PartialUpdate(ctx, record, cleared...)
}

func (h *handle[T]) Delete(ctx context.Context, id int64, confirm ConfirmFunc) (bool, error) {
	sc := Screen[T](h.state, h.service)
	if err := sc.RequestDelete(ctx, id); err != nil {
		return false, err
	}

	var record any
	if snapshot := sc.State(); snapshot.Entity != nil {
		record = *snapshot.Entity
	}
	if confirm != nil && !confirm(record) {
		sc.CancelDelete()
		return false, nil
	}

	if err := sc.ConfirmDelete(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (h *handle[T]) ErrorMessage() string {
	return h.service.Store().Snapshot().ErrorMessage
}
