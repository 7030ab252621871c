package screen

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/form"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/riskibarqy/tournament-admin/internal/store"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseFailed     Phase = "failed"
)

// Service is the slice of crud.Service a screen drives.
type Service[T entity.Record] interface {
	Descriptor() schema.Descriptor
	Store() *store.Store[T]
	DefaultQuery() crud.ListQuery
	List(ctx context.Context, query crud.ListQuery) (crud.Page[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Preparer loads relation dropdowns ahead of a form.
type Preparer interface {
	Prepare(ctx context.Context, desc schema.Descriptor) (map[string][]crud.Option, error)
}

type Navigator func(path string)

type Config struct {
	Binder   *form.Binder
	Preparer Preparer
	Navigate Navigator
	Logger   *logging.Logger
}

// Screen is the controller behind one entity's list, detail, form and
// delete views.
type Screen[T entity.Record] struct {
	service  Service[T]
	binder   *form.Binder
	preparer Preparer
	navigate Navigator
	logger   *logging.Logger

	mu            sync.Mutex
	phase         Phase
	mode          Mode
	draft         url.Values
	options       map[string][]crud.Option
	pendingDelete int64
	lastErr       error
}

func New[T entity.Record](service Service[T], cfg Config) *Screen[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	navigate := cfg.Navigate
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Screen[T]{
		service:  service,
		binder:   cfg.Binder,
		preparer: cfg.Preparer,
		navigate: navigate,
		logger:   logger.With("screen", service.Descriptor().Name),
		phase:    PhaseIdle,
		mode:     ModeList,
		draft:    url.Values{},
		options:  map[string][]crud.Option{},
	}
}

func (s *Screen[T]) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Screen[T]) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Screen[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State is the store slice the screen renders from.
func (s *Screen[T]) State() store.State[T] {
	return s.service.Store().Snapshot()
}

// Draft returns a copy of the current form values.
func (s *Screen[T]) Draft() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.draft)
}

func (s *Screen[T]) Options() map[string][]crud.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]crud.Option, len(s.options))
	for key, value := range s.options {
		out[key] = append([]crud.Option(nil), value...)
	}
	return out
}

// Inputs lays out the form controls for the current draft.
func (s *Screen[T]) Inputs() []form.Input {
	if s.binder == nil {
		return nil
	}
	return s.binder.Inputs(s.service.Descriptor(), s.Draft(), s.Options())
}

// SetField replaces the draft value(s) of one input.
func (s *Screen[T]) SetField(name string, values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(values) == 0 {
		s.draft.Del(name)
		return
	}
	s.draft[name] = append([]string(nil), values...)
}

func (s *Screen[T]) OpenList(ctx context.Context, query crud.ListQuery) error {
	s.begin(ModeList)
	_, err := s.service.List(ctx, query)
	return s.finish(err)
}

func (s *Screen[T]) OpenDetail(ctx context.Context, id int64) error {
	s.begin(ModeDetail)
	_, err := s.service.Get(ctx, id)
	return s.finish(err)
}

// OpenCreate resets the focused record and fills the draft with new-record
// defaults while the relation dropdowns load.
func (s *Screen[T]) OpenCreate(ctx context.Context) error {
	s.begin(ModeCreate)
	desc := s.service.Descriptor()
	s.service.Store().ResetFocus()

	draft := url.Values{}
	if s.binder != nil {
		values, err := s.binder.Defaults(desc, nil)
		if err != nil {
			return s.finish(err)
		}
		draft = values
	}
	s.setDraft(draft)
	return s.finish(s.prepare(ctx, desc))
}

func (s *Screen[T]) OpenEdit(ctx context.Context, id int64) error {
	s.begin(ModeEdit)
	desc := s.service.Descriptor()

	record, err := s.service.Get(ctx, id)
	if err != nil {
		return s.finish(err)
	}
	draft := url.Values{}
	if s.binder != nil {
		values, err := s.binder.Defaults(desc, record)
		if err != nil {
			return s.finish(err)
		}
		draft = values
	}
	s.setDraft(draft)
	return s.finish(s.prepare(ctx, desc))
}

// Submit binds the draft and creates or updates the record. On success the
// screen navigates back to the list; on failure the draft is kept as typed.
func (s *Screen[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	if s.binder == nil {
		return zero, errors.New("screen has no form binder")
	}

	s.mu.Lock()
	s.phase = PhaseSubmitting
	s.lastErr = nil
	draft := cloneValues(s.draft)
	s.mu.Unlock()

	desc := s.service.Descriptor()
	record, err := form.Bind[T](s.binder, desc, draft)
	if err != nil {
		return zero, s.finish(err)
	}

	var saved T
	if record.GetID() > 0 {
		saved, err = s.service.Update(ctx, record)
	} else {
		saved, err = s.service.Create(ctx, record)
	}
	if err != nil {
		return zero, s.finish(err)
	}

	s.finish(nil)
	s.navigate(ListPath(desc))
	return saved, nil
}

// RequestDelete loads the record and waits for confirmation.
func (s *Screen[T]) RequestDelete(ctx context.Context, id int64) error {
	s.begin(ModeDelete)
	if _, err := s.service.Get(ctx, id); err != nil {
		return s.finish(err)
	}
	s.mu.Lock()
	s.pendingDelete = id
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *Screen[T]) PendingDelete() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingDelete
}

func (s *Screen[T]) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	id := s.pendingDelete
	if id <= 0 {
		s.mu.Unlock()
		return errors.New("no delete awaiting confirmation")
	}
	s.phase = PhaseSubmitting
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.service.Delete(ctx, id); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.pendingDelete = 0
	s.mu.Unlock()
	s.finish(nil)
	s.navigate(ListPath(s.service.Descriptor()))
	return nil
}

func (s *Screen[T]) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = 0
	s.phase = PhaseReady
	s.mu.Unlock()
	s.navigate(ListPath(s.service.Descriptor()))
}

func (s *Screen[T]) prepare(ctx context.Context, desc schema.Descriptor) error {
	if s.preparer == nil || len(desc.Relations) == 0 {
		return nil
	}
	options, err := s.preparer.Prepare(ctx, desc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.options = options
	s.mu.Unlock()
	return nil
}

func (s *Screen[T]) begin(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.phase = PhaseLoading
	s.lastErr = nil
	s.pendingDelete = 0
}

func (s *Screen[T]) finish(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseFailed
		s.lastErr = err
		s.logger.Debug("screen action failed", "mode", string(s.mode), "error", err)
		return err
	}
	s.phase = PhaseReady
	return nil
}

func (s *Screen[T]) setDraft(values url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = values
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, items := range values {
		out[key] = append([]string(nil), items...)
	}
	return out
}
