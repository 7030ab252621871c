package store

import (
	"sync"
)

// State is the per-entity slice the screens render from.
type State[T any] struct {
	Entities      []T
	Entity        *T
	Loading       bool
	Updating      bool
	UpdateSuccess bool
	TotalItems    int64
	ErrorMessage  string
}

type Listener[T any] func(State[T])

// Store holds one entity collection and its request-lifecycle flags.
// Completions apply in arrival order: the last response wins.
type Store[T any] struct {
	name string

	mu        sync.RWMutex
	state     State[T]
	listeners map[int]Listener[T]
	nextID    int
}

func New[T any](name string) *Store[T] {
	return &Store[T]{
		name:      name,
		listeners: make(map[int]Listener[T]),
	}
}

func (s *Store[T]) Name() string {
	return s.name
}

// Snapshot returns a copy that is safe to read after the store moves on.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyState()
}

// Subscribe registers fn for every state change and returns its cancel func.
func (s *Store[T]) Subscribe(fn Listener[T]) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ResetFocus is used when switching a screen into "create new" mode.
func (s *Store[T]) ResetFocus() {
	s.update(func(st *State[T]) {
		st.Entity = nil
		st.UpdateSuccess = false
	})
}

func (s *Store[T]) BeginFetch() {
	s.update(func(st *State[T]) {
		st.Loading = true
		st.ErrorMessage = ""
		st.UpdateSuccess = false
	})
}

func (s *Store[T]) BeginMutate() {
	s.update(func(st *State[T]) {
		st.Updating = true
		st.ErrorMessage = ""
		st.UpdateSuccess = false
	})
}

// CompleteList replaces the collection wholesale.
func (s *Store[T]) CompleteList(records []T, total int64) {
	items := make([]T, len(records))
	copy(items, records)
	s.update(func(st *State[T]) {
		st.Entities = items
		st.TotalItems = total
		st.Loading = false
	})
}

func (s *Store[T]) CompleteFocus(record T) {
	s.update(func(st *State[T]) {
		st.Entity = &record
		st.Loading = false
	})
}

// CompleteMutate stores the server's canonical copy of a created or updated record.
func (s *Store[T]) CompleteMutate(record T) {
	s.update(func(st *State[T]) {
		st.Entity = &record
		st.Updating = false
		st.Loading = false
		st.UpdateSuccess = true
	})
}

func (s *Store[T]) CompleteDelete() {
	s.update(func(st *State[T]) {
		st.Entity = nil
		st.Updating = false
		st.UpdateSuccess = true
	})
}

func (s *Store[T]) Fail(err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	s.update(func(st *State[T]) {
		st.ErrorMessage = message
		st.Loading = false
		st.Updating = false
		st.UpdateSuccess = false
	})
}

func (s *Store[T]) update(fn func(*State[T])) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.copyState()
	listeners := make([]Listener[T], 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func (s *Store[T]) copyState() State[T] {
	out := s.state
	if s.state.Entities != nil {
		out.Entities = make([]T, len(s.state.Entities))
		copy(out.Entities, s.state.Entities)
	}
	if s.state.Entity != nil {
		entity := *s.state.Entity
		out.Entity = &entity
	}
	return out
}
