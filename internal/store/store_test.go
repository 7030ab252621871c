package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type camp struct {
	ID   int64
	Name string
}

func TestStore_FetchLifecycle(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.BeginFetch()

	state := s.Snapshot()
	assert.True(t, state.Loading)
	assert.Empty(t, state.ErrorMessage)

	s.CompleteList([]camp{{ID: 1, Name: "Summer"}, {ID: 2, Name: "Winter"}}, 12)
	state = s.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, int64(12), state.TotalItems)
	require.Len(t, state.Entities, 2)

	s.BeginFetch()
	s.CompleteList(nil, 0)
	state = s.Snapshot()
	assert.Empty(t, state.Entities, "list must be replaced wholesale, not merged")
	assert.Equal(t, int64(0), state.TotalItems)
}

func TestStore_MutateLifecycle(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.Fail(errors.New("boom"))
	s.BeginMutate()

	state := s.Snapshot()
	assert.True(t, state.Updating)
	assert.Empty(t, state.ErrorMessage, "begin clears the previous error")
	assert.False(t, state.UpdateSuccess)

	s.CompleteMutate(camp{ID: 9, Name: "Summer Camp"})
	state = s.Snapshot()
	assert.False(t, state.Updating)
	assert.True(t, state.UpdateSuccess)
	require.NotNil(t, state.Entity)
	assert.Equal(t, int64(9), state.Entity.ID)

	s.BeginMutate()
	s.CompleteDelete()
	state = s.Snapshot()
	assert.Nil(t, state.Entity)
	assert.True(t, state.UpdateSuccess)
}

func TestStore_FailClearsInFlightFlags(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.BeginFetch()
	s.BeginMutate()
	s.Fail(errors.New("server error: status=500"))

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.Updating)
	assert.False(t, state.UpdateSuccess)
	assert.Equal(t, "server error: status=500", state.ErrorMessage)
}

func TestStore_ResetFocus(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.CompleteMutate(camp{ID: 3})
	s.ResetFocus()

	state := s.Snapshot()
	assert.Nil(t, state.Entity)
	assert.False(t, state.UpdateSuccess)
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.CompleteList([]camp{{ID: 1, Name: "Summer"}}, 1)
	s.CompleteFocus(camp{ID: 1, Name: "Summer"})

	state := s.Snapshot()
	state.Entities[0].Name = "mutated"
	state.Entity.Name = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "Summer", fresh.Entities[0].Name)
	assert.Equal(t, "Summer", fresh.Entity.Name)
}

func TestStore_LastResponseWins(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	s.BeginMutate()
	s.BeginMutate()

	// The second request's response arrives first.
	s.CompleteMutate(camp{ID: 1, Name: "second"})
	s.CompleteMutate(camp{ID: 1, Name: "first"})

	state := s.Snapshot()
	require.NotNil(t, state.Entity)
	assert.Equal(t, "first", state.Entity.Name)
}

func TestStore_SubscribeReceivesTransitions(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	var mu sync.Mutex
	var loading []bool
	cancel := s.Subscribe(func(state State[camp]) {
		mu.Lock()
		loading = append(loading, state.Loading)
		mu.Unlock()
	})

	s.BeginFetch()
	s.CompleteList(nil, 0)
	cancel()
	s.BeginFetch()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, loading)
}

func TestStore_ConcurrentCompletions(t *testing.T) {
	t.Parallel()

	s := New[camp]("Camp")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.BeginMutate()
			s.CompleteMutate(camp{ID: int64(i)})
		}(i)
	}
	wg.Wait()

	state := s.Snapshot()
	assert.False(t, state.Updating)
	assert.True(t, state.UpdateSuccess)
	require.NotNil(t, state.Entity)
}
