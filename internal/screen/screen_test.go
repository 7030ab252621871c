package screen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/form"
	"github.com/riskibarqy/tournament-admin/internal/platform/apitest"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/reference"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/riskibarqy/tournament-admin/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv      *apitest.Server
	registry *schema.Registry
	resolver *reference.Resolver
	binder   *form.Binder

	mu     sync.Mutex
	routes []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	registry := schema.MustLoad()
	srv := apitest.NewServer(registry)
	t.Cleanup(srv.Close)

	resolver := reference.NewResolver(reference.Config{Logger: logging.NewNop()})
	return &harness{
		srv:      srv,
		registry: registry,
		resolver: resolver,
		binder: form.NewBinder(registry, resolver, form.Config{
			Clock:    clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)),
			Location: time.UTC,
		}),
	}
}

func newService[T entity.Record](h *harness, name string) *crud.Service[T] {
	desc := h.registry.MustEntity(name)
	gateway := crud.NewHTTPGateway[T](desc, crud.GatewayConfig{
		HTTPClient: h.srv.Client(),
		BaseURL:    h.srv.URL,
		Logger:     logging.NewNop(),
	})
	service := crud.NewService[T](desc, gateway, nil, crud.ServiceConfig{
		DefaultQuery: crud.ListQuery{Page: 0, Size: 20, Sort: "id,asc"},
		Logger:       logging.NewNop(),
	})
	h.resolver.Register(service)
	return service
}

func newScreen[T entity.Record](h *harness, service *crud.Service[T]) *Screen[T] {
	return New[T](service, Config{
		Binder:   h.binder,
		Preparer: h.resolver,
		Navigate: func(path string) {
			h.mu.Lock()
			h.routes = append(h.routes, path)
			h.mu.Unlock()
		},
		Logger: logging.NewNop(),
	})
}

func (h *harness) navigations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.routes...)
}

func TestScreen_CreateCampScenario(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	newService[entity.FileData](h, "FileData")
	camps := newService[entity.Camp](h, "Camp")
	s := newScreen[entity.Camp](h, camps)

	var loading []bool
	camps.Store().Subscribe(func(state store.State[entity.Camp]) {
		loading = append(loading, state.Loading)
	})

	require.Equal(t, PhaseIdle, s.Phase())
	require.NoError(t, s.OpenCreate(context.Background()))
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, "ACTIVE", s.Draft().Get("status"))

	s.SetField("name", "Summer Camp")
	saved, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit camp: %v", err)
	}
	assert.Positive(t, saved.ID)

	post, ok := h.srv.LastRequest(http.MethodPost)
	require.True(t, ok)
	assert.Equal(t, "/api/camps", post.Path)
	assert.Equal(t, apitest.Record{"name": "Summer Camp", "status": "ACTIVE"}, post.Body)

	state := s.State()
	assert.True(t, state.UpdateSuccess)
	assert.False(t, state.Loading)
	require.Len(t, state.Entities, 1)

	assert.Contains(t, loading, true, "store went through loading")
	assert.False(t, loading[len(loading)-1])
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, []string{"/camp"}, h.navigations())
}

func TestScreen_EditPreservesStoredEnum(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	newService[entity.FileData](h, "FileData")
	camps := newService[entity.Camp](h, "Camp")
	ids := h.srv.Seed("Camp", apitest.Record{"name": "Winter", "status": "INACTIVE"})
	s := newScreen[entity.Camp](h, camps)

	require.NoError(t, s.OpenEdit(context.Background(), ids[0]))
	draft := s.Draft()
	assert.Equal(t, "INACTIVE", draft.Get("status"))
	assert.Equal(t, "Winter", draft.Get("name"))

	s.SetField("name", "Winter Camp")
	saved, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Winter Camp", saved.Name)
	assert.Equal(t, entity.StatusInactive, saved.Status)

	put, ok := h.srv.LastRequest(http.MethodPut)
	require.True(t, ok)
	assert.Equal(t, "/api/camps/1", put.Path)
}

func TestScreen_MultiReferenceSubmitsStubsInOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	newService[entity.Guardian](h, "Guardian")
	newService[entity.Team](h, "Team")
	players := newService[entity.Player](h, "Player")
	for i := 0; i < 7; i++ {
		h.srv.Seed("Guardian", apitest.Record{
			"firstName":            "G",
			"lastName":             "S",
			"relationshipToPlayer": "parent",
			"dateOfBirth":          "1980-01-01",
		})
	}
	s := newScreen[entity.Player](h, players)

	require.NoError(t, s.OpenCreate(context.Background()))
	assert.Len(t, s.Options()["guardians"], 7)

	s.SetField("firstName", "Ana")
	s.SetField("lastName", "Silva")
	s.SetField("guardians", "3", "7")
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	post, ok := h.srv.LastRequest(http.MethodPost)
	require.True(t, ok)
	guardians, ok := post.Body["guardians"].([]any)
	require.True(t, ok)
	require.Len(t, guardians, 2)

	first := guardians[0].(map[string]any)
	second := guardians[1].(map[string]any)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, json.Number("3"), first["id"])
	assert.Equal(t, json.Number("7"), second["id"])
}

func TestScreen_FailedSubmitKeepsDraft(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	newService[entity.FileData](h, "FileData")
	camps := newService[entity.Camp](h, "Camp")
	s := newScreen[entity.Camp](h, camps)

	require.NoError(t, s.OpenCreate(context.Background()))

	// Missing name is caught before any request.
	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, crud.ErrValidation)
	assert.Equal(t, PhaseFailed, s.Phase())
	_, posted := h.srv.LastRequest(http.MethodPost)
	assert.False(t, posted)

	s.SetField("name", "Summer Camp")
	h.srv.FailNext(http.StatusInternalServerError)
	_, err = s.Submit(context.Background())
	require.ErrorIs(t, err, crud.ErrServer)
	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, "Summer Camp", s.Draft().Get("name"))
	assert.NotEmpty(t, s.State().ErrorMessage)
	assert.Empty(t, h.navigations())
}

func TestScreen_TwoStepDelete(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	orgs := newService[entity.Organization](h, "Organization")
	ids := h.srv.Seed("Organization", apitest.Record{"name": "Liga"}, apitest.Record{"name": "Copa"})
	s := newScreen[entity.Organization](h, orgs)
	ctx := context.Background()

	require.NoError(t, s.RequestDelete(ctx, ids[0]))
	assert.Equal(t, ModeDelete, s.Mode())
	assert.Equal(t, ids[0], s.PendingDelete())
	_, deleted := h.srv.LastRequest(http.MethodDelete)
	assert.False(t, deleted, "nothing is deleted before confirmation")

	s.CancelDelete()
	assert.Zero(t, s.PendingDelete())
	assert.Error(t, s.ConfirmDelete(ctx))

	require.NoError(t, s.RequestDelete(ctx, ids[0]))
	require.NoError(t, s.ConfirmDelete(ctx))

	_, err := orgs.Get(ctx, ids[0])
	require.ErrorIs(t, err, crud.ErrNotFound)
	assert.Equal(t, []string{"/organization", "/organization"}, h.navigations())

	list := orgs.Store().Snapshot().Entities
	require.Len(t, list, 1)
	assert.Equal(t, "Copa", list[0].Name)
}

func TestScreen_OpenDetailMissingRecordFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	teams := newService[entity.Team](h, "Team")
	s := newScreen[entity.Team](h, teams)

	err := s.OpenDetail(context.Background(), 42)
	require.True(t, errors.Is(err, crud.ErrNotFound))
	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, err, s.Err())

	require.NoError(t, s.OpenList(context.Background(), crud.ListQuery{Page: 0, Size: 20, Sort: "name,asc"}))
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Nil(t, s.Err())
}
