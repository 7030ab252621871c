package form

import (
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/platform/id"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupStub map[string]map[int64]any

func (l lookupStub) Find(target string, id int64) (any, bool) {
	record, ok := l[target][id]
	return record, ok
}

func (l lookupStub) Stubs(ids []int64) []entity.Ref {
	return entity.Stubs(ids)
}

var jakarta = time.FixedZone("WIB", 7*60*60)

func newTestBinder(t *testing.T, lookup Lookup) (*Binder, *schema.Registry) {
	t.Helper()

	registry, err := schema.Load()
	require.NoError(t, err)
	return NewBinder(registry, lookup, Config{
		Clock:    clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 20, 45, 0, 0, time.UTC)),
		Location: jakarta,
		IDs:      id.StaticGenerator("3f0c2d4e-8f4a-4a53-9c57-6f3fe3bb0d11"),
	}), registry
}

func TestDefaults_NewRecord(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)

	values, err := binder.Defaults(registry.MustEntity("Tournament"), nil)
	require.NoError(t, err)
	// 20:45 UTC is already the next day in UTC+7.
	assert.Equal(t, "2025-03-15T00:00", values.Get("start"))
	assert.Equal(t, "2025-03-15T00:00", values.Get("ends"))
	assert.Equal(t, "ACTIVE", values.Get("status"))
	assert.Empty(t, values.Get("name"))

	values, err = binder.Defaults(registry.MustEntity("FileData"), nil)
	require.NoError(t, err)
	assert.Equal(t, "3f0c2d4e-8f4a-4a53-9c57-6f3fe3bb0d11", values.Get("uid"))
}

func TestDefaults_EditPreservesStoredEnum(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	start := time.Date(2025, time.June, 1, 2, 0, 0, 0, time.UTC)

	values, err := binder.Defaults(registry.MustEntity("Season"), entity.Season{
		ID:           5,
		Name:         "Spring",
		Status:       entity.StatusInactive,
		Start:        &start,
		Organization: &entity.Organization{ID: 9, Name: "Liga"},
	})
	require.NoError(t, err)

	assert.Equal(t, "5", values.Get("id"))
	assert.Equal(t, "INACTIVE", values.Get("status"))
	assert.Equal(t, "2025-06-01T09:00", values.Get("start"))
	assert.Empty(t, values.Get("ends"))
	assert.Equal(t, "9", values.Get("organization"))
}

func TestDefaults_EditWithoutStoredEnumUsesFallback(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	values, err := binder.Defaults(registry.MustEntity("Camp"), entity.Camp{ID: 2, Name: "Summer"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", values.Get("status"))

	values, err = binder.Defaults(registry.MustEntity("Player"), entity.Player{
		ID:        1,
		FirstName: "Ana",
		LastName:  "Silva",
		Guardians: []entity.Guardian{{ID: 7}, {ID: 3}},
	})
	require.NoError(t, err)
	assert.Empty(t, values.Get("gender"), "gender has no fallback member")
	assert.Equal(t, []string{"7", "3"}, values["guardians"])
}

func TestPayload_CampScenario(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	payload, err := binder.Payload(registry.MustEntity("Camp"), url.Values{
		"name":           {"Summer Camp"},
		"status":         {"ACTIVE"},
		"additionalInfo": {""},
		"image":          {""},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Summer Camp", "status": "ACTIVE"}, payload)
}

func TestPayload_ReferencesAndDates(t *testing.T) {
	t.Parallel()

	lookup := lookupStub{
		"Player": {12: entity.Player{ID: 12, FirstName: "Ana", LastName: "Silva"}},
	}
	binder, registry := newTestBinder(t, lookup)

	payload, err := binder.Payload(registry.MustEntity("Checkin"), url.Values{
		"id":        {"4"},
		"timestamp": {"2025-03-15T08:30"},
		"player":    {"12"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), payload["id"])
	assert.Equal(t, "2025-03-15T01:30:00Z", payload["timestamp"])
	assert.Equal(t, entity.Player{ID: 12, FirstName: "Ana", LastName: "Silva"}, payload["player"])

	payload, err = binder.Payload(registry.MustEntity("Player"), url.Values{
		"firstName":   {"Ana"},
		"lastName":    {"Silva"},
		"dateOfBirth": {"2012-09-30"},
		"guardians":   {"3", "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.Ref{{ID: 3}, {ID: 7}}, payload["guardians"])
	assert.Equal(t, "2012-09-30", payload["dateOfBirth"])
	assert.NotContains(t, payload, "teams")
}

type countingLookup struct {
	lookupStub
	stubCalls int
}

func (l *countingLookup) Stubs(ids []int64) []entity.Ref {
	l.stubCalls++
	return l.lookupStub.Stubs(ids)
}

func TestPayload_ManyReferenceUsesLookupStubs(t *testing.T) {
	t.Parallel()

	lookup := &countingLookup{}
	binder, registry := newTestBinder(t, lookup)
	payload, err := binder.Payload(registry.MustEntity("Team"), url.Values{
		"name":    {"Lions"},
		"players": {"7", "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.Ref{{ID: 7}, {ID: 3}}, payload["players"])
	assert.Equal(t, 1, lookup.stubCalls)
}

func TestPayload_UnknownSingleReferenceIsOmitted(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, lookupStub{})
	payload, err := binder.Payload(registry.MustEntity("Season"), url.Values{
		"name":         {"Spring"},
		"organization": {"77"},
	})
	require.NoError(t, err)
	assert.NotContains(t, payload, "organization")
}

func TestPayload_RejectsMalformedInput(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	_, err := binder.Payload(registry.MustEntity("Tournament"), url.Values{
		"id":     {"abc"},
		"status": {"PAUSED"},
		"start":  {"14/03/2025"},
	})
	require.ErrorIs(t, err, crud.ErrValidation)
	assert.Contains(t, err.Error(), "status must be one of [ACTIVE INACTIVE]")
}

func TestPayload_EnumIgnoresSurroundingSpace(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	payload, err := binder.Payload(registry.MustEntity("Camp"), url.Values{
		"name":   {"Winter"},
		"status": {" INACTIVE "},
	})
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", payload["status"])
}

func TestBind_TypedRecord(t *testing.T) {
	t.Parallel()

	lookup := lookupStub{
		"FileData":     {5: entity.FileData{ID: 5, UID: "u-5", FileName: "logo.png"}},
		"Organization": {9: entity.Organization{ID: 9, Name: "Liga"}},
	}
	binder, registry := newTestBinder(t, lookup)

	season, err := Bind[entity.Season](binder, registry.MustEntity("Season"), url.Values{
		"id":           {"5"},
		"name":         {"Spring"},
		"status":       {"INACTIVE"},
		"start":        {"2025-06-01T09:00"},
		"ends":         {"2025-08-31T18:00"},
		"image":        {"5"},
		"organization": {"9"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), season.ID)
	assert.Equal(t, entity.StatusInactive, season.Status)
	require.NotNil(t, season.Start)
	assert.True(t, season.Start.Equal(time.Date(2025, time.June, 1, 2, 0, 0, 0, time.UTC)))
	require.NotNil(t, season.Image)
	assert.Equal(t, "logo.png", season.Image.FileName)
	require.NotNil(t, season.Organization)
	assert.Equal(t, "Liga", season.Organization.Name)
}

func TestInputs_Layout(t *testing.T) {
	t.Parallel()

	binder, registry := newTestBinder(t, nil)
	desc := registry.MustEntity("Season")
	inputs := binder.Inputs(desc, url.Values{"id": {"5"}, "status": {"ACTIVE"}}, map[string][]crud.Option{
		"organization": {{ID: 9, Label: "Liga"}},
	})

	require.Len(t, inputs, 1+len(desc.Fields)+len(desc.Relations))
	assert.True(t, inputs[0].ReadOnly)

	byName := make(map[string]Input, len(inputs))
	for _, input := range inputs {
		byName[input.Name] = input
	}
	assert.Equal(t, InputSelect, byName["status"].Type)
	assert.Equal(t, []Choice{{Value: "ACTIVE", Label: "ACTIVE"}, {Value: "INACTIVE", Label: "INACTIVE"}}, byName["status"].Choices)
	assert.Equal(t, InputDateTimeLocal, byName["start"].Type)
	assert.Equal(t, []Choice{{Value: "9", Label: "Liga"}}, byName["organization"].Choices)
	assert.Empty(t, byName["image"].Choices)
}
