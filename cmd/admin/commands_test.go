package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-admin/internal/app"
	"github.com/riskibarqy/tournament-admin/internal/config"
	"github.com/riskibarqy/tournament-admin/internal/platform/apitest"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (*app.State, *apitest.Server) {
	t.Helper()

	registry := schema.MustLoad()
	srv := apitest.NewServer(registry)
	t.Cleanup(srv.Close)

	state, err := app.New(config.Config{
		APIBaseURL:       srv.URL,
		ListPageSize:     20,
		ListSort:         []string{"id", "asc"},
		Location:         time.UTC,
		ReferenceWorkers: 2,
	}, app.Options{
		HTTPClient: srv.Client(),
		Clock:      clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)),
		Registry:   registry,
		Logger:     logging.NewNop(),
	})
	require.NoError(t, err)
	return state, srv
}

func runCLI(t *testing.T, state *app.State, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), state, args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeOutput(t *testing.T, raw string, out any) {
	t.Helper()
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(raw, out); err != nil {
		t.Fatalf("decode output %q: %v", raw, err)
	}
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	state, _ := newTestState(t)

	code, _, stderr := runCLI(t, state, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: admin")
}

func TestRun_UnknownCommandAndEntity(t *testing.T) {
	state, _ := newTestState(t)

	code, _, stderr := runCLI(t, state, "", "promote", "camp")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "promote"`)

	code, _, stderr = runCLI(t, state, "", "get", "stadium", "1")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown entity "stadium"`)
}

func TestRun_Entities(t *testing.T) {
	state, _ := newTestState(t)

	code, stdout, _ := runCLI(t, state, "", "entities")
	require.Equal(t, 0, code)

	var out []entitySummary
	decodeOutput(t, stdout, &out)
	require.Len(t, out, 9)
	assert.Equal(t, "Tournament", out[0].Name)
	assert.Equal(t, "/tournament/new", out[0].NewPath)
}

func TestRun_CreateThenList(t *testing.T) {
	state, srv := newTestState(t)

	code, stdout, stderr := runCLI(t, state, "", "create", "camp", "name=Summer Camp")
	require.Equal(t, 0, code, stderr)

	var created map[string]any
	decodeOutput(t, stdout, &created)
	assert.Equal(t, "Summer Camp", created["name"])
	assert.Equal(t, "ACTIVE", created["status"])

	req, ok := srv.LastRequest("POST")
	require.True(t, ok)
	assert.Equal(t, "/api/camps", req.Path)

	code, stdout, _ = runCLI(t, state, "", "list", "-sort", "name,desc", "camp")
	require.Equal(t, 0, code)

	var listing struct {
		Items []map[string]any `json:"items"`
		Total int64            `json:"total"`
	}
	decodeOutput(t, stdout, &listing)
	assert.Equal(t, int64(1), listing.Total)
	require.Len(t, listing.Items, 1)

	req, ok = srv.LastRequest("GET")
	require.True(t, ok)
	assert.Equal(t, []string{"name,desc"}, req.Query["sort"])
}

func TestRun_CreateValidationFailure(t *testing.T) {
	state, srv := newTestState(t)

	code, _, stderr := runCLI(t, state, "", "create", "camp", "status=ACTIVE")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "name is required")

	_, sent := srv.LastRequest("POST")
	assert.False(t, sent)
}

func TestRun_PatchFromStdin(t *testing.T) {
	state, srv := newTestState(t)
	ids := srv.Seed("Camp", apitest.Record{"name": "Winter", "status": "ACTIVE"})

	code, stdout, stderr := runCLI(t, state, `{"status":"INACTIVE"}`, "patch", "camp", strconv.FormatInt(ids[0], 10))
	require.Equal(t, 0, code, stderr)

	var patched map[string]any
	decodeOutput(t, stdout, &patched)
	assert.Equal(t, "INACTIVE", patched["status"])
	assert.Equal(t, "Winter", patched["name"])
}

func TestRun_DeletePromptsBeforeDeleting(t *testing.T) {
	state, srv := newTestState(t)
	ids := srv.Seed("Camp", apitest.Record{"name": "Winter", "status": "ACTIVE"})
	id := strconv.FormatInt(ids[0], 10)

	code, _, stderr := runCLI(t, state, "n\n", "delete", "camp", id)
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "delete cancelled")
	_, sent := srv.LastRequest("DELETE")
	assert.False(t, sent)

	code, _, stderr = runCLI(t, state, "y\n", "open", "/camp/"+id+"/delete")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "deleted Camp "+id)

	code, _, stderr = runCLI(t, state, "", "get", "camp", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "404")
}

func TestRun_OpenEditShowsForm(t *testing.T) {
	state, srv := newTestState(t)
	ids := srv.Seed("Camp", apitest.Record{"name": "Winter", "status": "INACTIVE"})
	id := strconv.FormatInt(ids[0], 10)

	code, stdout, stderr := runCLI(t, state, "", "open", "/camp/"+id+"/edit")
	require.Equal(t, 0, code, stderr)

	var inputs []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	}
	decodeOutput(t, stdout, &inputs)
	values := make(map[string][]string, len(inputs))
	for _, input := range inputs {
		values[input.Name] = input.Values
	}
	assert.Equal(t, []string{id}, values["id"])
	assert.Equal(t, []string{"INACTIVE"}, values["status"])
}

func TestParseFields(t *testing.T) {
	values, err := parseFields([]string{"name=Lions", "players=3", "players=7", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "7"}, values["players"])
	assert.Equal(t, "a=b", values.Get("note"))

	_, err = parseFields([]string{"broken"})
	assert.ErrorIs(t, err, errUsage)
}
