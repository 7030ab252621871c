package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

var decodeAPI = jsoniter.Config{UseNumber: true}.Froze()

// Request is a recorded call made against the server.
type Request struct {
	Method      string
	Path        string
	Query       map[string][]string
	ContentType string
	Body        Record
}

// Server is an in-memory stand-in for the tournament REST API.
type Server struct {
	*httptest.Server

	registry *schema.Registry
	repos    map[string]*collectionRepository

	mu       sync.Mutex
	requests []Request
	failures []int
}

func NewServer(registry *schema.Registry) *Server {
	s := &Server{
		registry: registry,
		repos:    make(map[string]*collectionRepository),
	}

	mux := http.NewServeMux()
	for _, desc := range registry.Entities() {
		repo := newCollectionRepository(desc)
		s.repos[desc.Name] = repo

		base := "/" + strings.Trim(desc.Resource, "/")
		mux.HandleFunc("GET "+base, s.handleList(repo))
		mux.HandleFunc("POST "+base, s.handleCreate(repo))
		mux.HandleFunc("GET "+base+"/{id}", s.handleGet(repo))
		mux.HandleFunc("PUT "+base+"/{id}", s.handleUpdate(repo))
		mux.HandleFunc("PATCH "+base+"/{id}", s.handlePatch(repo))
		mux.HandleFunc("DELETE "+base+"/{id}", s.handleDelete(repo))
	}

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Seed stores rows for entity directly and returns their ids.
func (s *Server) Seed(entity string, rows ...Record) []int64 {
	repo := s.repos[entity]
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		stored := repo.insert(row)
		id, _ := toInt64(stored["id"])
		ids = append(ids, id)
	}
	return ids
}

// FailNext makes the next request answer with status instead of being served.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, status)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request with the given method.
func (s *Server) LastRequest(method string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == method {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			ContentType: r.Header.Get("Content-Type"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body Record
			if err := decodeAPI.NewDecoder(r.Body).Decode(&body); err != nil {
				writeProblem(w, http.StatusBadRequest, "error.http.400", err.Error())
				return
			}
			entry.Body = body
			r = r.WithContext(withBody(r.Context(), body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, entry)
		status := 0
		if len(s.failures) > 0 {
			status = s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeProblem(w, status, "error.injected", http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		rows := repo.list(query.Get("sort"))
		total := len(rows)

		if query.Has("page") && query.Has("size") {
			page, _ := strconv.Atoi(query.Get("page"))
			size, _ := strconv.Atoi(query.Get("size"))
			if size > 0 && page >= 0 {
				start := min(page*size, len(rows))
				end := min(start+size, len(rows))
				rows = rows[start:end]
			}
		}

		out := make([]Record, 0, len(rows))
		for _, row := range rows {
			out = append(out, s.expand(repo.desc, row))
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleGet(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		row, found := repo.get(id)
		if !found {
			writeProblem(w, http.StatusNotFound, "error.http.404", "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, s.expand(repo.desc, row))
	}
}

func (s *Server) handleCreate(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		if _, hasID := body["id"]; hasID && body["id"] != nil {
			writeProblem(w, http.StatusBadRequest, "error.idexists", "A new "+repo.desc.Name+" cannot already have an ID")
			return
		}
		if field, ok := missingRequired(repo.desc, body); !ok {
			writeProblem(w, http.StatusBadRequest, "error.validation", field+" is required")
			return
		}
		stored := repo.insert(body)
		writeJSON(w, http.StatusCreated, s.expand(repo.desc, stored))
	}
}

func (s *Server) handleUpdate(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, body, ok := s.checkIdentity(w, r, repo)
		if !ok {
			return
		}
		if field, valid := missingRequired(repo.desc, body); !valid {
			writeProblem(w, http.StatusBadRequest, "error.validation", field+" is required")
			return
		}
		repo.replace(id, body)
		row, _ := repo.get(id)
		writeJSON(w, http.StatusOK, s.expand(repo.desc, row))
	}
}

func (s *Server) handlePatch(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, body, ok := s.checkIdentity(w, r, repo)
		if !ok {
			return
		}
		row, _ := repo.merge(id, body)
		writeJSON(w, http.StatusOK, s.expand(repo.desc, row))
	}
}

func (s *Server) handleDelete(repo *collectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		repo.delete(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// checkIdentity mirrors the backend's id checks for PUT and PATCH.
func (s *Server) checkIdentity(w http.ResponseWriter, r *http.Request, repo *collectionRepository) (int64, Record, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return 0, nil, false
	}
	body := bodyFrom(r.Context())
	bodyID, hasID := toInt64(body["id"])
	if !hasID {
		writeProblem(w, http.StatusBadRequest, "error.idnull", "Invalid id")
		return 0, nil, false
	}
	if bodyID != id {
		writeProblem(w, http.StatusBadRequest, "error.idinvalid", "Invalid ID")
		return 0, nil, false
	}
	if _, found := repo.get(id); !found {
		writeProblem(w, http.StatusBadRequest, "error.idnotfound", "Entity not found")
		return 0, nil, false
	}
	return id, body, true
}

// expand replaces {id} stubs with the referenced rows, one level deep.
func (s *Server) expand(desc schema.Descriptor, row Record) Record {
	out := clone(row)
	for _, rel := range desc.Relations {
		value, ok := out[rel.Name]
		if !ok || value == nil {
			continue
		}
		target := s.repos[rel.Target]
		switch rel.Cardinality {
		case schema.One:
			out[rel.Name] = s.resolve(target, value)
		case schema.Many:
			items, _ := value.([]any)
			resolved := make([]any, 0, len(items))
			for _, item := range items {
				resolved = append(resolved, s.resolve(target, item))
			}
			out[rel.Name] = resolved
		}
	}
	return out
}

func (s *Server) resolve(target *collectionRepository, value any) any {
	stub, ok := value.(map[string]any)
	if !ok {
		return value
	}
	id, ok := toInt64(stub["id"])
	if !ok {
		return value
	}
	row, found := target.get(id)
	if !found {
		return map[string]any{"id": id}
	}
	for _, rel := range target.desc.Relations {
		delete(row, rel.Name)
	}
	return map[string]any(row)
}

func missingRequired(desc schema.Descriptor, body Record) (string, bool) {
	for _, field := range desc.Fields {
		if !field.Required {
			continue
		}
		value, ok := body[field.Name]
		if !ok || value == nil || value == "" {
			return field.Name, false
		}
	}
	for _, rel := range desc.Relations {
		if rel.Required && body[rel.Name] == nil {
			return rel.Name, false
		}
	}
	return "", true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "error.idinvalid", "Invalid ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"title":   http.StatusText(status),
		"message": message,
		"detail":  detail,
	})
}
