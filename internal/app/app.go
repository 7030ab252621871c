package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/tournament-admin/internal/config"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/form"
	idgen "github.com/riskibarqy/tournament-admin/internal/platform/id"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/reference"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/riskibarqy/tournament-admin/internal/screen"
	"github.com/riskibarqy/tournament-admin/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options overrides the collaborators New would otherwise build from config.
type Options struct {
	HTTPClient *http.Client
	Clock      clockwork.Clock
	IDs        idgen.Generator
	Registry   *schema.Registry
	Navigate   screen.Navigator
	Logger     *logging.Logger
}

// State owns one store-backed service per entity plus the shared resolver
// and binder. It replaces any process-wide singleton.
type State struct {
	Config   config.Config
	Registry *schema.Registry
	Resolver *reference.Resolver
	Binder   *form.Binder

	Tournaments   *crud.Service[entity.Tournament]
	Teams         *crud.Service[entity.Team]
	Seasons       *crud.Service[entity.Season]
	Players       *crud.Service[entity.Player]
	Organizations *crud.Service[entity.Organization]
	Guardians     *crud.Service[entity.Guardian]
	Checkins      *crud.Service[entity.Checkin]
	Camps         *crud.Service[entity.Camp]
	FileData      *crud.Service[entity.FileData]

	logger   *logging.Logger
	navigate screen.Navigator
	entities map[string]Entity
}

func New(cfg config.Config, opts Options) (*State, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	registry := opts.Registry
	if registry == nil {
		loaded, err := schema.Load()
		if err != nil {
			return nil, fmt.Errorf("load entity schema: %w", err)
		}
		registry = loaded
	}

	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("api base url cannot be empty")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ids := opts.IDs
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	navigate := opts.Navigate
	if navigate == nil {
		navigate = func(path string) {
			logger.Debug("navigate", "path", path)
		}
	}

	resolver := reference.NewResolver(reference.Config{
		Workers: cfg.ReferenceWorkers,
		Logger:  logger.Named("reference"),
	})

	s := &State{
		Config:   cfg,
		Registry: registry,
		Resolver: resolver,
		Binder: form.NewBinder(registry, resolver, form.Config{
			Clock:    clock,
			Location: cfg.Location,
			IDs:      ids,
		}),
		logger:   logger,
		navigate: navigate,
		entities: make(map[string]Entity),
	}

	b := builder{
		state:     s,
		validator: crud.NewValidator(),
		gateway: crud.GatewayConfig{
			HTTPClient:  httpClient,
			BaseURL:     cfg.APIBaseURL,
			BearerToken: cfg.APIBearerToken,
			Clock:       clock,
			Logger:      logger.Named("gateway"),
		},
	}

	var err error
	if s.Tournaments, err = build[entity.Tournament](b, "Tournament"); err != nil {
		return nil, err
	}
	if s.Teams, err = build[entity.Team](b, "Team"); err != nil {
		return nil, err
	}
	if s.Seasons, err = build[entity.Season](b, "Season"); err != nil {
		return nil, err
	}
	if s.Players, err = build[entity.Player](b, "Player"); err != nil {
		return nil, err
	}
	if s.Organizations, err = build[entity.Organization](b, "Organization"); err != nil {
		return nil, err
	}
	if s.Guardians, err = build[entity.Guardian](b, "Guardian"); err != nil {
		return nil, err
	}
	if s.Checkins, err = build[entity.Checkin](b, "Checkin"); err != nil {
		return nil, err
	}
	if s.Camps, err = build[entity.Camp](b, "Camp"); err != nil {
		return nil, err
	}
	if s.FileData, err = build[entity.FileData](b, "FileData"); err != nil {
		return nil, err
	}

	return s, nil
}

// NewHTTPClient builds the instrumented client used by every gateway. The
// timeout stays unset unless API_TIMEOUT is configured.
func NewHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{
		Timeout: cfg.APITimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
	}
}

// Entity returns the handle registered under an entity name or route.
func (s *State) Entity(name string) (Entity, bool) {
	if handle, ok := s.entities[name]; ok {
		return handle, true
	}
	if desc, ok := s.Registry.ByRoute(strings.ToLower(strings.TrimSpace(name))); ok {
		handle, ok := s.entities[desc.Name]
		return handle, ok
	}
	return nil, false
}

// Entities lists handles in schema declaration order.
func (s *State) Entities() []Entity {
	out := make([]Entity, 0, len(s.entities))
	for _, desc := range s.Registry.Entities() {
		if handle, ok := s.entities[desc.Name]; ok {
			out = append(out, handle)
		}
	}
	return out
}

// Route resolves a screen path such as /camp/5/edit to its entity handle.
func (s *State) Route(path string) (screen.Route, Entity, error) {
	route, err := screen.ParseRoute(s.Registry, path)
	if err != nil {
		return screen.Route{}, nil, err
	}
	handle, ok := s.entities[route.Entity]
	if !ok {
		return screen.Route{}, nil, fmt.Errorf("no handle registered for entity %s", route.Entity)
	}
	return route, handle, nil
}

type builder struct {
	state     *State
	validator *validator.Validate
	gateway   crud.GatewayConfig
}

func build[T entity.Record](b builder, name string) (*crud.Service[T], error) {
	s := b.state
	desc, ok := s.Registry.Entity(name)
	if !ok {
		return nil, fmt.Errorf("entity %s missing from schema", name)
	}

	gateway := crud.NewHTTPGateway[T](desc, b.gateway)
	service := crud.NewService[T](desc, gateway, nil, crud.ServiceConfig{
		DefaultQuery: crud.ListQuery{
			Page:      0,
			Size:      s.Config.ListPageSize,
			Sort:      strings.Join(s.Config.ListSort, ","),
			Eagerload: desc.Eagerload,
		},
		Validator: b.validator,
		Logger:    s.logger.Named("crud"),
	})
	s.Resolver.Register(service)

	storeLogger := s.logger.Named("store").With("entity", desc.Name)
	service.Store().Subscribe(func(st store.State[T]) {
		if st.ErrorMessage != "" {
			storeLogger.Debug("store failed", "error", st.ErrorMessage)
			return
		}
		storeLogger.Debug("store changed",
			"loading", st.Loading,
			"updating", st.Updating,
			"update_success", st.UpdateSuccess,
			"total_items", st.TotalItems,
			"loaded", len(st.Entities),
		)
	})

	s.entities[desc.Name] = &handle[T]{state: s, service: service}
	return service, nil
}

// Screen builds a fresh controller for one of the state's services.
func Screen[T entity.Record](s *State, service *crud.Service[T]) *screen.Screen[T] {
	return screen.New[T](service, screen.Config{
		Binder:   s.Binder,
		Preparer: s.Resolver,
		Navigate: s.navigate,
		Logger:   s.logger.Named("screen"),
	})
}
