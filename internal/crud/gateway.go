package crud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
	"github.com/riskibarqy/tournament-admin/internal/schema"
	"github.com/valyala/bytebufferpool"
)

const (
	HeaderTotalCount      = "X-Total-Count"
	ContentTypeJSON       = "application/json"
	ContentTypeMergePatch = "application/merge-patch+json"

	maxResponseBytes = 6 << 20
)

// Gateway maps CRUD intents for one entity to single backend calls.
type Gateway[T entity.Record] interface {
	List(ctx context.Context, query ListQuery) (Page[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	// PartialUpdate sends record as a merge patch; each cleared field is
	// sent as an explicit null.
	PartialUpdate(ctx context.Context, record T, cleared []string) (T, error)
	Delete(ctx context.Context, id int64) error
}

type GatewayConfig struct {
	HTTPClient  *http.Client
	BaseURL     string
	BearerToken string
	Clock       clockwork.Clock
	Logger      *logging.Logger
}

// HTTPGateway talks to the REST collection described by a schema descriptor.
// It never retries.
type HTTPGateway[T entity.Record] struct {
	desc        schema.Descriptor
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	clock       clockwork.Clock
	logger      *logging.Logger
}

func NewHTTPGateway[T entity.Record](desc schema.Descriptor, cfg GatewayConfig) *HTTPGateway[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &HTTPGateway[T]{
		desc:        desc,
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		bearerToken: strings.TrimSpace(cfg.BearerToken),
		clock:       clock,
		logger:      logger.With("entity", desc.Name),
	}
}

func (g *HTTPGateway[T]) Descriptor() schema.Descriptor {
	return g.desc
}

func (g *HTTPGateway[T]) List(ctx context.Context, query ListQuery) (Page[T], error) {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.List")
	defer span.End()

	path := g.collectionPath() + "?" + query.Values(g.clock.Now()).Encode()

	var items []T
	header, err := g.do(ctx, http.MethodGet, path, "", nil, &items, false)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}

	total := int64(len(items))
	if raw := strings.TrimSpace(header.Get(HeaderTotalCount)); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			g.logger.WarnContext(ctx, "ignore malformed total count header", "value", raw, "error", err)
		} else {
			total = parsed
		}
	}

	return Page[T]{Items: items, Total: total}, nil
}

func (g *HTTPGateway[T]) Get(ctx context.Context, id int64) (T, error) {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.Get")
	defer span.End()

	var out T
	if _, err := g.do(ctx, http.MethodGet, g.recordPath(id), "", nil, &out, true); err != nil {
		return out, err
	}
	return out, nil
}

func (g *HTTPGateway[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.Create")
	defer span.End()

	return g.write(ctx, http.MethodPost, g.collectionPath(), ContentTypeJSON, record)
}

func (g *HTTPGateway[T]) Update(ctx context.Context, record T) (T, error) {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.Update")
	defer span.End()

	return g.write(ctx, http.MethodPut, g.recordPath(record.GetID()), ContentTypeJSON, record)
}

func (g *HTTPGateway[T]) PartialUpdate(ctx context.Context, record T, cleared []string) (T, error) {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.PartialUpdate")
	defer span.End()

	var out T
	payload, err := WritePayload(g.desc, record)
	if err != nil {
		return out, err
	}
	for _, name := range cleared {
		payload[name] = nil
	}
	return g.send(ctx, http.MethodPatch, g.recordPath(record.GetID()), ContentTypeMergePatch, payload)
}

func (g *HTTPGateway[T]) Delete(ctx context.Context, id int64) error {
	ctx, span := startSpan(ctx, "crud.HTTPGateway.Delete")
	defer span.End()

	_, err := g.do(ctx, http.MethodDelete, g.recordPath(id), "", nil, nil, false)
	return err
}

func (g *HTTPGateway[T]) write(ctx context.Context, method, path, contentType string, record T) (T, error) {
	payload, err := WritePayload(g.desc, record)
	if err != nil {
		var out T
		return out, err
	}
	return g.send(ctx, method, path, contentType, payload)
}

func (g *HTTPGateway[T]) send(ctx context.Context, method, path, contentType string, payload map[string]any) (T, error) {
	var out T
	body, err := wireAPI.Marshal(payload)
	if err != nil {
		return out, crerr.Wrapf(err, "encode %s payload", g.desc.Name)
	}

	if _, err := g.do(ctx, method, path, contentType, body, &out, false); err != nil {
		return out, err
	}
	return out, nil
}

func (g *HTTPGateway[T]) do(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	body []byte,
	target any,
	notFoundAware bool,
) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+"/"+path, reader)
	if err != nil {
		return nil, crerr.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Accept", ContentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if g.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.bearerToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.WarnContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: read %s %s response: %w", ErrNetwork, method, path, err)
	}
	if buf.Len() > maxResponseBytes {
		g.logger.WarnContext(ctx, "backend response exceeds limit", "method", method, "path", stripQuery(path), "limit", maxResponseBytes)
		return nil, fmt.Errorf("%w: %s %s response too large (over %d bytes)", ErrServer, method, stripQuery(path), maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := ErrServer
		if notFoundAware && resp.StatusCode == http.StatusNotFound {
			kind = ErrNotFound
		}
		httpErr := &HTTPError{
			Method:     method,
			Path:       stripQuery(path),
			StatusCode: resp.StatusCode,
			Body:       abbreviateBody(buf.B),
			kind:       kind,
		}
		g.logger.WarnContext(ctx, "backend returned failure status", "method", method, "path", httpErr.Path, "status", resp.StatusCode)
		return nil, httpErr
	}

	if target != nil && len(bytes.TrimSpace(buf.B)) > 0 {
		if err := wireAPI.Unmarshal(buf.B, target); err != nil {
			return nil, fmt.Errorf("%w: decode %s %s response: %v", ErrServer, method, stripQuery(path), err)
		}
	}

	return resp.Header, nil
}

func (g *HTTPGateway[T]) collectionPath() string {
	return strings.Trim(g.desc.Resource, "/")
}

func (g *HTTPGateway[T]) recordPath(id int64) string {
	return g.collectionPath() + "/" + strconv.FormatInt(id, 10)
}

func stripQuery(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		return path[:idx]
	}
	return path
}
