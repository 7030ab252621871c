package form

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/domain/entity"
	"github.com/riskibarqy/tournament-admin/internal/platform/id"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

// DisplayDateTimeLayout is how instants appear in form inputs (local time).
const DisplayDateTimeLayout = "2006-01-02T15:04"

var formAPI = sonic.Config{UseInt64: true, CopyString: true}.Froze()

// Lookup turns selected identifiers into relation values: the full record
// for a single reference and {id} stubs for a many reference.
type Lookup interface {
	Find(target string, id int64) (any, bool)
	Stubs(ids []int64) []entity.Ref
}

// stubsOnly is used when no collections are loaded: single references never
// resolve and many references still become stubs.
type stubsOnly struct{}

func (stubsOnly) Find(string, int64) (any, bool) { return nil, false }

func (stubsOnly) Stubs(ids []int64) []entity.Ref { return entity.Stubs(ids) }

type Config struct {
	Clock    clockwork.Clock
	Location *time.Location
	IDs      id.Generator
}

// Binder converts between form values and an entity's wire representation.
type Binder struct {
	registry *schema.Registry
	lookup   Lookup
	clock    clockwork.Clock
	location *time.Location
	ids      id.Generator
}

func NewBinder(registry *schema.Registry, lookup Lookup, cfg Config) *Binder {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if lookup == nil {
		lookup = stubsOnly{}
	}
	return &Binder{
		registry: registry,
		lookup:   lookup,
		clock:    clock,
		location: location,
		ids:      ids,
	}
}

// DefaultDateTime is the start of the current local day in display format.
func (b *Binder) DefaultDateTime() string {
	now := b.clock.Now().In(b.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.location)
	return start.Format(DisplayDateTimeLayout)
}

// Defaults returns the initial form values. A nil record means a new draft.
// Enum fields without a value get their enum's fallback member; stored
// values are never replaced.
func (b *Binder) Defaults(desc schema.Descriptor, record any) (url.Values, error) {
	values := url.Values{}
	if record == nil {
		for _, field := range desc.Fields {
			switch field.Kind {
			case schema.KindInstant:
				values.Set(field.Name, b.DefaultDateTime())
			case schema.KindUID:
				uid, err := b.ids.NewID()
				if err != nil {
					return nil, err
				}
				values.Set(field.Name, uid)
			case schema.KindEnum:
				if fallback := b.fallback(field); fallback != "" {
					values.Set(field.Name, fallback)
				}
			}
		}
		return values, nil
	}

	stored, err := toMap(record)
	if err != nil {
		return nil, err
	}
	if idValue, ok := stored["id"]; ok && idValue != nil {
		values.Set("id", scalarString(idValue))
	}

	for _, field := range desc.Fields {
		raw, ok := stored[field.Name]
		text := ""
		if ok && raw != nil {
			text = scalarString(raw)
		}

		switch field.Kind {
		case schema.KindEnum:
			if text == "" {
				text = b.fallback(field)
			}
		case schema.KindInstant:
			if text != "" {
				text, err = b.instantToDisplay(text)
				if err != nil {
					return nil, crerr.Wrapf(err, "%s.%s", desc.Name, field.Name)
				}
			}
		}
		if text != "" {
			values.Set(field.Name, text)
		}
	}

	for _, rel := range desc.Relations {
		raw, ok := stored[rel.Name]
		if !ok || raw == nil {
			continue
		}
		switch rel.Cardinality {
		case schema.One:
			if object, ok := raw.(map[string]any); ok && object["id"] != nil {
				values.Set(rel.Name, scalarString(object["id"]))
			}
		case schema.Many:
			items, _ := raw.([]any)
			for _, item := range items {
				if object, ok := item.(map[string]any); ok && object["id"] != nil {
					values.Add(rel.Name, scalarString(object["id"]))
				}
			}
		}
	}

	return values, nil
}

// Payload maps submitted form values to the write representation. Blank
// optional inputs are left out; selected single references are replaced by
// the full record and multi references by {id} stubs in selection order.
func (b *Binder) Payload(desc schema.Descriptor, values url.Values) (map[string]any, error) {
	payload := make(map[string]any, len(desc.Fields)+len(desc.Relations)+1)
	violations := make([]crud.FieldViolation, 0)

	if raw := strings.TrimSpace(values.Get("id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			violations = append(violations, crud.FieldViolation{Field: "id", Rule: "number"})
		} else {
			payload["id"] = parsed
		}
	}

	for _, field := range desc.Fields {
		raw := values.Get(field.Name)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		switch field.Kind {
		case schema.KindEnum:
			enum, _ := b.registry.Enum(field.Enum)
			member := strings.TrimSpace(raw)
			if !enum.Has(member) {
				violations = append(violations, crud.FieldViolation{
					Field: field.Name,
					Rule:  "oneof",
					Param: strings.Join(enum.Members, " "),
				})
				continue
			}
			payload[field.Name] = member
		case schema.KindInstant:
			instant, err := b.displayToInstant(raw)
			if err != nil {
				violations = append(violations, crud.FieldViolation{Field: field.Name, Rule: "datetime", Param: DisplayDateTimeLayout})
				continue
			}
			payload[field.Name] = instant
		case schema.KindLocalDate:
			date, err := entity.ParseLocalDate(raw)
			if err != nil {
				violations = append(violations, crud.FieldViolation{Field: field.Name, Rule: "date", Param: entity.LocalDateLayout})
				continue
			}
			payload[field.Name] = date.String()
		default:
			payload[field.Name] = raw
		}
	}

	for _, rel := range desc.Relations {
		ids, err := parseIDs(values[rel.Name])
		if err != nil {
			violations = append(violations, crud.FieldViolation{Field: rel.Name, Rule: "number"})
			continue
		}
		if len(ids) == 0 {
			continue
		}
		switch rel.Cardinality {
		case schema.One:
			if record, ok := b.lookup.Find(rel.Target, ids[0]); ok {
				payload[rel.Name] = record
			}
		case schema.Many:
			payload[rel.Name] = b.lookup.Stubs(ids)
		}
	}

	if len(violations) > 0 {
		return nil, &crud.ValidationError{Entity: desc.Name, Violations: violations}
	}
	return payload, nil
}

// Bind maps form values straight into a typed record.
func Bind[T entity.Record](b *Binder, desc schema.Descriptor, values url.Values) (T, error) {
	var out T
	payload, err := b.Payload(desc, values)
	if err != nil {
		return out, err
	}
	raw, err := formAPI.Marshal(payload)
	if err != nil {
		return out, crerr.Wrapf(err, "encode %s form payload", desc.Name)
	}
	if err := formAPI.Unmarshal(raw, &out); err != nil {
		return out, crerr.Wrapf(err, "decode %s form payload", desc.Name)
	}
	return out, nil
}

// EnumOptions lists the declared members offered for an enum field.
func (b *Binder) EnumOptions(field schema.Field) []string {
	enum, ok := b.registry.Enum(field.Enum)
	if !ok {
		return nil
	}
	out := make([]string, len(enum.Members))
	copy(out, enum.Members)
	return out
}

func (b *Binder) fallback(field schema.Field) string {
	enum, ok := b.registry.Enum(field.Enum)
	if !ok {
		return ""
	}
	return enum.Fallback
}

func (b *Binder) instantToDisplay(wire string) (string, error) {
	parsed, err := time.Parse(time.RFC3339Nano, wire)
	if err != nil {
		return "", err
	}
	return parsed.In(b.location).Format(DisplayDateTimeLayout), nil
}

func (b *Binder) displayToInstant(display string) (string, error) {
	parsed, err := time.ParseInLocation(DisplayDateTimeLayout, strings.TrimSpace(display), b.location)
	if err != nil {
		return "", err
	}
	return parsed.UTC().Format(time.RFC3339), nil
}

func parseIDs(raw []string) ([]int64, error) {
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parsed, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func toMap(record any) (map[string]any, error) {
	raw, err := formAPI.Marshal(record)
	if err != nil {
		return nil, crerr.Wrapf(err, "encode %T", record)
	}
	out := make(map[string]any)
	if err := formAPI.Unmarshal(raw, &out); err != nil {
		return nil, crerr.Wrapf(err, "decode %T", record)
	}
	return out, nil
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := formAPI.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
