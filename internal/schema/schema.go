package schema

import (
	_ "embed"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed entities.yaml
var embeddedEntities []byte

type FieldKind string

const (
	KindString    FieldKind = "string"
	KindEnum      FieldKind = "enum"
	KindInstant   FieldKind = "instant"
	KindLocalDate FieldKind = "localDate"
	KindUID       FieldKind = "uid"
)

type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

type Field struct {
	Name      string    `yaml:"name"`
	Kind      FieldKind `yaml:"kind"`
	Required  bool      `yaml:"required"`
	MaxLength int       `yaml:"maxLength"`
	Enum      string    `yaml:"enum"`
}

// Relation is a foreign-key field pointing at another entity's collection.
type Relation struct {
	Name        string      `yaml:"name"`
	Target      string      `yaml:"target"`
	Cardinality Cardinality `yaml:"cardinality"`
	Required    bool        `yaml:"required"`
	// Label is the target field shown in dropdowns.
	Label string `yaml:"label"`
}

type Enum struct {
	Name     string   `yaml:"name"`
	Members  []string `yaml:"members"`
	Fallback string   `yaml:"fallback"`
}

func (e Enum) Has(value string) bool {
	for _, member := range e.Members {
		if member == value {
			return true
		}
	}
	return false
}

// Descriptor drives the generic store, gateway and form for one entity.
type Descriptor struct {
	Name      string     `yaml:"name"`
	Resource  string     `yaml:"resource"`
	Route     string     `yaml:"route"`
	Eagerload bool       `yaml:"eagerload"`
	Fields    []Field    `yaml:"fields"`
	Relations []Relation `yaml:"relations"`
}

func (d Descriptor) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (d Descriptor) Relation(name string) (Relation, bool) {
	for _, rel := range d.Relations {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}

type document struct {
	Enums    []Enum       `yaml:"enums"`
	Entities []Descriptor `yaml:"entities"`
}

// Registry is the immutable set of descriptors known to the client.
type Registry struct {
	order    []string
	entities map[string]Descriptor
	enums    map[string]Enum
}

// Load parses the descriptors compiled into the binary.
func Load() (*Registry, error) {
	return Parse(embeddedEntities)
}

func MustLoad() *Registry {
	registry, err := Load()
	if err != nil {
		panic(err)
	}
	return registry
}

func Parse(raw []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Wrap(err, "parse entity descriptors")
	}

	registry := &Registry{
		order:    make([]string, 0, len(doc.Entities)),
		entities: make(map[string]Descriptor, len(doc.Entities)),
		enums:    make(map[string]Enum, len(doc.Enums)),
	}
	for _, enum := range doc.Enums {
		if len(enum.Members) == 0 {
			return nil, crerr.Newf("enum %s has no members", enum.Name)
		}
		if enum.Fallback != "" && !enum.Has(enum.Fallback) {
			return nil, crerr.Newf("enum %s fallback %q is not a member", enum.Name, enum.Fallback)
		}
		registry.enums[enum.Name] = enum
	}
	for _, desc := range doc.Entities {
		if strings.TrimSpace(desc.Name) == "" || strings.TrimSpace(desc.Resource) == "" {
			return nil, crerr.New("entity descriptor requires name and resource")
		}
		if _, exists := registry.entities[desc.Name]; exists {
			return nil, crerr.Newf("duplicate entity descriptor %s", desc.Name)
		}
		if desc.Route == "" {
			desc.Route = strings.ToLower(desc.Name)
		}
		registry.order = append(registry.order, desc.Name)
		registry.entities[desc.Name] = desc
	}

	if err := registry.validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *Registry) validate() error {
	for _, name := range r.order {
		desc := r.entities[name]
		for _, field := range desc.Fields {
			switch field.Kind {
			case KindString, KindInstant, KindLocalDate, KindUID:
			case KindEnum:
				if _, ok := r.enums[field.Enum]; !ok {
					return fmt.Errorf("%s.%s references unknown enum %q", name, field.Name, field.Enum)
				}
			default:
				return fmt.Errorf("%s.%s has unsupported kind %q", name, field.Name, field.Kind)
			}
		}
		for _, rel := range desc.Relations {
			if _, ok := r.entities[rel.Target]; !ok {
				return fmt.Errorf("%s.%s targets unknown entity %q", name, rel.Name, rel.Target)
			}
			if rel.Cardinality != One && rel.Cardinality != Many {
				return fmt.Errorf("%s.%s has unsupported cardinality %q", name, rel.Name, rel.Cardinality)
			}
		}
	}
	return nil
}

func (r *Registry) Entity(name string) (Descriptor, bool) {
	desc, ok := r.entities[name]
	return desc, ok
}

func (r *Registry) MustEntity(name string) Descriptor {
	desc, ok := r.entities[name]
	if !ok {
		panic(fmt.Sprintf("schema: unknown entity %q", name))
	}
	return desc
}

// Entities returns descriptors in declaration order.
func (r *Registry) Entities() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entities[name])
	}
	return out
}

func (r *Registry) Enum(name string) (Enum, bool) {
	enum, ok := r.enums[name]
	return enum, ok
}

// ByRoute finds the entity served under the given route segment.
func (r *Registry) ByRoute(route string) (Descriptor, bool) {
	route = strings.Trim(strings.TrimSpace(route), "/")
	for _, name := range r.order {
		desc := r.entities[name]
		if desc.Route == route || strings.EqualFold(desc.Name, route) {
			return desc, true
		}
	}
	return Descriptor{}, false
}
