package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/tournament-admin/internal/schema"
)

type Mode string

const (
	ModeList   Mode = "list"
	ModeCreate Mode = "new"
	ModeDetail Mode = "detail"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// Route is a parsed entity screen path such as /camp/5/edit.
type Route struct {
	Entity string
	Mode   Mode
	ID     int64
}

func ListPath(desc schema.Descriptor) string {
	return "/" + desc.Route
}

func NewPath(desc schema.Descriptor) string {
	return ListPath(desc) + "/new"
}

func DetailPath(desc schema.Descriptor, id int64) string {
	return ListPath(desc) + "/" + strconv.FormatInt(id, 10)
}

func EditPath(desc schema.Descriptor, id int64) string {
	return DetailPath(desc, id) + "/edit"
}

func DeletePath(desc schema.Descriptor, id int64) string {
	return DetailPath(desc, id) + "/delete"
}

// ParseRoute resolves path against the registry's entity routes.
func ParseRoute(registry *schema.Registry, path string) (Route, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return Route{}, fmt.Errorf("empty route")
	}
	desc, ok := registry.ByRoute(parts[0])
	if !ok {
		return Route{}, fmt.Errorf("unknown entity route %q", parts[0])
	}

	route := Route{Entity: desc.Name, Mode: ModeList}
	switch len(parts) {
	case 1:
		return route, nil
	case 2:
		if parts[1] == "new" {
			route.Mode = ModeCreate
			return route, nil
		}
		route.Mode = ModeDetail
	case 3:
		switch parts[2] {
		case "edit":
			route.Mode = ModeEdit
		case "delete":
			route.Mode = ModeDelete
		default:
			return Route{}, fmt.Errorf("unknown action %q in route %q", parts[2], path)
		}
	default:
		return Route{}, fmt.Errorf("malformed route %q", path)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return Route{}, fmt.Errorf("invalid id %q in route %q", parts[1], path)
	}
	route.ID = id
	return route, nil
}
