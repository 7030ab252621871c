package apitest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/tournament-admin/internal/schema"
)

// Record is one stored row in wire shape.
type Record map[string]any

// collectionRepository keeps one entity's rows in memory.
type collectionRepository struct {
	desc schema.Descriptor

	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Record
}

func newCollectionRepository(desc schema.Descriptor) *collectionRepository {
	return &collectionRepository{
		desc:   desc,
		nextID: 1,
		rows:   make(map[int64]Record),
	}
}

func (r *collectionRepository) insert(row Record) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(row)
	stored["id"] = r.nextID
	r.rows[r.nextID] = stored
	r.nextID++
	return clone(stored)
}

func (r *collectionRepository) get(id int64) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, false
	}
	return clone(row), true
}

func (r *collectionRepository) replace(id int64, row Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return false
	}
	stored := clone(row)
	stored["id"] = id
	r.rows[id] = stored
	return true
}

// merge applies a merge patch: null removes a key, anything else overwrites it.
func (r *collectionRepository) merge(id int64, patch Record) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, false
	}
	for key, value := range patch {
		if key == "id" {
			continue
		}
		if value == nil {
			delete(row, key)
			continue
		}
		row[key] = value
	}
	return clone(row), true
}

func (r *collectionRepository) delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
}

// list returns rows sorted by "field,dir" (id ascending when empty).
func (r *collectionRepository) list(sortSpec string) []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, clone(row))
	}
	r.mu.RUnlock()

	field, desc := "id", false
	if sortSpec = strings.TrimSpace(sortSpec); sortSpec != "" {
		parts := strings.SplitN(sortSpec, ",", 2)
		field = strings.TrimSpace(parts[0])
		desc = len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
	}

	sort.SliceStable(out, func(i, j int) bool {
		less := compare(out[i][field], out[j][field])
		if less == 0 {
			less = compare(out[i]["id"], out[j]["id"])
		}
		if desc {
			return less > 0
		}
		return less < 0
	})
	return out
}

func compare(left, right any) int {
	li, lok := toInt64(left)
	ri, rok := toInt64(right)
	if lok && rok {
		switch {
		case li < ri:
			return -1
		case li > ri:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(left), fmt.Sprint(right))
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), v == float64(int64(v))
	case json.Number:
		parsed, err := v.Int64()
		return parsed, err == nil
	default:
		return 0, false
	}
}

func clone(row Record) Record {
	out := make(Record, len(row))
	for key, value := range row {
		out[key] = value
	}
	return out
}
