package crud

import (
	"fmt"
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

// wireAPI keeps integer identifiers exact when records pass through maps and
// copies strings out of pooled response buffers.
var wireAPI = sonic.Config{
	UseInt64:    true,
	SortMapKeys: true,
	CopyString:  true,
}.Froze()

// WritePayload renders record in its write shape: relation fields are
// flattened to {id} stubs and unset optional fields are left out.
func WritePayload(desc schema.Descriptor, record any) (map[string]any, error) {
	payload, err := toMap(record)
	if err != nil {
		return nil, err
	}

	for _, rel := range desc.Relations {
		value, ok := payload[rel.Name]
		if !ok {
			continue
		}
		switch rel.Cardinality {
		case schema.One:
			stub, ok := stubOf(value)
			if !ok {
				delete(payload, rel.Name)
				continue
			}
			payload[rel.Name] = stub
		case schema.Many:
			items, _ := value.([]any)
			stubs := make([]any, 0, len(items))
			for _, item := range items {
				if stub, ok := stubOf(item); ok {
					stubs = append(stubs, stub)
				}
			}
			payload[rel.Name] = stubs
		}
	}

	return payload, nil
}

func toMap(record any) (map[string]any, error) {
	raw, err := wireAPI.Marshal(record)
	if err != nil {
		return nil, crerr.Wrapf(err, "encode %T", record)
	}
	payload := make(map[string]any)
	if err := wireAPI.Unmarshal(raw, &payload); err != nil {
		return nil, crerr.Wrapf(err, "decode %T into map", record)
	}
	return payload, nil
}

func stubOf(value any) (map[string]any, bool) {
	object, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	id, ok := object["id"]
	if !ok || id == nil {
		return nil, false
	}
	return map[string]any{"id": id}, true
}

// labelOf reads the display label of record for dropdown options.
func labelOf(record any, field string) string {
	payload, err := toMap(record)
	if err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
