package export

import (
	"encoding/json"
	"fmt"

	"github.com/retracehq/retrace/internal/timeline"
)

// Sanitize returns a copy of v in which every value that cannot be JSON
// encoded is coerced to its string form. Event metadata is the usual
// offender: hosts attach arbitrary values when emitting standalone events.
func Sanitize(v any) any {
	switch val := v.(type) {
	case *TimelineDocument:
		if val == nil {
			return val
		}
		out := *val
		out.Events = sanitizeEvents(val.Events)
		return &out
	case []timeline.Event:
		return sanitizeEvents(val)
	case map[string]any:
		return sanitizeMap(val)
	default:
		return sanitizeValue(v)
	}
}

func sanitizeEvents(events []timeline.Event) []timeline.Event {
	if events == nil {
		return nil
	}
	out := make([]timeline.Event, len(events))
	for i, e := range events {
		out[i] = e
		if e.Metadata != nil {
			out[i].Metadata = sanitizeMap(e.Metadata)
		}
	}
	return out
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = sanitizeValue(v)
	}
	return out
}

// sanitizeValue keeps encodable values as-is and stringifies the rest.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return val
	case map[string]any:
		return sanitizeMap(val)
	case []any:
		return sanitizeSlice(val)
	default:
		if _, err := json.Marshal(v); err == nil {
			return v
		}
		return fmt.Sprint(v)
	}
}
