package timeline

import "sort"

// Flatten converts the internal per-step map into the externally exposed
// list, sorted ascending by step number. It is computed at read time so the
// external contract can never diverge from storage, and it is the only place
// the map-to-list conversion happens.
func (m *Model) Flatten() []StepRecord {
	out := make([]StepRecord, 0, len(m.steps))
	for _, rec := range m.steps {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Number < out[j].Number
	})
	return out
}
