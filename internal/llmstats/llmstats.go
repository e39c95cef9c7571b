// Package llmstats aggregates LLM usage recovered from agent log lines:
// request/response token counts and cost estimates, totaled and broken down
// per model.
package llmstats

// ModelStats holds per-model usage counters.
type ModelStats struct {
	Requests  int     `json:"requests"`
	Responses int     `json:"responses"`
	Tokens    int     `json:"tokens"`
	Cost      float64 `json:"cost"`
}

// Stats is the running aggregate. It is not safe for concurrent use; the
// owning session serializes access.
type Stats struct {
	TotalCalls    int                    `json:"total_calls"`
	TotalTokens   int                    `json:"total_tokens"`
	EstimatedCost float64                `json:"estimated_cost"`
	Models        map[string]*ModelStats `json:"models"`
}

// New returns an empty aggregate.
func New() *Stats {
	return &Stats{Models: make(map[string]*ModelStats)}
}

// RecordRequest adds one request with its prompt token count.
func (s *Stats) RecordRequest(model string, tokens int) {
	s.TotalCalls++
	s.TotalTokens += tokens
	ms := s.model(model)
	ms.Requests++
	ms.Tokens += tokens
}

// RecordResponse adds one response with its completion token count.
func (s *Stats) RecordResponse(model string, tokens int) {
	s.TotalCalls++
	s.TotalTokens += tokens
	ms := s.model(model)
	ms.Responses++
	ms.Tokens += tokens
}

// RecordCost adds a cost estimate. An empty model attributes the cost only
// to the total.
func (s *Stats) RecordCost(model string, cost float64) {
	s.EstimatedCost += cost
	if model != "" {
		s.model(model).Cost += cost
	}
}

// Snapshot returns a deep copy safe to read outside the owner's lock while
// recording continues.
func (s *Stats) Snapshot() *Stats {
	out := &Stats{
		TotalCalls:    s.TotalCalls,
		TotalTokens:   s.TotalTokens,
		EstimatedCost: s.EstimatedCost,
		Models:        make(map[string]*ModelStats, len(s.Models)),
	}
	for name, ms := range s.Models {
		copied := *ms
		out.Models[name] = &copied
	}
	return out
}

// Empty reports whether nothing was recorded.
func (s *Stats) Empty() bool {
	return s.TotalCalls == 0 && s.EstimatedCost == 0
}

func (s *Stats) model(name string) *ModelStats {
	if name == "" {
		name = "unknown"
	}
	ms, ok := s.Models[name]
	if !ok {
		ms = &ModelStats{}
		s.Models[name] = ms
	}
	return ms
}
