package timeline

// StepsSummary aggregates per-step statistics for the whole trace.
type StepsSummary struct {
	TotalSteps           int         `json:"total_steps"`
	CompleteSteps        int         `json:"complete_steps"`
	ImplicitSteps        int         `json:"implicit_steps"`
	CompletionRate       float64     `json:"completion_rate"`
	SuccessCount         int         `json:"success_count"`
	FailureCount         int         `json:"failure_count"`
	SuccessRatio         float64     `json:"success_ratio"`
	TotalDurationSeconds float64     `json:"total_duration_seconds"`
	AvgDurationSeconds   float64     `json:"avg_duration_seconds"`
	ActionsPerStep       map[int]int `json:"actions_per_step"`
}

// SummarizeSteps computes step statistics on demand from the model.
func (m *Model) SummarizeSteps() StepsSummary {
	sum := StepsSummary{ActionsPerStep: make(map[int]int)}

	var evaluated, durations int
	for _, rec := range m.Flatten() {
		sum.TotalSteps++
		if rec.Complete {
			sum.CompleteSteps++
		}
		if rec.InitializedImplicitly {
			sum.ImplicitSteps++
		}
		switch rec.Outcome {
		case OutcomeSuccess:
			sum.SuccessCount++
			evaluated++
		case OutcomeFailure:
			sum.FailureCount++
			evaluated++
		}
		if rec.DurationSeconds > 0 {
			sum.TotalDurationSeconds += rec.DurationSeconds
			durations++
		}
		sum.ActionsPerStep[rec.Number] = len(rec.Actions)
	}

	if sum.TotalSteps > 0 {
		sum.CompletionRate = float64(sum.CompleteSteps) / float64(sum.TotalSteps)
	}
	if evaluated > 0 {
		sum.SuccessRatio = float64(sum.SuccessCount) / float64(evaluated)
	}
	if durations > 0 {
		sum.AvgDurationSeconds = sum.TotalDurationSeconds / float64(durations)
	}
	return sum
}
