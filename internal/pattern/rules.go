package pattern

// builtinRules returns the default recognizer table, highest priority first.
//
// Ordering matters and mirrors the interceptor's routing contract: action
// lines are recognized before step boundaries, boundaries before thoughts,
// and the catch-all thought glyphs come last so they cannot shadow more
// specific rules. Step-completion markers precede step-start markers because
// "Step 3 completed" would otherwise match the start expression.
func builtinRules() []*Rule {
	return []*Rule{
		// Actions
		mustCompile("action", KindAction, "",
			`^(?:⚡\s*)?Action:\s*(.+)$`, 0, 1, 0),
		mustCompile("action_result", KindThought, "result",
			`^Result:\s*(.+)$`, 0, 1, 0),

		// Step boundaries
		mustCompile("step_complete", KindStepEnd, "",
			`^(?:✅\s*)?Step\s+(\d+)\s+completed?\b`, 1, 0, 0),
		mustCompile("z2b_step_complete", KindStepEnd, "",
			`^Z2B Step\s+(\d+)\s+completed?\b`, 1, 0, 0),
		mustCompile("step_begin", KindStepStart, "",
			`^Begin Step\s+(\d+)\b`, 1, 0, 0),
		mustCompile("z2b_step", KindStepStart, "",
			`^Z2B Step\s+(\d+)\b`, 1, 0, 0),
		mustCompile("step_marker", KindStepStart, "",
			`^(?:📍\s*)?Step\s+(\d+)\s*(?:start|[:\-]|$)`, 1, 0, 0),

		// Evaluations
		mustCompile("eval_glyph", KindThought, "evaluation",
			`^(👍|👎|🤷|⚠️|⚠)\s*Eval:\s*(.+)$`, 0, 2, 1),
		mustCompile("eval", KindThought, "evaluation",
			`^Eval(?:uation)?:\s*(.+)$`, 0, 1, 0),
		mustCompile("eval_status", KindThought, "evaluation",
			`^(Success|Failure|Uncertain)\s*-\s*(.+)$`, 0, 2, 1),

		// Memory
		mustCompile("memory", KindThought, "memory",
			`^(?:🧠\s*)?Memory:\s*(.+)$`, 0, 1, 0),
		mustCompile("memory_content", KindThought, "memory",
			`^I remember that\s+(.+)$`, 0, 1, 0),

		// Goals
		mustCompile("next_goal", KindThought, "next_goal",
			`^(?:🎯\s*)?Next goal:\s*(.+)$`, 0, 1, 0),
		mustCompile("goal_current", KindThought, "next_goal",
			`^Current goal:\s*(.+)$`, 0, 1, 0),

		// Screenshots
		mustCompile("screenshot", KindScreenshot, "",
			`^(?:📸\s*)?Screenshot(?:\s+captured)?(?::\s*(.+))?$`, 0, 1, 0),

		// LLM usage
		mustCompile("llm_request", KindLLMRequest, "",
			`^LLM Request:\s*model=([^,]+),.*tokens=(\d+)`, 0, 0, 0),
		mustCompile("llm_request_alt", KindLLMRequest, "",
			`^Sending request to (.+?) with (\d+) tokens`, 0, 0, 0),
		mustCompile("llm_response", KindLLMResponse, "",
			`^LLM Response:\s*model=([^,]+),.*tokens=(\d+)`, 0, 0, 0),
		mustCompile("llm_response_alt", KindLLMResponse, "",
			`^Received response from (.+?) with (\d+) tokens`, 0, 0, 0),
		mustCompile("llm_cost", KindLLMCost, "",
			`^(?:Estimated cost|Cost):\s*\$([\d.]+)`, 0, 1, 0),

		// Generic thoughts, last so they cannot shadow anything above.
		mustCompile("thinking", KindThought, "thought",
			`^Thinking:\s*(.+)$`, 0, 1, 0),
		mustCompile("thought_label", KindThought, "thought",
			`^Thought:\s*(.+)$`, 0, 1, 0),
		mustCompile("thought_glyph", KindThought, "thought",
			`^(?:🛠️|💭)\s*(.+)$`, 0, 1, 0),
	}
}
