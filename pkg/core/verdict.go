package core

// DefaultVerdictReasoning is the reasoning carried by the fallback verdict
// substituted when the judge's reply cannot be used.
const DefaultVerdictReasoning = "judge reply was unusable; defaulting to the first result"

// Verdict is the judge's structured decision for one round. BestIndex is
// validated against the population before a verdict is accepted; consumers
// may still defend against a stale index via RoundRecord.BestResult.
type Verdict struct {
	// BestIndex is the position of the winning result in the round's
	// population order.
	BestIndex int `json:"best_index"`
	// Reasoning is the judge's free-text justification.
	Reasoning string `json:"reasoning"`
	// PromptWasDecisive reports whether the win is attributable to prompt
	// phrasing rather than chance. Evolution only runs on decisive rounds.
	PromptWasDecisive bool `json:"prompt_was_decisive"`
	// Improvements are phrasing qualities the judge identified in the winner.
	Improvements []string `json:"improvements"`
	// Suggestions are the judge's ideas for the next round's prompts.
	Suggestions []string `json:"suggestions"`
}

// DefaultVerdict is the documented fallback used whenever the judge
// invocation fails, its reply holds no JSON object, decoding fails, or the
// decoded index is out of range: first result wins, not decisive, nothing
// learned. Every fallback path produces exactly this value.
func DefaultVerdict() Verdict {
	return Verdict{
		BestIndex:         0,
		Reasoning:         DefaultVerdictReasoning,
		PromptWasDecisive: false,
		Improvements:      []string{},
		Suggestions:       []string{},
	}
}

// RoundRecord is the append-only record of one completed round.
type RoundRecord struct {
	// Round is 1-based.
	Round   int             `json:"round"`
	Results []VariantResult `json:"results"`
	Verdict Verdict         `json:"verdict"`
}

// BestResult returns the winning result for the round. An index outside the
// results slice falls back to the first result, the same fallback the judge
// applies at parse time.
func (r RoundRecord) BestResult() VariantResult {
	if len(r.Results) == 0 {
		return VariantResult{}
	}
	if r.Verdict.BestIndex < 0 || r.Verdict.BestIndex >= len(r.Results) {
		return r.Results[0]
	}
	return r.Results[r.Verdict.BestIndex]
}
