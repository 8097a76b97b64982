package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict()

	assert.Equal(t, 0, v.BestIndex)
	assert.False(t, v.PromptWasDecisive)
	assert.Equal(t, DefaultVerdictReasoning, v.Reasoning)
	assert.NotNil(t, v.Improvements)
	assert.Empty(t, v.Improvements)
	assert.NotNil(t, v.Suggestions)
	assert.Empty(t, v.Suggestions)
}

func TestRoundRecordBestResult(t *testing.T) {
	results := []VariantResult{
		{VariantName: "direct", OutputText: "alpha", Succeeded: true},
		{VariantName: "step-by-step", OutputText: "beta", Succeeded: true},
		{VariantName: "expert-persona", OutputText: "gamma", Succeeded: false},
	}

	tests := []struct {
		name      string
		bestIndex int
		wantName  string
	}{
		{name: "valid index", bestIndex: 1, wantName: "step-by-step"},
		{name: "first result", bestIndex: 0, wantName: "direct"},
		{name: "last result", bestIndex: 2, wantName: "expert-persona"},
		{name: "negative index falls back to first", bestIndex: -1, wantName: "direct"},
		{name: "index past end falls back to first", bestIndex: 3, wantName: "direct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RoundRecord{
				Round:   1,
				Results: results,
				Verdict: Verdict{BestIndex: tt.bestIndex},
			}
			assert.Equal(t, tt.wantName, rec.BestResult().VariantName)
		})
	}

	t.Run("empty results yield zero value", func(t *testing.T) {
		rec := RoundRecord{Round: 1, Verdict: Verdict{BestIndex: 0}}
		assert.Equal(t, VariantResult{}, rec.BestResult())
	})
}
