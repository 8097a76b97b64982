package judge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			input:  `{"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "leading prose",
			input:  `I think result 2 is best. {"bestResultIndex":2}`,
			want:   `{"bestResultIndex":2}`,
			wantOK: true,
		},
		{
			name:   "trailing prose",
			input:  `{"a":1} hope that helps!`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "code fence",
			input:  "```json\n{\"a\": 1}\n```",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "nested objects",
			input:  `{"outer": {"inner": 2}}`,
			want:   `{"outer": {"inner": 2}}`,
			wantOK: true,
		},
		{
			name:   "brace inside string",
			input:  `{"text": "a } inside"}`,
			want:   `{"text": "a } inside"}`,
			wantOK: true,
		},
		{
			name:   "opening brace inside string",
			input:  `{"text": "a { inside"}`,
			want:   `{"text": "a { inside"}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside string",
			input:  `{"text": "he said \"}\" loudly"}`,
			want:   `{"text": "he said \"}\" loudly"}`,
			wantOK: true,
		},
		{
			name:   "first of two objects",
			input:  `{"a":1} {"b":2}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "no braces",
			input:  "no structured data here",
			wantOK: false,
		},
		{
			name:   "unbalanced",
			input:  `{"a": 1`,
			wantOK: false,
		},
		{
			name:   "close before open",
			input:  `} {"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "empty input",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractedObjectDecodes(t *testing.T) {
	reply := "Sure! Here is my analysis:\n```json\n" +
		`{"bestResultIndex": 1, "reasoning": "it cites the {source} verbatim", "wasPromptBetter": true}` +
		"\n```\nLet me know if you need more."

	raw, ok := ExtractJSONObject(reply)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, float64(1), decoded["bestResultIndex"])
}
