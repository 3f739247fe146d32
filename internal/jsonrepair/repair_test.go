package jsonrepair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairWellFormed(t *testing.T) {
	t.Parallel()

	obj, err := Repair(`{"item_name": "Chrono Trigger", "estimated_value_usd": 120.5}`)
	require.NoError(t, err)
	assert.Equal(t, "Chrono Trigger", obj["item_name"])
	assert.Equal(t, 120.5, obj["estimated_value_usd"])
}

func TestRepairStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "code fence with language tag",
			input: "```json\n{\"a\": 1}\n```",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "bare code fence",
			input: "```\n{\"a\": 1}\n```",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "control characters",
			input: "{\"a\": \x01\x02 1}",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "trailing comma in object",
			input: `{"a": 1,}`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "trailing comma in array",
			input: `{"a": [1, 2,]}`,
			want:  map[string]any{"a": []any{float64(1), float64(2)}},
		},
		{
			name:  "inline comment after comma",
			input: "{\"a\": 1, // approximate\n\"b\": 2}",
			want:  map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name:  "arithmetic division",
			input: `{"estimated_value_usd": 45954.0 / 137}`,
			want:  map[string]any{"estimated_value_usd": 335.43},
		},
		{
			name:  "arithmetic with parentheses",
			input: `{"v": (10 + 5) * 2}`,
			want:  map[string]any{"v": float64(30)},
		},
		{
			name:  "truncated mid-string",
			input: `{"a": "x`,
			want:  map[string]any{"a": "x"},
		},
		{
			name:  "truncated after comma",
			input: `{"a": 1, "b": [1, 2,`,
			want:  map[string]any{"a": float64(1), "b": []any{float64(1), float64(2)}},
		},
		{
			name:  "truncated after colon",
			input: `{"a": 1, "b":`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "truncated mid-key",
			input: `{"a": 1, "b`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "prose around the object",
			input: `Here is the analysis: {"a": 1} I hope that helps!`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "unescaped quote in value",
			input: `{"item_name": "Dragon's "Lair" Special", "a": 1}`,
			want:  map[string]any{"item_name": `Dragon's "Lair" Special`, "a": float64(1)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Repair(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRepairUnrecoverable(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "not json at all", "[1, 2, 3"} {
		_, err := Repair(input)
		assert.ErrorIs(t, err, ErrUnrecoverable, "input %q", input)
	}
}

func TestRepairDoesNotTouchStrings(t *testing.T) {
	t.Parallel()

	// Slashes, commas and digits inside string values must survive every
	// normalization pass untouched.
	obj, err := Repair(`{"url": "https://example.com/a//b", "note": "2 + 2, roughly"}`)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a//b", obj["url"])
	assert.Equal(t, "2 + 2, roughly", obj["note"])
}

func TestEvalArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"division rounded", `{"v": 45954.0 / 137}`, `{"v": 335.43}`},
		{"plain number untouched", `{"v": 42.5}`, `{"v": 42.5}`},
		{"negative number untouched", `{"v": -3}`, `{"v": -3}`},
		{"sum", `{"v": 10 + 2.5}`, `{"v": 12.5}`},
		{"division by zero left alone", `{"v": 1 / 0}`, `{"v": 1 / 0}`},
		{"string value untouched", `{"v": "1 / 2"}`, `{"v": "1 / 2"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, evalArithmetic(tc.input))
		})
	}
}
