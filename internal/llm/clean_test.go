package llm

import "testing"

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"id": "insert"}`,
			want:  `{"id": "insert"}`,
		},
		{
			name:  "fenced object",
			input: "```json\n{\"id\": \"insert\"}\n```",
			want:  `{"id": "insert"}`,
		},
		{
			name:  "fenced without language",
			input: "```\n[1, 2]\n```",
			want:  `[1, 2]`,
		},
		{
			name:  "leading prose",
			input: "Here is the result:\n{\"amount\": 5}",
			want:  `{"amount": 5}`,
		},
		{
			name:  "trailing prose",
			input: "[{\"a\": 1}]\nLet me know if you need anything else.",
			want:  `[{"a": 1}]`,
		},
		{
			name:  "whitespace only trimming",
			input: "   {\"a\": 1}   ",
			want:  `{"a": 1}`,
		},
		{
			name:  "no json at all",
			input: "cannot help",
			want:  "cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.input); got != tt.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
