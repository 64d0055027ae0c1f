package providers

import (
	"encoding/json"
	"testing"
)

func TestParseJSONOutput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "strict JSON object",
			input: `{"chapters":[{"id":"1"}]}`,
			want:  `{"chapters":[{"id":"1"}]}`,
		},
		{
			name:  "fenced json block",
			input: "Here is the index:\n```json\n{\"chapters\": []}\n```\nEnjoy!",
			want:  `{"chapters":[]}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding prose",
			input: `Sure! The result is {"a": 1} as requested.`,
			want:  `{"a":1}`,
		},
		{
			name:  "array output",
			input: `[1, 2, 3]`,
			want:  `[1,2,3]`,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "I could not produce an index, sorry.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONOutput(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSONOutput() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateJSONOutput(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"chapters": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1},
						"title": {"type": "string", "minLength": 1}
					},
					"required": ["id", "title"]
				}
			}
		},
		"required": ["chapters"]
	}`)

	t.Run("valid document", func(t *testing.T) {
		doc := json.RawMessage(`{"chapters":[{"id":"1","title":"Uno"}]}`)
		if err := ValidateJSONOutput(schema, doc); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		doc := json.RawMessage(`{"chapters":[{"id":"1"}]}`)
		if err := ValidateJSONOutput(schema, doc); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("empty chapters rejected", func(t *testing.T) {
		doc := json.RawMessage(`{"chapters":[]}`)
		if err := ValidateJSONOutput(schema, doc); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("nil schema is a no-op", func(t *testing.T) {
		if err := ValidateJSONOutput(nil, json.RawMessage(`{}`)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
