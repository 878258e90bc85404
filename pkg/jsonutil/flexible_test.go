package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{name: "string value", input: json.RawMessage(`"2024-01-01"`), want: "2024-01-01"},
		{name: "integer value", input: json.RawMessage(`42`), want: "42"},
		{name: "float value", input: json.RawMessage(`3.14`), want: "3.14"},
		{name: "boolean true", input: json.RawMessage(`true`), want: "true"},
		{name: "null value", input: json.RawMessage(`null`), want: ""},
		{name: "nil raw message", input: nil, want: ""},
		{name: "large integer preserves precision", input: json.RawMessage(`9007199254740992`), want: "9007199254740992"},
		{name: "object falls back to raw string", input: json.RawMessage(`{"key":"value"}`), want: `{"key":"value"}`},
		{name: "negative integer", input: json.RawMessage(`-7`), want: "-7"},
		{name: "numeric string stays as written", input: json.RawMessage(`"007"`), want: "007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleStringValue(tt.input)
			if got != tt.want {
				t.Errorf("FlexibleStringValue(%s) = %q, want %q", string(tt.input), got, tt.want)
			}
		})
	}
}

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  json.RawMessage
		want   float64
		wantOK bool
	}{
		{name: "number", input: json.RawMessage(`12.5`), want: 12.5, wantOK: true},
		{name: "integer", input: json.RawMessage(`10`), want: 10, wantOK: true},
		{name: "numeric string", input: json.RawMessage(`" 3.25 "`), want: 3.25, wantOK: true},
		{name: "non-numeric string", input: json.RawMessage(`"abc"`), wantOK: false},
		{name: "null", input: json.RawMessage(`null`), wantOK: false},
		{name: "missing", input: nil, wantOK: false},
		{name: "boolean", input: json.RawMessage(`true`), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleFloat(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FlexibleFloat(%s) ok = %v, want %v", string(tt.input), ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FlexibleFloat(%s) = %v, want %v", string(tt.input), got, tt.want)
			}
		})
	}
}
