package common

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `Here you go: {"a":{"b":2}} enjoy`, `{"a":{"b":2}}`, true},
		{"no object", "sorry, I cannot help", "", false},
		{"reversed braces", "} oops {", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.input)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ExtractJSONObject(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, ok := ExtractJSONArray("```\n[{\"ingredient\":\"egg\"}]\n```")
	if !ok || got != `[{"ingredient":"egg"}]` {
		t.Errorf("ExtractJSONArray = %q, %v", got, ok)
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSON(`{"a":1} {"b":2}`, &v); err == nil {
		t.Errorf("ParseJSON with trailing object: want error")
	}
	if err := ParseJSON(`{"a":1}`, &v); err != nil {
		t.Errorf("ParseJSON: %v", err)
	}
}

func TestParseJSONStrict(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := ParseJSONStrict(`{"a":1,"b":2}`, &v); err == nil {
		t.Errorf("ParseJSONStrict with unknown field: want error")
	}
}
