package utils

import (
	"errors"
	"testing"
)

func TestExtractJSONPlain(t *testing.T) {
	got, err := ExtractJSON(`{"a": 1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONWithMarkdownFences(t *testing.T) {
	input := "```json\n{\"status\": \"green\"}\n```"
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"status": "green"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	input := `Sure, here is the result you asked for: {"score": 0.8, "reason": "similar topics"} Hope that helps!`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"score": 0.8, "reason": "similar topics"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	input := `{"reason": "uses {braces} and \"quotes\" inside"}`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSON(`The list: [1, 2, 3]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[1, 2, 3]` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONNoPayload(t *testing.T) {
	for _, input := range []string{"", "no json here", "{broken"} {
		if _, err := ExtractJSON(input); !errors.Is(err, ErrNoJSONFound) {
			t.Errorf("input %q: expected ErrNoJSONFound, got %v", input, err)
		}
	}
}

func TestExtractJSONTo(t *testing.T) {
	var out struct {
		Status string `json:"status"`
	}
	err := ExtractJSONTo("```json\n{\"status\": \"red\"}\n```", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "red" {
		t.Errorf("got %q", out.Status)
	}
}
