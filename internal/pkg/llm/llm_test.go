package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestUnmarshalJSON(t *testing.T) {
	type payload struct {
		Summary string `json:"summary"`
	}

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"summary":"ok"}`, "ok", false},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", "ok", false},
		{"fenced uppercase", "```JSON\n{\"summary\":\"ok\"}\n```", "ok", false},
		{"surrounding prose", `Here you go: {"summary":"ok"} hope that helps`, "ok", false},
		{"whitespace", "  \n{\"summary\":\"ok\"}\n  ", "ok", false},
		{"not json", "I cannot answer that.", "", true},
		{"truncated", `{"summary":"ok`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			err := UnmarshalJSON(tt.raw, &out)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("err = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}
			if out.Summary != tt.want {
				t.Errorf("summary = %q, want %q", out.Summary, tt.want)
			}
		})
	}
}

func TestTruncatePrompt(t *testing.T) {
	if got := TruncatePrompt("short", 10); got != "short" {
		t.Errorf("short input changed: %q", got)
	}
	got := TruncatePrompt(strings.Repeat("日", 20), 5)
	if got != strings.Repeat("日", 5)+"..." {
		t.Errorf("rune truncation wrong: %q", got)
	}
}
