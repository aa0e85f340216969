package mcq

import (
	"errors"
	"testing"

	"github.com/pdfwise/core/internal/pkg/llm"
)

const validQuestion = `{"question":"Which city is the capital of France?","options":["Paris","Lyon","Marseille","Nice"],"correctAnswer":"Paris"}`

func TestParseQuestions(t *testing.T) {
	raw := `{"questions":[` + validQuestion + `]}`
	questions, err := parseQuestions(raw, "chat-1")
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
	q := questions[0]
	if q.ChatID != "chat-1" {
		t.Errorf("chat id = %q", q.ChatID)
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("correct answer = %q", q.CorrectAnswer)
	}
	if len(q.Options) != 4 || q.Options[0] != "Paris" {
		t.Errorf("options = %v", q.Options)
	}
}

func TestParseQuestionsTrimsOptions(t *testing.T) {
	raw := `{"questions":[{"question":"Q?","options":[" A "," B ","C","D"],"correctAnswer":"A"}]}`
	questions, err := parseQuestions(raw, "c")
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if questions[0].Options[0] != "A" {
		t.Errorf("option not trimmed: %q", questions[0].Options[0])
	}
}

func TestParseQuestionsRejectsBadBatches(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Here are your questions!"},
		{"empty list", `{"questions":[]}`},
		{"three options", `{"questions":[{"question":"Q?","options":["A","B","C"],"correctAnswer":"A"}]}`},
		{"five options", `{"questions":[{"question":"Q?","options":["A","B","C","D","E"],"correctAnswer":"A"}]}`},
		{"answer not an option", `{"questions":[{"question":"Q?","options":["A","B","C","D"],"correctAnswer":"E"}]}`},
		{"empty option", `{"questions":[{"question":"Q?","options":["A","","C","D"],"correctAnswer":"A"}]}`},
		{"empty question", `{"questions":[{"question":"","options":["A","B","C","D"],"correctAnswer":"A"}]}`},
		{"one bad spoils batch", `{"questions":[` + validQuestion + `,{"question":"Q?","options":["A","B","C","D"],"correctAnswer":"Z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseQuestions(tt.raw, "c"); !errors.Is(err, llm.ErrMalformedResponse) {
				t.Errorf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}
