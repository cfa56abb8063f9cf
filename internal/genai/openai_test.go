package genai

import (
	"strings"
	"testing"
)

const validQuestionJSON = `{
  "questions": [
    {
      "question": "What is Go?",
      "answers": [
        {"text": "A language", "is_correct": true},
        {"text": "Compiled", "is_correct": true},
        {"text": "Garbage collected", "is_correct": true},
        {"text": "Statically typed", "is_correct": true},
        {"text": "An OS", "is_correct": false},
        {"text": "A database", "is_correct": false}
      ]
    }
  ]
}`

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go:\n{\"a\":1}\nEnjoy!", `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"braces inside strings", `{"a":"{not a brace}"}`, `{"a":"{not a brace}"}`},
		{"no json", "sorry, I cannot do that", ""},
		{"unbalanced", `{"a":1`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.in); got != tc.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseQuestions_Valid(t *testing.T) {
	qs, err := ParseQuestions(validQuestionJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
	q := qs[0]
	if q.Prompt != "What is Go?" {
		t.Fatalf("prompt = %q", q.Prompt)
	}
	if len(q.Answers) != 6 {
		t.Fatalf("got %d answers, want 6", len(q.Answers))
	}
	correct := 0
	for i, a := range q.Answers {
		if a.ID != int64(i+1) {
			t.Fatalf("answer %d has id %d, want sequential ids", i, a.ID)
		}
		if a.Correct {
			correct++
			if a.Points != 0.25 {
				t.Fatalf("correct answer worth %v, want 0.25", a.Points)
			}
		} else if a.Points != -0.5 {
			t.Fatalf("incorrect answer worth %v, want -0.5", a.Points)
		}
	}
	if correct != 4 {
		t.Fatalf("got %d correct answers, want 4", correct)
	}
}

func TestParseQuestions_FencedResponse(t *testing.T) {
	qs, err := ParseQuestions("```json\n" + validQuestionJSON + "\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
}

func TestParseQuestions_DropsMalformedDrafts(t *testing.T) {
	// Five answers: violates the six-option contract.
	bad := strings.Replace(validQuestionJSON,
		`{"text": "A database", "is_correct": false}`, "", 1)
	bad = strings.Replace(bad, `{"text": "An OS", "is_correct": false},`,
		`{"text": "An OS", "is_correct": false}`, 1)
	if _, err := ParseQuestions(bad); err == nil {
		t.Fatal("expected error when no well-formed questions remain")
	}
}

func TestParseQuestions_WrongCorrectCount(t *testing.T) {
	bad := strings.Replace(validQuestionJSON,
		`{"text": "Statically typed", "is_correct": true}`,
		`{"text": "Statically typed", "is_correct": false}`, 1)
	if _, err := ParseQuestions(bad); err == nil {
		t.Fatal("expected error for three-correct draft")
	}
}

func TestParseQuestions_NoJSON(t *testing.T) {
	if _, err := ParseQuestions("I'm unable to help with that."); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseTopic(t *testing.T) {
	info := ParseTopic(`{"title": "Go Concurrency Patterns", "description": "Goroutines and channels."}`)
	if info.Title != "Go Concurrency Patterns" {
		t.Fatalf("title = %q", info.Title)
	}

	if got := ParseTopic("nonsense"); got != fallbackTopic {
		t.Fatalf("fallback = %+v, want %+v", got, fallbackTopic)
	}
	if got := ParseTopic(`{"title": "x"}`); got.Title != fallbackTopic.Title {
		t.Fatalf("too-short title should fall back, got %q", got.Title)
	}
}
