// Package genai generates quiz questions and topic names from extracted
// source text through the OpenAI chat completions API.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = openai.GPT4oMini

	// maxContentChars bounds the prompt so long sources stay within the
	// model's context window.
	maxContentChars = 8000
	maxTopicChars   = 4000

	correctPoints   = 0.25
	incorrectPoints = -0.5
)

// DraftAnswer is one generated answer option. Point weights are assigned
// here, never trusted from model output.
type DraftAnswer struct {
	ID      int64   `json:"id"`
	Text    string  `json:"text"`
	Correct bool    `json:"is_correct"`
	Points  float64 `json:"points"`
}

// DraftQuestion is a generated question awaiting persistence.
type DraftQuestion struct {
	Prompt  string        `json:"question_text"`
	Answers []DraftAnswer `json:"answers"`
}

// TopicInfo names a topic derived from source content.
type TopicInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Generator struct {
	client *openai.Client
	model  string
}

type Option func(*Generator)

func WithModel(m string) Option { return func(g *Generator) { g.model = m } }

func NewGenerator(apiKey string, opts ...Option) *Generator {
	g := &Generator{client: openai.NewClient(apiKey), model: defaultModel}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   4000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	choice := resp.Choices[0]
	switch choice.FinishReason {
	case openai.FinishReasonContentFilter:
		return "", errors.New("openai blocked the request due to content filters")
	case openai.FinishReasonLength:
		return "", errors.New("openai response was cut off at the token limit")
	}
	if choice.Message.Content == "" {
		return "", errors.New("openai returned empty text")
	}
	return choice.Message.Content, nil
}

const questionsPromptFmt = `You are a quiz question generator. Based on the following content, generate exactly %d multiple-choice questions.

For each question, you must provide:
- 1 question text
- 6 answer options total:
  * 4 correct answers (each worth +0.25 points)
  * 2 incorrect answers (each worth -0.5 points)

Format your response as JSON with this exact structure:
{
  "questions": [
    {
      "question": "Question text here?",
      "answers": [
        {"text": "Answer 1", "is_correct": true},
        {"text": "Answer 2", "is_correct": true},
        {"text": "Answer 3", "is_correct": true},
        {"text": "Answer 4", "is_correct": true},
        {"text": "Answer 5", "is_correct": false},
        {"text": "Answer 6", "is_correct": false}
      ]
    }
  ]
}

Content to generate questions from:
%s

IMPORTANT: Return ONLY valid JSON, no additional text, no markdown formatting, no code blocks. Just the raw JSON object.`

// GenerateQuestions asks the model for n questions over content and keeps
// only drafts that satisfy the six-option/four-correct contract.
func (g *Generator) GenerateQuestions(ctx context.Context, content string, n int) ([]DraftQuestion, error) {
	if n <= 0 {
		n = 5
	}
	prompt := fmt.Sprintf(questionsPromptFmt, n, truncate(content, maxContentChars))
	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseQuestions(raw)
}

// ParseQuestions salvages a JSON object from raw model output and validates
// the generated drafts.
func ParseQuestions(raw string) ([]DraftQuestion, error) {
	var payload struct {
		Questions []struct {
			Question string `json:"question"`
			Answers  []struct {
				Text    string `json:"text"`
				Correct bool   `json:"is_correct"`
			} `json:"answers"`
		} `json:"questions"`
	}
	body := ExtractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in model response (%d chars)", len(raw))
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if payload.Questions == nil {
		return nil, errors.New("model response missing questions key")
	}

	out := make([]DraftQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q.Question == "" || len(q.Answers) != 6 {
			continue
		}
		correct := 0
		answers := make([]DraftAnswer, 0, 6)
		for i, a := range q.Answers {
			pts := incorrectPoints
			if a.Correct {
				correct++
				pts = correctPoints
			}
			answers = append(answers, DraftAnswer{ID: int64(i + 1), Text: a.Text, Correct: a.Correct, Points: pts})
		}
		if correct != 4 {
			continue
		}
		out = append(out, DraftQuestion{Prompt: q.Question, Answers: answers})
	}
	if len(out) == 0 {
		return nil, errors.New("model returned no well-formed questions")
	}
	return out, nil
}

const topicPromptFmt = `Analyze the following content and generate a concise, descriptive topic name and brief description.

The topic name should:
- Be 3-8 words long
- Accurately reflect the main subject or theme
- Be clear and specific (not generic like "General Information")
- Use title case (e.g., "Type Safety and Type Inference")

The description should:
- Be 1-2 sentences summarizing the key concepts
- Be helpful for understanding what questions will be generated from this topic

Content sample:
%s

Return your response as JSON with this exact structure:
{
  "title": "Topic Name Here",
  "description": "Brief description of the topic and key concepts covered."
}

IMPORTANT: Return ONLY valid JSON, no additional text, no markdown formatting, no code blocks.`

var fallbackTopic = TopicInfo{
	Title:       "Generated Topic",
	Description: "Questions generated from source content.",
}

// GenerateTopic names a topic from a content sample. Model or parse
// failures fall back to a static topic instead of erroring, since naming is
// cosmetic.
func (g *Generator) GenerateTopic(ctx context.Context, content string) TopicInfo {
	raw, err := g.complete(ctx, fmt.Sprintf(topicPromptFmt, truncate(content, maxTopicChars)))
	if err != nil {
		return fallbackTopic
	}
	return ParseTopic(raw)
}

// ParseTopic extracts a topic from raw model output, falling back on error.
func ParseTopic(raw string) TopicInfo {
	body := ExtractJSON(raw)
	if body == "" {
		return fallbackTopic
	}
	var info TopicInfo
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		return fallbackTopic
	}
	if len(info.Title) < 3 {
		info.Title = fallbackTopic.Title
	}
	return info
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
