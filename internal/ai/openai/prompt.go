package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"decision-backend/internal/ai"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptStrict  = "You are a decision analysis engine. Respond with JSON only. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildInterpretPrompt creates the chat messages for a question interpretation request.
func BuildInterpretPrompt(question, fileContext string) []Message {
	template, _ := ai.PromptTemplate("interpret")
	return []Message{
		{Role: "system", Content: systemPromptStrict},
		{Role: "developer", Content: template},
		{Role: "user", Content: buildUserPrompt(question, fileContext, nil, nil)},
	}
}

// BuildAnalyzePrompt creates the chat messages for an analysis request.
func BuildAnalyzePrompt(input ai.AnalyzeInput) []Message {
	template, _ := ai.PromptTemplate("analyze")
	return []Message{
		{Role: "system", Content: systemPromptStrict},
		{Role: "developer", Content: template},
		{Role: "user", Content: buildUserPrompt(input.Question, input.FileContext, input.Hypotheses, input.ProvidedData)},
	}
}

func buildFixPrompt(template string, raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: template},
		{Role: "user", Content: fixUserPrompt(raw)},
	}
}

func buildUserPrompt(question, fileContext string, hypotheses []ai.Hypothesis, provided map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n", question)

	fc := fileContext
	if strings.TrimSpace(fc) == "" {
		fc = "N/A"
	}
	fmt.Fprintf(&b, "\nData Files:\n%s\n", fc)

	if len(hypotheses) > 0 {
		raw, err := json.Marshal(hypotheses)
		if err == nil {
			fmt.Fprintf(&b, "\nWorking Hypotheses:\n%s\n", string(raw))
		}
	}
	if len(provided) > 0 {
		raw, err := json.Marshal(provided)
		if err == nil {
			fmt.Fprintf(&b, "\nUser-Provided Data:\n%s\n", string(raw))
		}
	}
	return b.String()
}

func fixUserPrompt(raw []byte) string {
	return fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))
}
