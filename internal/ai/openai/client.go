package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"decision-backend/internal/ai"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Client implements ai.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("AI_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Interpret runs the question interpretation pass.
func (c *Client) Interpret(ctx context.Context, input ai.InterpretInput) (ai.Interpretation, error) {
	raw, err := c.completeJSON(ctx, "interpret", BuildInterpretPrompt(input.Question, input.FileContext))
	if err != nil {
		return ai.Interpretation{}, err
	}

	var parsed ai.Interpretation
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ai.Interpretation{}, fmt.Errorf("interpretation schema mismatch: %w", err)
	}
	if len(parsed.Hypotheses) == 0 {
		return ai.Interpretation{}, fmt.Errorf("interpretation schema mismatch: no hypotheses")
	}
	return parsed, nil
}

// analyzeEnvelope mirrors the analyze prompt's output schema.
type analyzeEnvelope struct {
	Status        string            `json:"status"`
	Report        json.RawMessage   `json:"report"`
	MissingInputs []ai.MissingInput `json:"missingInputs"`
}

// Analyze runs the full analysis pass.
func (c *Client) Analyze(ctx context.Context, input ai.AnalyzeInput) (ai.Outcome, error) {
	raw, err := c.completeJSON(ctx, "analyze", BuildAnalyzePrompt(input))
	if err != nil {
		return ai.Outcome{}, err
	}

	var envelope analyzeEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ai.Outcome{}, fmt.Errorf("analysis schema mismatch: %w", err)
	}
	switch envelope.Status {
	case "report":
		if len(envelope.Report) == 0 {
			return ai.Outcome{}, fmt.Errorf("analysis schema mismatch: report status without report")
		}
		return ai.Outcome{Report: envelope.Report}, nil
	case "missing_inputs":
		if len(envelope.MissingInputs) == 0 {
			return ai.Outcome{}, fmt.Errorf("analysis schema mismatch: missing_inputs status without fields")
		}
		return ai.Outcome{MissingInputs: envelope.MissingInputs}, nil
	default:
		return ai.Outcome{}, fmt.Errorf("analysis schema mismatch: unknown status %q", envelope.Status)
	}
}

// completeJSON runs one chat completion and retries once through the fix
// prompt when the model returns invalid JSON.
func (c *Client) completeJSON(ctx context.Context, promptName string, messages []Message) (json.RawMessage, error) {
	if strings.TrimSpace(c.model) == "" {
		return nil, fmt.Errorf("AI_MODEL is required for OpenAI")
	}

	template, _ := ai.PromptTemplate(promptName)

	if rawFix, ok := ai.FixJSONFromContext(ctx); ok {
		return c.completeFixJSON(ctx, promptName, template, rawFix)
	}

	raw, usage, err := c.completeOnce(ctx, messages)
	if err != nil {
		return nil, err
	}
	logUsage(c.model, promptName, usage)

	if json.Valid(raw) {
		return raw, nil
	}

	raw, usage, err = c.completeOnce(ctx, buildFixPrompt(template, raw))
	if err != nil {
		return nil, err
	}
	logUsage(c.model, promptName, usage)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON from OpenAI")
	}
	return raw, nil
}

func (c *Client) completeFixJSON(ctx context.Context, promptName, template, raw string) (json.RawMessage, error) {
	rawResp, usage, err := c.completeOnce(ctx, buildFixPrompt(template, []byte(raw)))
	if err != nil {
		return nil, err
	}
	logUsage(c.model, promptName, usage)
	if !json.Valid(rawResp) {
		return nil, fmt.Errorf("invalid JSON from OpenAI")
	}
	return rawResp, nil
}

func (c *Client) completeOnce(ctx context.Context, messages []Message) (json.RawMessage, *chatResponseUsage, error) {
	temp := float32(0)
	if sink, ok := ai.PromptHashSinkFromContext(ctx); ok && sink != nil {
		prompt := promptStringFromMessages(messages)
		*sink = hashPromptString(prompt)
	}
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	reqBody := chatRequest{
		Model:    c.model,
		Messages: reqMessages,
		ResponseFormat: responseFormat{
			Type: "json_object",
		},
	}
	if !isGPT5(c.model) {
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return nil, nil, fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, nil, fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, nil, fmt.Errorf("openai response empty content")
	}
	return json.RawMessage(content), toUsage(parsed.Usage), nil
}

type chatResponseUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func toUsage(raw *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) *chatResponseUsage {
	if raw == nil {
		return nil
	}
	return &chatResponseUsage{
		PromptTokens:     raw.PromptTokens,
		CompletionTokens: raw.CompletionTokens,
		TotalTokens:      raw.TotalTokens,
	}
}

func logUsage(model, promptName string, usage *chatResponseUsage) {
	if usage == nil {
		log.Printf("ai response model=%s prompt=%s", model, promptName)
		return
	}
	log.Printf("ai response model=%s prompt=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, promptName, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func promptStringFromMessages(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

func hashPromptString(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

var _ ai.Client = (*Client)(nil)
