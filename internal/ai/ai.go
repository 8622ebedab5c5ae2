package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts AI providers for decision analysis.
type Client interface {
	// Interpret reads the owner's question plus file context and returns
	// the structural interpretation used to seed an analysis run.
	Interpret(ctx context.Context, input InterpretInput) (Interpretation, error)
	// Analyze runs the full analysis and returns either a report or the
	// list of inputs the model could not proceed without.
	Analyze(ctx context.Context, input AnalyzeInput) (Outcome, error)
}

// PromptClient completes a free-form prompt with a JSON response. Used by
// the conversational follow-up flow.
type PromptClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// InterpretInput captures what the interpretation pass needs.
type InterpretInput struct {
	Question    string
	FileContext string
}

// Interpretation is the structured reading of a decision question.
type Interpretation struct {
	Intent         string       `json:"intent"`
	DecisionType   string       `json:"decisionType"`
	Hypotheses     []Hypothesis `json:"hypotheses"`
	RequiredFields []string     `json:"requiredFields"`
}

// Hypothesis is a single assumption the analysis rests on. Kind is one of
// number, text or date; Value carries the typed value rendered as a string.
type Hypothesis struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// AnalyzeInput captures the inputs needed for the analysis pass.
type AnalyzeInput struct {
	Question     string
	FileContext  string
	Hypotheses   []Hypothesis
	ProvidedData map[string]string
}

// MissingInput describes a data point the model asked for. Kind is one of
// number, text, date or file.
type MissingInput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Kind        string `json:"kind"`
}

// Outcome is the result of an analysis pass. Exactly one of Report or
// MissingInputs is populated.
type Outcome struct {
	Report        json.RawMessage
	MissingInputs []MissingInput
}

// NeedsData reports whether the analysis stopped for missing inputs.
func (o Outcome) NeedsData() bool {
	return len(o.MissingInputs) > 0
}

type fixJSONKey struct{}

// WithFixJSON returns a context signaling a fix-JSON retry with the given raw output.
func WithFixJSON(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, fixJSONKey{}, raw)
}

// FixJSONFromContext returns the raw JSON to repair, if any.
func FixJSONFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(fixJSONKey{})
	raw, ok := val.(string)
	return raw, ok
}

type promptHashSinkKey struct{}

// WithPromptHashSink returns a context carrying a destination for the prompt hash.
func WithPromptHashSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, promptHashSinkKey{}, sink)
}

// PromptHashSinkFromContext returns the prompt hash sink, if any.
func PromptHashSinkFromContext(ctx context.Context) (*string, bool) {
	val := ctx.Value(promptHashSinkKey{})
	sink, ok := val.(*string)
	return sink, ok
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("AI provider not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

func (PlaceholderClient) Interpret(ctx context.Context, input InterpretInput) (Interpretation, error) {
	_ = ctx
	_ = input
	return Interpretation{}, ErrNotImplemented
}

func (PlaceholderClient) Analyze(ctx context.Context, input AnalyzeInput) (Outcome, error) {
	_ = ctx
	_ = input
	return Outcome{}, ErrNotImplemented
}

var _ Client = PlaceholderClient{}
