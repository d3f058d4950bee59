// Package narrative turns an enriched balance sheet into requests to a
// text-generation service and returns displayable text.
//
// Nothing returned by this package is an error: every failure is classified
// and converted to a message string at this boundary.
package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"balance_insight/pkg/core/llm"
	"balance_insight/pkg/core/prompt"
	"balance_insight/pkg/core/ratio"
)

// Bridge sends narrative requests through a single provider.
type Bridge struct {
	Provider llm.Provider
	Model    string
	APIKey   string
	Prompts  *prompt.Registry // nil uses prompt.Get()
	Markers  ratio.Markers
	Language string // empty keeps the template default
	Logger   *slog.Logger
}

// Outcome is the result of one narrative request.
type Outcome struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
	Err  error  `json:"-"`
}

// OK reports whether the request produced generated text.
func (o Outcome) OK() bool { return o.Kind == KindNone }

// Summarize asks for commentary on t. It blocks until the service answers.
func (b *Bridge) Summarize(ctx context.Context, t ratio.Table) string {
	return b.SummarizeOutcome(ctx, t).Text
}

// SummarizeOutcome is Summarize with the failure classification.
func (b *Bridge) SummarizeOutcome(ctx context.Context, t ratio.Table) Outcome {
	vars := prompt.NewContext().Set("Data", DataExcerpt(t, b.Markers))
	return b.run(ctx, prompt.NarrativeSummary, vars)
}

// Answer replies to question. tableContext is the markdown of the loaded
// table, or nil when nothing has been uploaded yet.
func (b *Bridge) Answer(ctx context.Context, question string, tableContext *string) string {
	return b.AnswerOutcome(ctx, question, tableContext).Text
}

// AnswerOutcome is Answer with the failure classification.
func (b *Bridge) AnswerOutcome(ctx context.Context, question string, tableContext *string) Outcome {
	vars := prompt.NewContext().Set("Question", question)
	if tableContext != nil && strings.TrimSpace(*tableContext) != "" {
		vars.Set("Context", *tableContext)
	}
	return b.run(ctx, prompt.NarrativeChat, vars)
}

func (b *Bridge) run(ctx context.Context, promptID string, vars *prompt.PromptExecutionContext) (out Outcome) {
	log := b.logger().With("prompt", promptID)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("provider panic: %v", r)
			log.Error("narrative request panicked", "error", err)
			out = failure(KindUnknown, err)
		}
	}()

	if b.Provider == nil {
		return failure(KindUnknown, fmt.Errorf("no text-generation provider configured"))
	}
	if b.Language != "" {
		vars.Set("Language", b.Language)
	}

	registry := b.Prompts
	if registry == nil {
		registry = prompt.Get()
	}
	system, user, err := registry.Render(promptID, vars)
	if err != nil {
		log.Error("prompt render failed", "error", err)
		return failure(KindUnknown, err)
	}

	text, err := b.Provider.GenerateResponse(ctx, llm.Request{
		Model:        b.Model,
		APIKey:       b.APIKey,
		Prompt:       user,
		SystemPrompt: system,
	})
	if err != nil {
		kind := Classify(err)
		log.Warn("narrative request failed", "provider", b.Provider.Name(), "kind", kind.String(), "error", err)
		return failure(kind, err)
	}

	log.Debug("narrative request complete", "provider", b.Provider.Name(), "chars", len(text))
	return Outcome{Text: text, Kind: KindNone}
}

func failure(kind Kind, err error) Outcome {
	return Outcome{Text: Message(kind, err), Kind: kind, Err: err}
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
