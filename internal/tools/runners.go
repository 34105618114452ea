package tools

import (
	"context"
	"strings"

	"dashboard/internal/backend"
	"dashboard/internal/domain"
)

// Tool names, also used as metric labels and route segments.
const (
	NameGenerator  = "content"
	NameSummarizer = "summarizer"
	NameCorrector  = "correct"
)

// GeneratorInput is the content generator form.
type GeneratorInput struct {
	Heading string
	Tone    string
}

// SummarizerInput is the summarizer form.
type SummarizerInput struct {
	Text  string
	Words int
}

// CorrectorInput is the grammar corrector form.
type CorrectorInput struct {
	Text string
}

// ContentBackend generates copy.
type ContentBackend interface {
	Generate(ctx context.Context, heading, tone string) (string, error)
}

// SummaryBackend summarizes text.
type SummaryBackend interface {
	Summarize(ctx context.Context, prompt string, words int) (string, error)
}

// GrammarBackend corrects text.
type GrammarBackend interface {
	Correct(ctx context.Context, prompt string) (string, error)
}

// Generator runs the content generator.
type Generator struct{ Backend ContentBackend }

func (Generator) Name() string { return NameGenerator }

func (Generator) Validate(in GeneratorInput) (GeneratorInput, error) {
	in.Heading = strings.TrimSpace(in.Heading)
	in.Tone = strings.ToLower(strings.TrimSpace(in.Tone))
	if in.Heading == "" {
		return in, &ValidationError{Field: "heading", Message: "Heading is required"}
	}
	if !domain.ValidTone(in.Tone) {
		return in, &ValidationError{Field: "tone", Message: "Select a tone"}
	}
	return in, nil
}

func (g Generator) Run(ctx context.Context, in GeneratorInput) (string, error) {
	return g.Backend.Generate(ctx, in.Heading, in.Tone)
}

func (Generator) FailureMessage(err error) string {
	if msg := backend.UserMessage(err); msg != "" {
		return msg
	}
	return "Error generating content"
}

// Summarizer runs the text summarizer.
type Summarizer struct{ Backend SummaryBackend }

func (Summarizer) Name() string { return NameSummarizer }

func (Summarizer) Validate(in SummarizerInput) (SummarizerInput, error) {
	if in.Words <= 0 {
		in.Words = domain.DefaultSummaryWords
	}
	if strings.TrimSpace(in.Text) == "" {
		return in, &ValidationError{Field: "text", Message: "Enter text to summarize"}
	}
	return in, nil
}

func (s Summarizer) Run(ctx context.Context, in SummarizerInput) (string, error) {
	return s.Backend.Summarize(ctx, in.Text, in.Words)
}

func (Summarizer) FailureMessage(error) string {
	return "Failed to summarize text. Please try again."
}

// Corrector runs the grammar corrector.
type Corrector struct{ Backend GrammarBackend }

func (Corrector) Name() string { return NameCorrector }

func (Corrector) Validate(in CorrectorInput) (CorrectorInput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return in, &ValidationError{Field: "text", Message: "Enter text to correct"}
	}
	return in, nil
}

func (c Corrector) Run(ctx context.Context, in CorrectorInput) (string, error) {
	return c.Backend.Correct(ctx, in.Text)
}

func (Corrector) FailureMessage(error) string {
	return "Failed to correct text. Please try again."
}

var (
	_ Runner[GeneratorInput]  = Generator{}
	_ Runner[SummarizerInput] = Summarizer{}
	_ Runner[CorrectorInput]  = Corrector{}
)
