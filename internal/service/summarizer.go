package service

import (
	"context"
	"strings"

	"proposalapi/internal/config"
	"proposalapi/internal/llm"
	"proposalapi/internal/prompt"
)

const (
	// maxSummaryInputChars caps the attachment content handed to the
	// summarization model so the prompt stays within provider limits.
	maxSummaryInputChars = 8000

	// defaultSummaryLength is the target size of a generated summary.
	defaultSummaryLength = 1000

	summaryTemperature = 0.3

	// NoUsableContent is returned when an attachment holds no text worth
	// summarizing, for example a scanned PDF or an empty page.
	NoUsableContent = "Kein verwertbarer Inhalt in der Anlage gefunden."

	summaryErrPrefix = "Fehler bei der Zusammenfassung: "
)

// ModelResolver resolves a model id into a ready-to-call LLM client.
// *llm.Registry satisfies this.
type ModelResolver interface {
	Resolve(id string, opts ...llm.Option) (llm.Model, error)
}

// Summarizer condenses attachment content into a question-focused summary
// that can be folded into a generation prompt.
type Summarizer interface {
	// ForQuestions summarizes content with respect to the section's guiding
	// questions. It never fails: summarization problems are reported inline
	// as a German error note so section generation can proceed without the
	// attachment.
	ForQuestions(ctx context.Context, content, questions, contentType string) string
}

type llmSummarizer struct {
	models  ModelResolver
	modelID string
}

// NewSummarizer constructs a Summarizer backed by the configured summary model.
func NewSummarizer(models ModelResolver, cfg config.LLMConfig) Summarizer {
	modelID := cfg.SummaryModel
	if modelID == "" {
		modelID = llm.DefaultModel
	}
	return &llmSummarizer{models: models, modelID: modelID}
}

func (s *llmSummarizer) ForQuestions(ctx context.Context, content, questions, contentType string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return NoUsableContent
	}
	if runes := []rune(content); len(runes) > maxSummaryInputChars {
		content = string(runes[:maxSummaryInputChars]) + "..."
	}

	m, err := s.models.Resolve(s.modelID, llm.WithTemperature(summaryTemperature))
	if err != nil {
		return summaryErrPrefix + err.Error()
	}

	out, err := m.Generate(ctx,
		prompt.SummarySystem(contentType, defaultSummaryLength),
		prompt.SummaryUser(content, questions),
	)
	if err != nil {
		return summaryErrPrefix + err.Error()
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return NoUsableContent
	}
	return out
}
