package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposalapi/internal/config"
	"proposalapi/internal/llm"
)

// stubModel is a canned llm.Model that records the prompts it receives.
type stubModel struct {
	mu      sync.Mutex
	out     string
	err     error
	systems []string
	users   []string
}

func (s *stubModel) Generate(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.systems = append(s.systems, system)
	s.users = append(s.users, user)
	s.mu.Unlock()
	return s.out, s.err
}

// stubResolver hands out a fixed model for every id.
type stubResolver struct {
	model      llm.Model
	err        error
	resolvedID string
	opts       []llm.Option
}

func (s *stubResolver) Resolve(id string, opts ...llm.Option) (llm.Model, error) {
	s.resolvedID = id
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}

func TestSummarizerForQuestions(t *testing.T) {
	ctx := context.Background()
	cfg := config.LLMConfig{SummaryModel: "gpt-4o-mini"}

	t.Run("summarizes content", func(t *testing.T) {
		m := &stubModel{out: "Die wichtigsten Kennzahlen sind ..."}
		resolver := &stubResolver{model: m}
		s := NewSummarizer(resolver, cfg)

		out := s.ForQuestions(ctx, "Langer Berichtstext", "Welche Kennzahlen?", "pdf")

		assert.Equal(t, "Die wichtigsten Kennzahlen sind ...", out)
		assert.Equal(t, "gpt-4o-mini", resolver.resolvedID)
		require.Len(t, m.users, 1)
		assert.Contains(t, m.users[0], "Langer Berichtstext")
		assert.Contains(t, m.users[0], "Welche Kennzahlen?")
		assert.Contains(t, m.systems[0], "PDF-Dokument")
	})

	t.Run("empty content yields no-content note", func(t *testing.T) {
		s := NewSummarizer(&stubResolver{model: &stubModel{}}, cfg)

		assert.Equal(t, NoUsableContent, s.ForQuestions(ctx, "   \n ", "Fragen", "pdf"))
	})

	t.Run("llm failure yields error note", func(t *testing.T) {
		m := &stubModel{err: errors.New("rate limited")}
		s := NewSummarizer(&stubResolver{model: m}, cfg)

		out := s.ForQuestions(ctx, "Inhalt", "Fragen", "web")
		assert.Equal(t, "Fehler bei der Zusammenfassung: rate limited", out)
	})

	t.Run("truncates long content", func(t *testing.T) {
		m := &stubModel{out: "ok"}
		s := NewSummarizer(&stubResolver{model: m}, cfg)

		long := strings.Repeat("a", maxSummaryInputChars+500)
		s.ForQuestions(ctx, long, "Fragen", "text")

		require.Len(t, m.users, 1)
		assert.Contains(t, m.users[0], strings.Repeat("a", maxSummaryInputChars)+"...")
		assert.NotContains(t, m.users[0], strings.Repeat("a", maxSummaryInputChars+1))
	})

	t.Run("falls back to default model", func(t *testing.T) {
		resolver := &stubResolver{model: &stubModel{out: "ok"}}
		s := NewSummarizer(resolver, config.LLMConfig{})

		s.ForQuestions(ctx, "Inhalt", "Fragen", "pdf")
		assert.Equal(t, llm.DefaultModel, resolver.resolvedID)
	})
}
