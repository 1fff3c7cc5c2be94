package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"proposalapi/internal/llm"
	"proposalapi/internal/model"
	"proposalapi/internal/prompt"
)

// maxConcurrentSections bounds how many sections are generated in parallel
// per request so a large template does not flood the provider APIs.
const maxConcurrentSections = 4

const generationErrPrefix = "Fehler bei der Generierung: "

var ErrNoSections = errors.New("at least one section is required")

// URLExtractor fetches a web page and reduces it to title and readable text.
// *scrape.Scraper satisfies this.
type URLExtractor interface {
	Extract(ctx context.Context, rawURL string) model.URLContent
}

// ProposalService generates proposal section texts from user input,
// guiding questions, and best practice examples, enriched with summaries
// of attached files and URLs.
type ProposalService interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error)
}

type proposalService struct {
	models      ModelResolver
	summarizer  Summarizer
	attachments AttachmentService
	scraper     URLExtractor
	tracer      trace.Tracer
}

// NewProposalService constructs a ProposalService.
func NewProposalService(models ModelResolver, summarizer Summarizer, attachments AttachmentService, scraper URLExtractor) ProposalService {
	return &proposalService{
		models:      models,
		summarizer:  summarizer,
		attachments: attachments,
		scraper:     scraper,
		tracer:      otel.Tracer("proposalapi/internal/service"),
	}
}

func (s *proposalService) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	if req == nil || len(req.Sections) == 0 {
		return nil, ErrNoSections
	}

	modelID := req.Model
	if modelID == "" {
		modelID = llm.DefaultModel
	}
	// Provider default temperature: some models reject overrides.
	m, err := s.models.Resolve(modelID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "GenerateSections",
		trace.WithAttributes(
			attribute.String("llm.model", modelID),
			attribute.Int("sections.count", len(req.Sections)),
		))
	defer span.End()

	var (
		mu      sync.Mutex
		results = make(map[string]model.SectionResult, len(req.Sections))
		failed  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSections)

	for name, section := range req.Sections {
		name, section := name, section
		g.Go(func() error {
			res := s.generateSection(gctx, m, name, section)

			mu.Lock()
			results[name] = res
			if res.Status == model.StatusError {
				failed = true
			}
			mu.Unlock()
			return nil
		})
	}
	// Section failures are reported per section, never as a group error.
	_ = g.Wait()

	status := model.StatusSuccess
	if failed {
		status = model.StatusPartialSuccess
	}
	return &model.GenerationResponse{Sections: results, Status: status}, nil
}

func (s *proposalService) generateSection(ctx context.Context, m llm.Model, name string, section model.Section) model.SectionResult {
	ctx, span := s.tracer.Start(ctx, "GenerateSection",
		trace.WithAttributes(attribute.String("section.name", name)))
	defer span.End()

	res := model.SectionResult{
		Title:     section.Title,
		UserInput: section.UserInput,
	}

	// A section without user input is intentionally left out rather than
	// asking the model to invent content.
	if strings.TrimSpace(section.UserInput) == "" {
		res.Status = model.StatusSkipped
		return res
	}

	summaries := s.collectSummaries(ctx, section)

	out, err := m.Generate(ctx,
		prompt.GenerationSystem(section.MaxSectionLength),
		prompt.GenerationUser(section.Title, section.Questions, section.UserInput, section.BestPracticeBeispiele, summaries),
	)
	if err != nil {
		span.RecordError(err)
		res.GeneratedContent = generationErrPrefix + err.Error()
		res.Status = model.StatusError
		return res
	}

	res.GeneratedContent = strings.TrimSpace(out)
	res.Status = model.StatusSuccess
	return res
}

// collectSummaries resolves the section's attached files and URLs into
// question-focused summaries. Failures of individual attachments are folded
// in as inline error notes so the section itself can still be generated.
func (s *proposalService) collectSummaries(ctx context.Context, section model.Section) []string {
	var summaries []string

	for _, fileID := range section.AttachedFiles {
		content, err := s.attachments.GetContent(ctx, fileID)
		if err != nil {
			summaries = append(summaries, summaryErrPrefix+err.Error())
			continue
		}
		summaries = append(summaries, s.summarizer.ForQuestions(ctx, content, section.Questions, prompt.ContentTypePDF))
	}

	for _, rawURL := range section.AttachedURLs {
		page := s.scraper.Extract(ctx, rawURL)
		if page.Status != model.StatusSuccess {
			summaries = append(summaries, summaryErrPrefix+"Webseite konnte nicht geladen werden: "+rawURL)
			continue
		}
		summaries = append(summaries, s.summarizer.ForQuestions(ctx, page.Content, section.Questions, prompt.ContentTypeWeb))
	}

	return summaries
}
