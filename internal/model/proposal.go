package model

// Section is one labeled part of a proposal form with its own guiding
// questions, user input and optional attachments.
type Section struct {
	Title                 string   `json:"title"`
	Questions             string   `json:"questions"`
	BestPracticeBeispiele []string `json:"best_practice_beispiele"`
	UserInput             string   `json:"user_input"`
	MaxSectionLength      int      `json:"max_section_length"`
	AttachedFiles         []string `json:"attached_files,omitempty"`
	AttachedURLs          []string `json:"attached_urls,omitempty"`
}

// Section result statuses. PartialSuccess only appears as the overall
// response status.
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusSkipped        = "skipped"
	StatusPartialSuccess = "partial_success"
)

// GenerationRequest is the payload of POST /generate-sections.
type GenerationRequest struct {
	Model    string             `json:"model"`
	Sections map[string]Section `json:"sections"`
}

// SectionResult carries the generated content for a single section.
type SectionResult struct {
	Title            string `json:"title"`
	GeneratedContent string `json:"generated_content"`
	UserInput        string `json:"user_input"`
	Status           string `json:"status"`
}

// GenerationResponse is the payload returned for a full generation request.
type GenerationResponse struct {
	Sections map[string]SectionResult `json:"sections"`
	Status   string                   `json:"status"`
}

// URLContent is the result of extracting text from a single URL.
// Per-item failures are reported via Status ("error") with empty content,
// never as a request-level error.
type URLContent struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Status  string `json:"status"`
}
