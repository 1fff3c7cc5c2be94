package model

import "encoding/json"

// TemplateSection is one section of a proposal template: the questions and
// examples the form presents before the user has typed anything.
type TemplateSection struct {
	Title                 string   `json:"title"`
	Questions             string   `json:"questions"`
	BestPracticeBeispiele []string `json:"best_practice_beispiele"`
	UserInput             string   `json:"user_input"`
	MaxSectionLength      int      `json:"max_section_length"`
}

// UnmarshalJSON accepts both the German field name and the
// "best_practice_examples" spelling some template files use.
func (s *TemplateSection) UnmarshalJSON(data []byte) error {
	type alias struct {
		Title                 string   `json:"title"`
		Questions             string   `json:"questions"`
		BestPracticeBeispiele []string `json:"best_practice_beispiele"`
		BestPracticeExamples  []string `json:"best_practice_examples"`
		UserInput             string   `json:"user_input"`
		MaxSectionLength      int      `json:"max_section_length"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	s.Title = a.Title
	s.Questions = a.Questions
	s.UserInput = a.UserInput
	s.MaxSectionLength = a.MaxSectionLength
	s.BestPracticeBeispiele = a.BestPracticeBeispiele
	if s.BestPracticeBeispiele == nil {
		s.BestPracticeBeispiele = a.BestPracticeExamples
	}
	if s.BestPracticeBeispiele == nil {
		s.BestPracticeBeispiele = []string{}
	}
	return nil
}

// Template is a complete proposal template keyed by section name.
type Template struct {
	Sections map[string]TemplateSection `json:"sections"`
}

// TemplateListItem describes an available template without its sections.
type TemplateListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
