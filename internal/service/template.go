package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"proposalapi/internal/model"
)

var ErrTemplateNotFound = errors.New("template not found")

// templateMeta carries the display metadata for the bundled templates.
// Templates without an entry fall back to a name derived from the file name.
var templateMeta = map[string]model.TemplateListItem{
	"digi4wirtschaft": {
		ID:          "digi4wirtschaft",
		Name:        "Digi4Wirtschaft WKNOE",
		Description: "Template for digital economy funding applications",
	},
	"digitalisierung_WA": {
		ID:          "digitalisierung_WA",
		Name:        "Digitalisierung Wirtschaftsagentur Wien",
		Description: "Template for digital economy funding applications",
	},
}

// TemplateService serves the proposal templates stored as JSON files in the
// configured template directory.
type TemplateService interface {
	List(ctx context.Context) ([]model.TemplateListItem, error)
	Get(ctx context.Context, id string) (*model.Template, error)
}

type templateService struct {
	dir string
}

// NewTemplateService constructs a TemplateService reading from dir.
func NewTemplateService(dir string) TemplateService {
	return &templateService{dir: dir}
}

func (s *templateService) List(ctx context.Context) ([]model.TemplateListItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	items := make([]model.TemplateListItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		if meta, ok := templateMeta[id]; ok {
			items = append(items, meta)
			continue
		}
		items = append(items, model.TemplateListItem{
			ID:   id,
			Name: displayName(id),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *templateService) Get(ctx context.Context, id string) (*model.Template, error) {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return nil, ErrTemplateNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("read template %s: %w", id, err)
	}

	var tpl model.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", id, err)
	}
	if tpl.Sections == nil {
		tpl.Sections = map[string]model.TemplateSection{}
	}
	return &tpl, nil
}

func displayName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
