package server

import (
	_ "embed"
	"fmt"
	"html/template"

	"gopkg.in/yaml.v3"
)

//go:embed sections.yaml
var sectionsRaw []byte

// SectionView is a dashboard section ready to render: body markdown is
// converted to HTML once at startup.
type SectionView struct {
	ID    string
	Title string
	Body  template.HTML
}

type sectionManifest struct {
	Sections []struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"sections"`
}

func loadSections() ([]SectionView, error) {
	var m sectionManifest
	if err := yaml.Unmarshal(sectionsRaw, &m); err != nil {
		return nil, fmt.Errorf("parsing section manifest: %w", err)
	}
	if len(m.Sections) == 0 {
		return nil, fmt.Errorf("section manifest defines no sections")
	}

	seen := map[string]bool{}
	views := make([]SectionView, 0, len(m.Sections))
	for _, s := range m.Sections {
		if s.ID == "" || s.Title == "" {
			return nil, fmt.Errorf("section manifest entry missing id or title")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate section id %q", s.ID)
		}
		seen[s.ID] = true
		views = append(views, SectionView{
			ID:    s.ID,
			Title: s.Title,
			Body:  RenderMarkdown(s.Body),
		})
	}
	return views, nil
}

func (a *App) findSection(id string) (SectionView, bool) {
	for _, s := range a.sections {
		if s.ID == id {
			return s, true
		}
	}
	return SectionView{}, false
}
