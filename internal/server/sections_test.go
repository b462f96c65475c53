package server

import (
	"strings"
	"testing"
)

func TestLoadSections(t *testing.T) {
	sections, err := loadSections()
	if err != nil {
		t.Fatalf("loadSections: %v", err)
	}
	if len(sections) < 2 {
		t.Fatalf("len(sections) = %d, want at least 2", len(sections))
	}

	seen := map[string]bool{}
	for _, s := range sections {
		if s.ID == "" || s.Title == "" {
			t.Errorf("section %+v missing id or title", s)
		}
		if seen[s.ID] {
			t.Errorf("duplicate section id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Body == "" {
			t.Errorf("section %s has no rendered body", s.ID)
		}
	}
}

func TestLoadSections_ModelPages(t *testing.T) {
	sections, err := loadSections()
	if err != nil {
		t.Fatalf("loadSections: %v", err)
	}

	byID := map[string]SectionView{}
	for _, s := range sections {
		byID[s.ID] = s
	}

	a, ok := byID["model-a"]
	if !ok {
		t.Fatal("manifest has no model-a section")
	}
	if !strings.Contains(string(a.Body), "Classification Model") {
		t.Error("Model A body does not list its specifications")
	}
	if !strings.Contains(string(a.Body), "<code") {
		t.Error("Model A usage sample did not render as a code block")
	}

	b, ok := byID["model-b"]
	if !ok {
		t.Fatal("manifest has no model-b section")
	}
	for _, want := range []string{"Regression Model", "Performance Metrics", "0.0025"} {
		if !strings.Contains(string(b.Body), want) {
			t.Errorf("Model B body missing %q", want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("Welcome to **Section 1**!"))
	if !strings.Contains(html, "<strong>Section 1</strong>") {
		t.Errorf("rendered markdown = %q", html)
	}
}
