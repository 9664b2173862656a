package markdown

import (
	"strings"
	"testing"
	"time"
)

func TestParseTOMLFrontMatter(t *testing.T) {
	src := `+++
title = "First Post"
date = "2024-01-15"
tags = ["go", "web"]
description = "A short summary"
draft = true
+++

Body text here.
`
	m, body, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Title != "First Post" {
		t.Errorf("Title = %q, want %q", m.Title, "First Post")
	}
	if len(m.Tags) != 2 || m.Tags[0] != "go" || m.Tags[1] != "web" {
		t.Errorf("Tags = %v, want [go web]", m.Tags)
	}
	if m.Description != "A short summary" {
		t.Errorf("Description = %q, want %q", m.Description, "A short summary")
	}
	if !m.Draft {
		t.Error("Draft should be true")
	}
	if got := strings.TrimSpace(string(body)); got != "Body text here." {
		t.Errorf("body = %q, want %q", got, "Body text here.")
	}
}

func TestParseYAMLFrontMatter(t *testing.T) {
	src := `---
title: Yaml Post
date: 2023-06-01
tags:
  - notes
---
content
`
	m, body, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Title != "Yaml Post" {
		t.Errorf("Title = %q, want %q", m.Title, "Yaml Post")
	}
	if len(m.Tags) != 1 || m.Tags[0] != "notes" {
		t.Errorf("Tags = %v, want [notes]", m.Tags)
	}
	d, err := ParseDate(m.Date)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Format("2006-01-02") != "2023-06-01" {
		t.Errorf("date = %s, want 2023-06-01", d)
	}
	if !strings.Contains(string(body), "content") {
		t.Errorf("body missing content: %q", body)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{"2024-01-15", "2024-01-15", false},
		{"2024-01-15T10:30:00Z", "2024-01-15", false},
		{"2024-01-15 10:30:00", "2024-01-15", false},
		{time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC), "2022-03-04", false},
		{nil, "0001-01-01", false},
		{"", "0001-01-01", false},
		{"15/01/2024", "", true},
		{42, "", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%v) expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%v) error: %v", tt.in, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestComposeRoundTrip(t *testing.T) {
	doc := Doc{
		Title:       "Round Trip",
		Date:        time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"go", "testing"},
		Description: "desc",
		Draft:       true,
		Body:        "# Hello\n\nworld",
	}
	out, err := Compose(doc)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if !strings.HasPrefix(string(out), "+++\n") {
		t.Fatalf("composed doc should start with a TOML fence: %q", out)
	}

	m, body, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse of composed doc failed: %v", err)
	}
	if m.Title != doc.Title {
		t.Errorf("Title = %q, want %q", m.Title, doc.Title)
	}
	d, err := ParseDate(m.Date)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Format("2006-01-02") != "2024-05-20" {
		t.Errorf("date = %s, want 2024-05-20", d)
	}
	if len(m.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", m.Tags)
	}
	if !m.Draft {
		t.Error("Draft should survive the round trip")
	}
	if got := strings.TrimSpace(string(body)); got != "# Hello\n\nworld" {
		t.Errorf("body = %q, want original body", got)
	}
}

func TestComposeOmitsEmptyFields(t *testing.T) {
	out, err := Compose(Doc{
		Title: "Minimal",
		Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Body:  "text",
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	got := string(out)
	for _, field := range []string{"tags", "description", "draft", "slug"} {
		if strings.Contains(got, field) {
			t.Errorf("empty %s should be omitted: %q", field, got)
		}
	}
}

func TestParseNoFrontMatter(t *testing.T) {
	// A bare Markdown file has no front matter block; the parser should
	// hand the whole thing back as body.
	m, body, err := Parse([]byte("just some text\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Title != "" {
		t.Errorf("Title = %q, want empty", m.Title)
	}
	if !strings.Contains(string(body), "just some text") {
		t.Errorf("body = %q, want passthrough", body)
	}
}
