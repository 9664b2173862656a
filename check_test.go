package mdpress

import (
	"path/filepath"
	"strings"
	"testing"
)

func checkProblems(t *testing.T, cfg *Config) []Problem {
	t.Helper()
	problems, err := Check(cfg)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return problems
}

func TestCheckCleanSite(t *testing.T) {
	cfg := testBuildConfig(t)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "first.md"), `+++
title = "First"
date = "2024-01-10"
tags = ["go"]
+++

See [the about page](/about/) and [the tag](/tags/go/).
Also [a photo](/static/photo.png) and [home](/).
`)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "pages", "about.md"), `+++
title = "About"
+++

Back to [the first post](/blog/first/#intro) or [the feed](/feed.xml).
`)
	writeContentFile(t, filepath.Join(cfg.StaticDir(), "photo.png"), "png")

	if problems := checkProblems(t, cfg); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestCheckCollectsAllProblems(t *testing.T) {
	cfg := testBuildConfig(t)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "no-title.md"), `+++
date = "2024-01-10"
+++

Body.
`)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "bad-date.md"), `+++
title = "Bad Date"
date = "soonish"
+++

Body.
`)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "dupe-a.md"), `+++
title = "Dupe A"
date = "2024-01-11"
slug = "same"
+++

Body.
`)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "dupe-b.md"), `+++
title = "Dupe B"
date = "2024-01-12"
slug = "same"
+++

Body.
`)

	problems := checkProblems(t, cfg)
	if len(problems) != 3 {
		t.Fatalf("got %d problems, want 3: %v", len(problems), problems)
	}

	byFile := make(map[string]string, len(problems))
	for _, p := range problems {
		byFile[filepath.Base(p.File)] = p.Message
	}
	if msg := byFile["no-title.md"]; !strings.Contains(msg, "title") {
		t.Errorf("no-title.md: %q should mention the missing title", msg)
	}
	if msg := byFile["bad-date.md"]; !strings.Contains(msg, "date") {
		t.Errorf("bad-date.md: %q should mention the date", msg)
	}
	if msg := byFile["dupe-b.md"]; !strings.Contains(msg, `duplicate slug "same"`) {
		t.Errorf("dupe-b.md: %q should mention the duplicate slug", msg)
	}
}

func TestCheckBrokenLinks(t *testing.T) {
	cfg := testBuildConfig(t)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "first.md"), `+++
title = "First"
date = "2024-01-10"
+++

Fine: [external](https://example.org/), [mail](mailto:x@example.org),
[fragment](#section), [relative](other/), [protocol relative](//cdn.example.org/x.js),
[self](/blog/first), [query](/blog/first/?utm=1).

Broken: [gone post](/blog/nowhere/), [gone file](/static/missing.png).
`)

	problems := checkProblems(t, cfg)
	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2: %v", len(problems), problems)
	}
	var got []string
	for _, p := range problems {
		got = append(got, p.Message)
	}
	joined := strings.Join(got, "\n")
	if !strings.Contains(joined, "/blog/nowhere/") || !strings.Contains(joined, "/static/missing.png") {
		t.Errorf("unexpected problems:\n%s", joined)
	}
}

func TestCheckDraftIsLinkTarget(t *testing.T) {
	cfg := testBuildConfig(t)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "live.md"), `+++
title = "Live"
date = "2024-01-10"
+++

A teaser for [the upcoming post](/blog/upcoming/).
`)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "posts", "upcoming.md"), `+++
title = "Upcoming"
date = "2024-01-11"
draft = true
+++

Soon.
`)

	if problems := checkProblems(t, cfg); len(problems) != 0 {
		t.Fatalf("links to drafts should resolve, got %v", problems)
	}
}

func TestCheckReservedPageSlug(t *testing.T) {
	cfg := testBuildConfig(t)
	writeContentFile(t, filepath.Join(cfg.ContentDir(), "pages", "tags.md"), `+++
title = "My Tags"
+++

Body.
`)

	problems := checkProblems(t, cfg)
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1: %v", len(problems), problems)
	}
	if !strings.Contains(problems[0].Message, "reserved") {
		t.Errorf("message = %q, want it to mention the reserved slug", problems[0].Message)
	}
}

func TestInternalTarget(t *testing.T) {
	tests := []struct {
		dest   string
		want   string
		wantOK bool
	}{
		{"/blog/first/", "/blog/first/", true},
		{"/blog/first", "/blog/first/", true},
		{"/blog/first/#heading", "/blog/first/", true},
		{"/blog/first?ref=home", "/blog/first/", true},
		{"/static/img/a.png", "/static/img/a.png", true},
		{"/feed.xml", "/feed.xml", true},
		{"/", "/", true},
		{"https://example.org/", "", false},
		{"//cdn.example.org/app.js", "", false},
		{"#section", "", false},
		{"other-post/", "", false},
		{"mailto:x@example.org", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := internalTarget(tt.dest)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("internalTarget(%q) = %q, %v; want %q, %v", tt.dest, got, ok, tt.want, tt.wantOK)
		}
	}
}
