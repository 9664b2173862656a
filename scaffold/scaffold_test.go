package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/mdpress"
	"github.com/eringen/mdpress/markdown"
)

func TestInitWritesWorkingSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	data := SiteData{
		Title:  "Test Site",
		URL:    "https://example.com",
		Author: "Tester",
		Date:   "2024-06-01",
	}
	created, err := Init(dir, data)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	want := []string{
		".env.example",
		".gitignore",
		"content/pages/about.md",
		"content/posts/hello-world.md",
		"press.toml",
		"static/favicon.svg",
	}
	if len(created) != len(want) {
		t.Fatalf("created %d files %v, want %d", len(created), created, len(want))
	}
	for i, w := range want {
		if created[i] != filepath.FromSlash(w) {
			t.Errorf("created[%d] = %q, want %q", i, created[i], w)
		}
	}

	// The generated config must load and validate as-is.
	cfg, err := mdpress.LoadConfig(filepath.Join(dir, "press.toml"))
	if err != nil {
		t.Fatalf("generated press.toml does not load: %v", err)
	}
	if cfg.Site.Title != "Test Site" {
		t.Errorf("Site.Title = %q", cfg.Site.Title)
	}

	// And the starter content must parse.
	src, err := os.ReadFile(filepath.Join(dir, "content", "posts", "hello-world.md"))
	if err != nil {
		t.Fatal(err)
	}
	m, body, err := markdown.Parse(src)
	if err != nil {
		t.Fatalf("hello-world.md: %v", err)
	}
	if m.Title != "Hello, world" {
		t.Errorf("starter post title = %q", m.Title)
	}
	if !strings.Contains(string(body), "Test Site") {
		t.Error("starter post does not mention the site title")
	}
	if d, err := markdown.ParseDate(m.Date); err != nil || d.Format("2006-01-02") != "2024-06-01" {
		t.Errorf("starter post date = %v, %v", m.Date, err)
	}
}

func TestInitRefusesNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Init(dir, SiteData{Title: "X", URL: "https://example.com"}); err == nil {
		t.Fatal("Init into a non-empty directory should fail")
	}
}

func TestNewPost(t *testing.T) {
	postsDir := filepath.Join(t.TempDir(), "content", "posts")
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	path, err := NewPost(postsDir, "my-first-post", "My first post", date)
	if err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	m, _, err := markdown.Parse(src)
	if err != nil {
		t.Fatalf("generated post: %v", err)
	}
	if m.Title != "My first post" || !m.Draft {
		t.Errorf("front matter = %+v, want title and draft set", m)
	}

	if _, err := NewPost(postsDir, "my-first-post", "Again", date); err == nil {
		t.Fatal("NewPost should refuse to overwrite")
	}
}
