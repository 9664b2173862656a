// Package scaffold creates site directories and starter posts from
// embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/eringen/mdpress/markdown"
)

// Files use Go text/template syntax. The .tmpl suffix is stripped on
// write; dotenv and gitignore gain their leading dot there too, keeping
// the embedded tree visible to editors.
//
//go:embed all:templates
var templates embed.FS

// SiteData fills the scaffold templates.
type SiteData struct {
	Title  string
	URL    string
	Author string
	Date   string // today, YYYY-MM-DD
}

// Init writes a starter site into dir and returns the created files,
// relative to dir. The directory may exist but must be empty.
func Init(dir string, data SiteData) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("init site: %w", err)
	}
	if len(entries) > 0 {
		return nil, fmt.Errorf("init site: directory %s is not empty", dir)
	}

	var created []string
	const root = "templates"
	err = fs.WalkDir(templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(filepath.Join(dir, rel), 0o755)
		}

		out := strings.TrimSuffix(rel, ".tmpl")
		switch filepath.Base(out) {
		case "dotenv":
			out = filepath.Join(filepath.Dir(out), ".env.example")
		case "gitignore":
			out = filepath.Join(filepath.Dir(out), ".gitignore")
		}

		content, err := templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		outPath := filepath.Join(dir, out)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		created = append(created, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(created)
	return created, nil
}

// NewPost writes an empty draft post into postsDir and returns its path.
// It refuses to overwrite an existing file.
func NewPost(postsDir, slug, title string, date time.Time) (string, error) {
	path := filepath.Join(postsDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("new post: %s already exists", path)
	}
	content, err := markdown.Compose(markdown.Doc{
		Title: title,
		Date:  date,
		Draft: true,
	})
	if err != nil {
		return "", fmt.Errorf("new post: %w", err)
	}
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		return "", fmt.Errorf("new post: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("new post: %w", err)
	}
	return path, nil
}
