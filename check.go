package mdpress

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/eringen/mdpress/markdown"
)

// Problem is one issue Check found in the content tree.
type Problem struct {
	File    string // path relative to the site root
	Message string
}

func (p Problem) String() string {
	if p.File == "" {
		return p.Message
	}
	return p.File + ": " + p.Message
}

// Check validates every content file and the site-relative links between
// them. Unlike a build, it does not stop at the first broken file: all
// problems are collected so one run shows everything there is to fix.
func Check(cfg *Config) ([]Problem, error) {
	if _, err := os.Stat(cfg.ContentDir()); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	store := NewStore(cfg.ContentDir())

	var problems []Problem
	report := func(file, format string, args ...any) {
		problems = append(problems, Problem{
			File:    relTo(cfg.Root, file),
			Message: fmt.Sprintf(format, args...),
		})
	}
	reportErr := func(file string, err error) {
		// Loader errors carry the file path; the Problem already names it.
		report(file, "%s", strings.TrimPrefix(err.Error(), file+": "))
	}

	postFiles, err := listMarkdownFiles(store.postsDir)
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	postSlugs := make(map[string]string, len(postFiles))
	var posts []Post
	for _, file := range postFiles {
		p, err := store.loadPostFile(file)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if prev, ok := postSlugs[p.Slug]; ok {
			report(file, "duplicate slug %q, already used by %s", p.Slug, relTo(cfg.Root, prev))
			continue
		}
		postSlugs[p.Slug] = file
		posts = append(posts, p)
	}

	pageFiles, err := listMarkdownFiles(store.pagesDir)
	if err != nil {
		return nil, fmt.Errorf("scan pages: %w", err)
	}
	pageSlugs := make(map[string]string, len(pageFiles))
	var pages []Page
	for _, file := range pageFiles {
		p, err := store.loadPageFile(file)
		if err != nil {
			reportErr(file, err)
			continue
		}
		if _, ok := reservedSlugs[p.Slug]; ok {
			report(file, "slug %q is reserved", p.Slug)
			continue
		}
		if prev, ok := pageSlugs[p.Slug]; ok {
			report(file, "duplicate slug %q, already used by %s", p.Slug, relTo(cfg.Root, prev))
			continue
		}
		pageSlugs[p.Slug] = file
		pages = append(pages, p)
	}

	routes := siteRoutes(cfg, posts, pages)
	for _, p := range posts {
		checkLinks(cfg, p.SourcePath, []byte(p.Body), routes, report)
	}
	for _, p := range pages {
		checkLinks(cfg, p.SourcePath, []byte(p.Body), routes, report)
	}

	return problems, nil
}

// siteRoutes collects every path the built site serves, trailing slash
// included. Drafts and future posts count as link targets.
func siteRoutes(cfg *Config, posts []Post, pages []Page) map[string]bool {
	routes := map[string]bool{
		"/":                 true,
		"/blog/":            true,
		"/feed.xml":         true,
		"/sitemap.xml":      true,
		"/robots.txt":       true,
		"/static/style.css": true,
	}
	for _, p := range posts {
		routes[p.Link] = true
		for _, t := range p.Tags {
			routes["/tags/"+t+"/"] = true
		}
	}
	for _, p := range pages {
		routes[p.Link] = true
	}

	staticDir := cfg.StaticDir()
	if _, err := os.Stat(staticDir); err != nil {
		return routes
	}
	_ = filepath.WalkDir(staticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != staticDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(staticDir, p)
		if err != nil {
			return nil
		}
		routes["/static/"+filepath.ToSlash(rel)] = true
		return nil
	})
	return routes
}

func checkLinks(cfg *Config, file string, body []byte, routes map[string]bool, report func(string, string, ...any)) {
	for _, dest := range markdown.ExtractLinks(body) {
		target, ok := internalTarget(dest)
		if !ok {
			continue
		}
		if !routes[target] {
			report(file, "broken internal link %s", dest)
		}
	}
}

// internalTarget normalizes a link destination into a route key. Only
// site-absolute destinations are checked; relative paths, fragments and
// external URLs pass through unchecked.
func internalTarget(dest string) (string, bool) {
	if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		return "", false
	}
	target := dest
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "", false
	}
	// Directory routes carry a trailing slash, files keep their name.
	if !strings.HasSuffix(target, "/") && !strings.Contains(path.Base(target), ".") {
		target += "/"
	}
	return target, true
}

func relTo(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
