package mdpress

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eringen/mdpress/markdown"
)

// ErrNotFound is returned when no content file matches a slug.
var ErrNotFound = errors.New("not found")

// reservedSlugs are page slugs that would shadow built-in routes.
var reservedSlugs = map[string]struct{}{
	"blog":   {},
	"tags":   {},
	"static": {},
	"admin":  {},
}

// Store reads posts and pages from a content directory. Every call re-reads
// the files so edits show up immediately; SiteCache sits in front of it when
// serving. A missing posts/ or pages/ directory is treated as empty.
type Store struct {
	postsDir string
	pagesDir string
	now      func() time.Time
}

// NewStore returns a store rooted at contentDir, with posts under
// contentDir/posts and pages under contentDir/pages.
func NewStore(contentDir string) *Store {
	return &Store{
		postsDir: filepath.Join(contentDir, "posts"),
		pagesDir: filepath.Join(contentDir, "pages"),
		now:      time.Now,
	}
}

// ListPosts returns published posts ordered by date descending. If tag is
// non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListPosts(tag string) ([]Post, error) {
	all, err := s.loadPosts()
	if err != nil {
		return nil, err
	}
	now := s.now()
	tag = strings.ToLower(strings.TrimSpace(tag))
	var posts []Post
	for _, p := range all {
		if !p.Published(now) {
			continue
		}
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// ListAllPosts returns every post, drafts and future-dated ones included,
// ordered by date descending.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.loadPosts()
}

// ListTags returns a sorted, deduplicated slice of all tags on published posts.
func (s *Store) ListTags() ([]string, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// GetPostAny returns a post by slug regardless of draft status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	posts, err := s.loadPosts()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// ListPages returns non-draft pages ordered by slug.
func (s *Store) ListPages() ([]Page, error) {
	all, err := s.loadPages()
	if err != nil {
		return nil, err
	}
	var pages []Page
	for _, p := range all {
		if !p.Draft {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// ListAllPages returns every page including drafts.
func (s *Store) ListAllPages() ([]Page, error) {
	return s.loadPages()
}

// GetPage returns a single non-draft page by slug.
func (s *Store) GetPage(slug string) (Page, error) {
	pages, err := s.ListPages()
	if err != nil {
		return Page{}, err
	}
	for _, p := range pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Page{}, ErrNotFound
}

// GetPageAny returns a page by slug regardless of draft status (for admin).
func (s *Store) GetPageAny(slug string) (Page, error) {
	pages, err := s.loadPages()
	if err != nil {
		return Page{}, err
	}
	for _, p := range pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Page{}, ErrNotFound
}

// SavePost writes a post to disk as TOML front matter plus body. A post with
// no SourcePath is created under posts/ as <slug>.md; existing posts are
// rewritten in place, whatever format they were read in.
func (s *Store) SavePost(p Post) error {
	slug := Slugify(p.Slug)
	if slug == "" {
		return errors.New("save post: empty slug")
	}
	path := p.SourcePath
	if path == "" {
		path = filepath.Join(s.postsDir, slug+".md")
	}
	doc := markdown.Doc{
		Title:       strings.TrimSpace(p.Title),
		Date:        p.Date,
		Tags:        normalizeTags(p.Tags),
		Description: strings.TrimSpace(p.Description),
		Draft:       p.Draft,
		Body:        p.Body,
	}
	// Only record an explicit slug when the filename would derive a different one.
	base := filepath.Base(path)
	if derived := Slugify(strings.TrimSuffix(base, filepath.Ext(base))); derived != slug {
		doc.Slug = slug
	}
	data, err := markdown.Compose(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// DeletePost removes the content file behind slug.
func (s *Store) DeletePost(slug string) error {
	post, err := s.GetPostAny(slug)
	if err != nil {
		return err
	}
	if err := os.Remove(post.SourcePath); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SavePage writes a standalone page to disk, same conventions as SavePost
// but without a date.
func (s *Store) SavePage(p Page) error {
	slug := Slugify(p.Slug)
	if slug == "" {
		return errors.New("save page: empty slug")
	}
	if _, ok := reservedSlugs[slug]; ok {
		return fmt.Errorf("save page: slug %q is reserved", slug)
	}
	path := p.SourcePath
	if path == "" {
		path = filepath.Join(s.pagesDir, slug+".md")
	}
	doc := markdown.Doc{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Draft:       p.Draft,
		Body:        p.Body,
	}
	base := filepath.Base(path)
	if derived := Slugify(strings.TrimSuffix(base, filepath.Ext(base))); derived != slug {
		doc.Slug = slug
	}
	data, err := markdown.Compose(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	return nil
}

// DeletePage removes the content file behind slug.
func (s *Store) DeletePage(slug string) error {
	page, err := s.GetPageAny(slug)
	if err != nil {
		return err
	}
	if err := os.Remove(page.SourcePath); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

func (s *Store) loadPosts() ([]Post, error) {
	files, err := listMarkdownFiles(s.postsDir)
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	seen := make(map[string]string, len(files))
	posts := make([]Post, 0, len(files))
	for _, path := range files {
		post, err := s.loadPostFile(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[post.Slug]; ok {
			return nil, fmt.Errorf("duplicate slug %q: %s and %s", post.Slug, prev, path)
		}
		seen[post.Slug] = path
		posts = append(posts, post)
	}
	sortPosts(posts)
	return posts, nil
}

func (s *Store) loadPostFile(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Post{}, err
	}
	matter, body, err := markdown.Parse(data)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(matter.Title) == "" {
		return Post{}, fmt.Errorf("%s: front matter needs a title", path)
	}
	date, err := markdown.ParseDate(matter.Date)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", path, err)
	}
	if date.IsZero() {
		return Post{}, fmt.Errorf("%s: front matter needs a date", path)
	}
	slug := contentSlug(matter.Slug, path)
	if slug == "" {
		return Post{}, fmt.Errorf("%s: cannot derive a slug", path)
	}
	html, err := markdown.Render(body)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", path, err)
	}
	return Post{
		Slug:        slug,
		Title:       strings.TrimSpace(matter.Title),
		Date:        date,
		Tags:        normalizeTags(matter.Tags),
		Description: strings.TrimSpace(matter.Description),
		Body:        string(body),
		HTML:        string(html),
		Link:        "/blog/" + slug + "/",
		Draft:       matter.Draft,
		SourcePath:  path,
		ModTime:     info.ModTime(),
	}, nil
}

func (s *Store) loadPages() ([]Page, error) {
	files, err := listMarkdownFiles(s.pagesDir)
	if err != nil {
		return nil, fmt.Errorf("scan pages: %w", err)
	}
	seen := make(map[string]string, len(files))
	pages := make([]Page, 0, len(files))
	for _, path := range files {
		page, err := s.loadPageFile(path)
		if err != nil {
			return nil, err
		}
		if _, ok := reservedSlugs[page.Slug]; ok {
			return nil, fmt.Errorf("%s: slug %q is reserved", path, page.Slug)
		}
		if prev, ok := seen[page.Slug]; ok {
			return nil, fmt.Errorf("duplicate slug %q: %s and %s", page.Slug, prev, path)
		}
		seen[page.Slug] = path
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

func (s *Store) loadPageFile(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Page{}, err
	}
	matter, body, err := markdown.Parse(data)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(matter.Title) == "" {
		return Page{}, fmt.Errorf("%s: front matter needs a title", path)
	}
	slug := contentSlug(matter.Slug, path)
	if slug == "" {
		return Page{}, fmt.Errorf("%s: cannot derive a slug", path)
	}
	html, err := markdown.Render(body)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	return Page{
		Slug:        slug,
		Title:       strings.TrimSpace(matter.Title),
		Description: strings.TrimSpace(matter.Description),
		Body:        string(body),
		HTML:        string(html),
		Link:        "/" + slug + "/",
		Draft:       matter.Draft,
		SourcePath:  path,
		ModTime:     info.ModTime(),
	}, nil
}

// contentSlug derives the slug for a content file: an explicit front matter
// slug wins, otherwise the filename without extension. Both are slugified.
func contentSlug(override, path string) string {
	if o := strings.TrimSpace(override); o != "" {
		return Slugify(o)
	}
	base := filepath.Base(path)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

// listMarkdownFiles returns the .md files under dir, recursively, skipping
// files and directories whose name starts with "_" or ".". A missing dir
// yields an empty list.
func listMarkdownFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func sortPosts(posts []Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func hasTag(p Post, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
