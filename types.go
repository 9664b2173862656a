package mdpress

import "time"

// Post is the core content type: one Markdown file under content/posts,
// front matter plus the rendered body.
type Post struct {
	Slug        string
	Title       string
	Date        time.Time
	Tags        []string
	Description string
	Body        string // raw Markdown body, front matter stripped
	HTML        string // rendered body
	Link        string // site-relative, e.g. /blog/my-post/
	Draft       bool

	SourcePath string // Markdown file the post was loaded from
	ModTime    time.Time
}

// Published reports whether the post is publicly visible at the given time:
// not a draft and not dated in the future.
func (p Post) Published(now time.Time) bool {
	return !p.Draft && !p.Date.After(now)
}

// Summary is the description for meta tags and feed items: the front matter
// description when there is one, otherwise the opening of the body.
func (p Post) Summary() string {
	if p.Description != "" {
		return p.Description
	}
	return Summarize(p.Body, 240)
}

// Page is a standalone page (about, colophon, ...) under content/pages.
// Pages carry no date or tags and render at /<slug>/.
type Page struct {
	Slug        string
	Title       string
	Description string
	Body        string
	HTML        string
	Link        string
	Draft       bool

	SourcePath string
	ModTime    time.Time
}

// Summary is the page counterpart of Post.Summary.
func (p Page) Summary() string {
	if p.Description != "" {
		return p.Description
	}
	return Summarize(p.Body, 240)
}

// Image describes a processed upload under static/uploads.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}
