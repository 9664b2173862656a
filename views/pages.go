package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Home renders the landing page: site intro plus the newest posts.
func Home(site Site, posts []Post) templ.Component {
	meta := PageMeta{
		Title:       site.Title,
		Description: site.Description,
		URL:         buildURL(site.URL),
		OGType:      "website",
		JSONLD:      []string{WebsiteJsonLD(site)},
	}
	return layout(site, meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		if site.Description != "" {
			fmt.Fprintf(&b, "<p class=\"intro\">%s</p>\n", esc(site.Description))
		}
		b.WriteString("<section class=\"post-list\">\n<h2>Latest posts</h2>\n")
		writePostItems(&b, posts)
		if len(posts) == 0 {
			b.WriteString("<p>Nothing here yet.</p>\n")
		}
		b.WriteString("<p class=\"more\"><a href=\"/blog/\">All posts</a></p>\n</section>\n")
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// PostList renders the blog index or a tag page.
func PostList(site Site, title string, posts []Post, activeTag string, tags []string) templ.Component {
	pageURL := buildURL(site.URL, "blog")
	if activeTag != "" {
		pageURL = buildURL(site.URL, "tags", activeTag)
	}
	meta := PageMeta{
		Title:       title + " · " + site.Title,
		Description: site.Description,
		URL:         pageURL,
		OGType:      "website",
	}
	return layout(site, meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(title))
		if len(tags) > 0 {
			b.WriteString("<nav class=\"tags\">\n")
			writeTagLink(&b, "All", "/blog/", activeTag == "")
			for _, t := range tags {
				writeTagLink(&b, t, "/tags/"+PathEscape(t)+"/", t == activeTag)
			}
			b.WriteString("</nav>\n")
		}
		b.WriteString("<section class=\"post-list\">\n")
		writePostItems(&b, posts)
		if len(posts) == 0 {
			b.WriteString("<p>No posts found.</p>\n")
		}
		b.WriteString("</section>\n")
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// PostPage renders one post with related posts below.
func PostPage(site Site, post Post, related []Post) templ.Component {
	meta := PageMeta{
		Title:       post.Title + " · " + site.Title,
		Description: post.Description,
		URL:         buildURL(site.URL, "blog", post.Slug),
		OGType:      "article",
		JSONLD:      []string{BlogPostingJsonLD(site, post)},
	}
	return layout(site, meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<article class=\"post\">\n<header>\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(post.Title))
		writePostMeta(&b, post)
		b.WriteString("</header>\n<div class=\"post-body\">\n")
		b.WriteString(post.HTML)
		b.WriteString("\n</div>\n</article>\n")
		if len(related) > 0 {
			b.WriteString("<aside class=\"related\">\n<h2>Related posts</h2>\n")
			writePostItems(&b, related)
			b.WriteString("</aside>\n")
		}
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// PageView renders a standalone page.
func PageView(site Site, page Page) templ.Component {
	meta := PageMeta{
		Title:       page.Title + " · " + site.Title,
		Description: page.Description,
		URL:         buildURL(site.URL, page.Slug),
		OGType:      "website",
	}
	return layout(site, meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<article class=\"page\">\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(page.Title))
		if page.Draft {
			b.WriteString("<p><span class=\"draft-badge\">draft</span></p>\n")
		}
		b.WriteString("<div class=\"post-body\">\n")
		b.WriteString(page.HTML)
		b.WriteString("\n</div>\n</article>\n")
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	meta := PageMeta{Title: "Not found · " + site.Title}
	return layout(site, meta, staticMessage("404", "There is nothing at this address.", true))
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	meta := PageMeta{Title: "Something broke · " + site.Title}
	return layout(site, meta, staticMessage("500", "Something went wrong. Try again in a moment.", false))
}

func staticMessage(code, text string, homeLink bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		fmt.Fprintf(&b, "<section class=\"error-page\">\n<h1>%s</h1>\n<p>%s</p>\n", esc(code), esc(text))
		if homeLink {
			b.WriteString("<p><a href=\"/\">Back home</a></p>\n")
		}
		b.WriteString("</section>\n")
		_, err := w.Write(b.Bytes())
		return err
	})
}

func writePostItems(b *bytes.Buffer, posts []Post) {
	for _, p := range posts {
		b.WriteString("<article class=\"post-item\">\n")
		fmt.Fprintf(b, "<h3><a href=\"%s\">%s</a></h3>\n", esc(p.Link), esc(p.Title))
		writePostMeta(b, p)
		if p.Description != "" {
			fmt.Fprintf(b, "<p>%s</p>\n", esc(p.Description))
		}
		b.WriteString("</article>\n")
	}
}

func writePostMeta(b *bytes.Buffer, p Post) {
	fmt.Fprintf(b, "<p class=\"post-meta\"><time datetime=\"%s\">%s</time>", esc(p.DateISO), esc(p.DateText))
	for _, t := range p.Tags {
		fmt.Fprintf(b, " <a class=\"tag\" href=\"/tags/%s/\">%s</a>", PathEscape(t), esc(t))
	}
	if p.Draft {
		b.WriteString(" <span class=\"draft-badge\">draft</span>")
	}
	b.WriteString("</p>\n")
}

func writeTagLink(b *bytes.Buffer, name, href string, active bool) {
	class := "tag"
	if active {
		class = "tag active"
	}
	fmt.Fprintf(b, "<a class=\"%s\" href=\"%s\">%s</a>\n", class, esc(href), esc(name))
}
