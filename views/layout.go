package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// layout wraps body in the full HTML document: head with metadata and theme
// variables, site header with navigation, footer with social links.
func layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<!doctype html>\n")
		fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n", esc(site.Language))
		b.WriteString("<meta charset=\"utf-8\">\n")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", esc(meta.Title))
		if meta.Description != "" {
			fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", esc(meta.Description))
		}
		if meta.URL != "" {
			fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", esc(meta.URL))
			fmt.Fprintf(&b, "<meta property=\"og:url\" content=\"%s\">\n", esc(meta.URL))
		}
		fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\">\n", esc(meta.Title))
		if meta.Description != "" {
			fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\">\n", esc(meta.Description))
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		fmt.Fprintf(&b, "<meta property=\"og:type\" content=\"%s\">\n", esc(ogType))
		fmt.Fprintf(&b, "<meta property=\"og:site_name\" content=\"%s\">\n", esc(site.Title))
		if site.Theme.DarkMode == "auto" {
			b.WriteString("<meta name=\"color-scheme\" content=\"light dark\">\n")
		}
		fmt.Fprintf(&b, "<link rel=\"alternate\" type=\"application/rss+xml\" title=\"%s\" href=\"/feed.xml\">\n", esc(site.Title))
		b.WriteString("<link rel=\"icon\" href=\"/static/favicon.svg\" type=\"image/svg+xml\">\n")
		fmt.Fprintf(&b, "<style>%s</style>\n", cssVars(site.Theme))
		b.WriteString("<link rel=\"stylesheet\" href=\"/static/style.css\">\n")
		for _, block := range meta.JSONLD {
			fmt.Fprintf(&b, "<script type=\"application/ld+json\">%s</script>\n", block)
		}
		if site.Analytics {
			b.WriteString("<script defer src=\"/static/analytics.js\"></script>\n")
		}
		b.WriteString("</head>\n<body>\n")

		b.WriteString("<header class=\"site-header\">\n")
		fmt.Fprintf(&b, "<a class=\"site-title\" href=\"/\">%s</a>\n", esc(site.Title))
		b.WriteString("<nav>\n")
		for _, m := range site.Menu {
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", esc(m.URL), esc(m.Name))
		}
		b.WriteString("</nav>\n</header>\n")

		b.WriteString("<main>\n")
		if err := body.Render(ctx, &b); err != nil {
			return err
		}
		b.WriteString("</main>\n")

		b.WriteString("<footer class=\"site-footer\">\n")
		if len(site.Social) > 0 {
			b.WriteString("<nav class=\"social\">\n")
			for _, s := range site.Social {
				fmt.Fprintf(&b, "<a href=\"%s\" rel=\"me\">%s</a>\n", esc(s.URL), esc(s.Name))
			}
			b.WriteString("</nav>\n")
		}
		b.WriteString("<p><a href=\"/feed.xml\">RSS</a>")
		if site.Author != "" {
			fmt.Fprintf(&b, " &middot; %s", esc(site.Author))
		}
		b.WriteString("</p>\n</footer>\n</body>\n</html>\n")

		_, err := w.Write(b.Bytes())
		return err
	})
}
