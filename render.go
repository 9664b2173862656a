package mdpress

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/mdpress/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderToFile writes a templ component to path, creating parent directories.
// The static build is this function called once per route.
func renderToFile(path string, cmp templ.Component) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := cmp.Render(context.Background(), f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// siteView maps configuration to the view model shared by every template.
func siteView(cfg *Config, analytics bool) views.Site {
	site := views.Site{
		Title:       cfg.Site.Title,
		URL:         cfg.Site.URL,
		Description: cfg.Site.Description,
		Author:      cfg.Site.Author,
		Language:    cfg.Site.Language,
		Analytics:   analytics,
		Theme: views.Theme{
			Accent:     cfg.Theme.Accent,
			Background: cfg.Theme.Background,
			Text:       cfg.Theme.Text,
			FontBody:   cfg.Theme.FontBody,
			FontMono:   cfg.Theme.FontMono,
			DarkMode:   cfg.Theme.DarkMode,
			DateFormat: cfg.Theme.DateFormat,
		},
	}
	for _, m := range cfg.Menu {
		site.Menu = append(site.Menu, views.MenuItem{Name: m.Name, URL: m.URL})
	}
	for _, s := range cfg.Social {
		site.Social = append(site.Social, views.SocialLink{Name: s.Name, URL: s.URL})
	}
	return site
}

func postView(cfg *Config, p Post) views.Post {
	return views.Post{
		Slug:        p.Slug,
		Title:       p.Title,
		DateISO:     p.Date.Format("2006-01-02"),
		DateText:    p.Date.Format(cfg.Theme.DateFormat),
		Tags:        p.Tags,
		Description: p.Summary(),
		HTML:        p.HTML,
		Link:        p.Link,
		Draft:       p.Draft,
	}
}

func postViews(cfg *Config, posts []Post) []views.Post {
	out := make([]views.Post, len(posts))
	for i, p := range posts {
		out[i] = postView(cfg, p)
	}
	return out
}

func pageView(p Page) views.Page {
	return views.Page{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Summary(),
		HTML:        p.HTML,
		Link:        p.Link,
		Draft:       p.Draft,
	}
}

func pageViews(pages []Page) []views.Page {
	out := make([]views.Page, len(pages))
	for i, p := range pages {
		out[i] = pageView(p)
	}
	return out
}

func toViewImages(images []Image) []views.Image {
	out := make([]views.Image, len(images))
	for i, img := range images {
		out[i] = views.Image{
			Filename:   img.Filename,
			URL:        "/static/uploads/" + img.Filename,
			Width:      img.Width,
			Height:     img.Height,
			Size:       img.Size,
			UploadedAt: img.UploadedAt,
		}
	}
	return out
}
