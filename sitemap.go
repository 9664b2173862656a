package mdpress

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapXML builds the sitemap covering every public route: home, blog
// index, posts, pages and tag pages.
func sitemapXML(cfg *Config, posts []Post, pages []Page, tags []string) ([]byte, error) {
	base := cfg.Site.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "blog")},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.Date.Format("2006-01-02"),
		})
	}
	for _, p := range pages {
		u := sitemapURL{Loc: BuildURL(base, p.Slug)}
		if !p.ModTime.IsZero() {
			u.LastMod = p.ModTime.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "tags", t)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func (a *App) renderSitemap(c echo.Context, posts []Post, pages []Page, tags []string) error {
	out, err := sitemapXML(a.Config, posts, pages, tags)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", out)
}

// robotsTxt points crawlers at the sitemap.
func robotsTxt(cfg *Config) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + strings.TrimRight(cfg.Site.URL, "/") + "/sitemap.xml\n"
}
