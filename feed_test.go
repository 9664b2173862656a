package mdpress

import (
	"strings"
	"testing"
	"time"
)

func feedConfig() *Config {
	cfg := &Config{
		Site: SiteConfig{
			Title:       "Test Blog",
			URL:         "https://example.com",
			Description: "A test blog",
		},
	}
	cfg.setDefaults()
	return cfg
}

func feedPosts() []Post {
	return []Post{
		{
			Slug:        "newest",
			Title:       "Newest & Best",
			Description: "The newest post",
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			Slug:        "older",
			Title:       "Older",
			Description: "An older post",
			Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestFeedXML(t *testing.T) {
	out, err := feedXML(feedConfig(), feedPosts())
	if err != nil {
		t.Fatalf("feedXML: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		`<rss version="2.0">`,
		"<title>Test Blog</title>",
		"<link>https://example.com/blog/newest/</link>",
		"<guid>https://example.com/blog/newest/</guid>",
		"<title>Newest &amp; Best</title>",
		"<pubDate>Tue, 05 Mar 2024 00:00:00 +0000</pubDate>",
		"<language>en</language>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("feed missing %s\n%s", want, got)
		}
	}
}

func TestFeedXMLLimit(t *testing.T) {
	cfg := feedConfig()
	cfg.Build.FeedLimit = 1
	out, err := feedXML(cfg, feedPosts())
	if err != nil {
		t.Fatalf("feedXML: %v", err)
	}
	got := string(out)
	if strings.Contains(got, "<link>https://example.com/blog/older/</link>") {
		t.Errorf("feed includes post beyond limit:\n%s", got)
	}
	if got, want := strings.Count(got, "<item>"), 1; got != want {
		t.Errorf("item count = %d, want %d", got, want)
	}
}

func TestSitemapXML(t *testing.T) {
	pages := []Page{{Slug: "about", ModTime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}}
	out, err := sitemapXML(feedConfig(), feedPosts(), pages, []string{"go"})
	if err != nil {
		t.Fatalf("sitemapXML: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		`xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`,
		"<loc>https://example.com</loc>",
		"<loc>https://example.com/blog/</loc>",
		"<loc>https://example.com/blog/newest/</loc>",
		"<lastmod>2024-03-05</lastmod>",
		"<loc>https://example.com/about/</loc>",
		"<loc>https://example.com/tags/go/</loc>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("sitemap missing %s\n%s", want, got)
		}
	}
}

func TestRobotsTxt(t *testing.T) {
	got := robotsTxt(feedConfig())
	if !strings.Contains(got, "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt = %q, want sitemap line", got)
	}
	if !strings.HasPrefix(got, "User-agent: *\n") {
		t.Errorf("robots.txt = %q, want User-agent line first", got)
	}
}
