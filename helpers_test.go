package mdpress

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-slugged", "already-slugged"},
		{"C'est l'été!", "c-est-l-t"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Trailing punctuation!!!", "trailing-punctuation"},
		{"file_name_2024.md", "file-name-2024-md"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"blog", "my-post"}, "https://example.com/blog/my-post/"},
		{"https://example.com/", []string{"about"}, "https://example.com/about/"},
		{"https://example.com/sub", []string{"tags", "go"}, "https://example.com/sub/tags/go/"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b", "\t", "c"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterEmpty = %v, want %v", got, want)
	}
}

func TestRelatedPosts(t *testing.T) {
	current := Post{Slug: "a", Tags: []string{"Go", "web"}}
	posts := []Post{
		{Slug: "a", Tags: []string{"go"}},
		{Slug: "b", Tags: []string{"go", "databases"}},
		{Slug: "c", Tags: []string{"cooking"}},
		{Slug: "d", Tags: []string{"WEB"}},
	}
	related := RelatedPosts(current, posts)
	var slugs []string
	for _, p := range related {
		slugs = append(slugs, p.Slug)
	}
	want := []string{"b", "d"}
	if !reflect.DeepEqual(slugs, want) {
		t.Errorf("related slugs = %v, want %v", slugs, want)
	}
}

func TestSummarize(t *testing.T) {
	body := `# Heading

First paragraph with a [link](https://example.com) and *emphasis*.
It continues on a second line.

Second paragraph.`
	got := Summarize(body, 240)
	want := "First paragraph with a link and emphasis. It continues on a second line."
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarizeTruncates(t *testing.T) {
	body := strings.Repeat("word ", 100)
	got := Summarize(body, 40)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Summarize = %q, want ellipsis suffix", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "…"))); n > 40 {
		t.Errorf("summary length = %d runes, want <= 40", n)
	}
}

func TestSummarizeSkipsNonProse(t *testing.T) {
	body := "```go\nfunc main() {}\n```\n\n![alt](/static/a.png)\n\nActual prose here."
	if got, want := Summarize(body, 240), "Actual prose here."; got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	cfg := SiteConfig{Title: "My Blog", URL: "https://example.com", Description: "A blog", Author: "Sam"}
	got := WebsiteJsonLD(cfg)
	for _, want := range []string{`"@type":"WebSite"`, `"name":"My Blog"`, `"Sam"`} {
		if !strings.Contains(got, want) {
			t.Errorf("WebsiteJsonLD missing %s in %s", want, got)
		}
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := Post{
		Slug:        "my-post",
		Title:       "My Post",
		Description: "About things",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"go", "web"},
	}
	cfg := SiteConfig{Title: "My Blog", URL: "https://example.com", Author: "Sam"}
	got := BlogPostingJsonLD(post, cfg)
	for _, want := range []string{
		`"@type":"BlogPosting"`,
		`"headline":"My Post"`,
		`"datePublished":"2024-03-01"`,
		`"url":"https://example.com/blog/my-post/"`,
		`"keywords":"go, web"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BlogPostingJsonLD missing %s in %s", want, got)
		}
	}
}
