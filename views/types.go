package views

// Site carries everything a template needs to know about the site itself.
// Handlers and the build map it from configuration once per render.
type Site struct {
	Title       string
	URL         string
	Description string
	Author      string
	Language    string
	Menu        []MenuItem
	Social      []SocialLink
	Theme       Theme

	// Analytics injects the collection script into public pages when serving.
	Analytics bool
}

// MenuItem is one entry in the site navigation.
type MenuItem struct {
	Name string
	URL  string
}

// SocialLink is one entry in the footer link list.
type SocialLink struct {
	Name string
	URL  string
}

// Theme is the presentation surface exposed through configuration: colors,
// fonts, dark mode and date formatting. Everything else is the stylesheet's
// business.
type Theme struct {
	Accent     string
	Background string
	Text       string
	FontBody   string
	FontMono   string
	DarkMode   string // "auto" or "off"
	DateFormat string
}

// Post is the view model for one blog post. Dates arrive preformatted so
// templates never deal with time zones or layouts.
type Post struct {
	Slug        string
	Title       string
	DateISO     string // 2006-01-02, for <time datetime>
	DateText    string // formatted per the theme's date_format
	Tags        []string
	Description string
	HTML        string // rendered body, embedded as-is
	Link        string
	Draft       bool
}

// Page is the view model for a standalone page.
type Page struct {
	Slug        string
	Title       string
	Description string
	HTML        string
	Link        string
	Draft       bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string   // canonical + og:url
	OGType      string   // "website" or "article"
	JSONLD      []string // schema.org blocks, already serialized
}

// Image describes an upload listed in the admin image manager.
type Image struct {
	Filename   string
	URL        string
	Width      int
	Height     int
	Size       int
	UploadedAt string
}
