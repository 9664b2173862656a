package mdpress

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is the config filename used when --config is not given.
const DefaultConfigFile = "press.toml"

// Config is the parsed press.toml plus secrets taken from the environment.
// Relative paths (content dir, static dir, output dir) resolve against Root,
// the directory the config file lives in.
type Config struct {
	Site    SiteConfig    `toml:"site"`
	Content ContentConfig `toml:"content"`
	Build   BuildConfig   `toml:"build"`
	Theme   ThemeConfig   `toml:"theme"`
	Serve   ServeConfig   `toml:"serve"`
	Menu    []MenuEntry   `toml:"menu"`
	Social  []SocialLink  `toml:"social"`

	// Secrets stay out of press.toml so the file can live in version control.
	// Populated from MDPRESS_ADMIN_PASSWORD_HASH and MDPRESS_SESSION_SECRET.
	AdminPasswordHash string `toml:"-"`
	SessionSecret     string `toml:"-"`

	// Root is the directory relative paths resolve against. LoadConfig sets
	// it to the config file's directory.
	Root string `toml:"-"`
}

// SiteConfig is the identity of the site, used in templates, feeds and meta tags.
type SiteConfig struct {
	Title       string `toml:"title"`
	URL         string `toml:"base_url"`
	Description string `toml:"description"`
	Author      string `toml:"author"`
	Language    string `toml:"language"`
}

// ContentConfig locates the source files.
type ContentConfig struct {
	Dir       string `toml:"dir"`        // posts/ and pages/ live under here
	StaticDir string `toml:"static_dir"` // copied verbatim into the output
}

// BuildConfig controls static output.
type BuildConfig struct {
	OutputDir     string `toml:"output_dir"`
	IncludeDrafts bool   `toml:"include_drafts"`
	IncludeFuture bool   `toml:"include_future"`
	FeedLimit     int    `toml:"feed_limit"`
	ImageMaxWidth int    `toml:"image_max_width"`
	ImageQuality  int    `toml:"image_quality"`
}

// ThemeConfig is the theme configuration surface: a handful of knobs the
// compiled theme exposes as CSS custom properties and formatting options.
type ThemeConfig struct {
	Accent     string `toml:"accent"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
	FontBody   string `toml:"font_body"`
	FontMono   string `toml:"font_mono"`
	DarkMode   string `toml:"dark_mode"` // "auto" (follow the OS) or "off"
	DateFormat string `toml:"date_format"`
}

// ServeConfig controls the development / self-host server.
type ServeConfig struct {
	Addr          string   `toml:"addr"`
	CacheTTL      Duration `toml:"cache_ttl"`
	CookieSecure  bool     `toml:"cookie_secure"`
	Analytics     bool     `toml:"analytics"`
	AnalyticsDB   string   `toml:"analytics_db"`
	RetentionDays int      `toml:"analytics_retention_days"`
}

// MenuEntry is one link in the site navigation.
type MenuEntry struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// SocialLink is one link in the footer.
type SocialLink struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Duration wraps time.Duration so TOML values can be written as "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for go-toml.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads, defaults and validates a press.toml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Root = filepath.Dir(abs)
	cfg.setDefaults()
	cfg.AdminPasswordHash = os.Getenv("MDPRESS_ADMIN_PASSWORD_HASH")
	cfg.SessionSecret = os.Getenv("MDPRESS_SESSION_SECRET")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Content.StaticDir == "" {
		c.Content.StaticDir = "static"
	}
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = "public"
	}
	if c.Build.FeedLimit == 0 {
		c.Build.FeedLimit = 20
	}
	if c.Build.ImageMaxWidth == 0 {
		c.Build.ImageMaxWidth = 1600
	}
	if c.Build.ImageQuality == 0 {
		c.Build.ImageQuality = 80
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = "#1a5fb4"
	}
	if c.Theme.Background == "" {
		c.Theme.Background = "#fdfdfc"
	}
	if c.Theme.Text == "" {
		c.Theme.Text = "#1c1c1a"
	}
	if c.Theme.FontBody == "" {
		c.Theme.FontBody = "Georgia, 'Times New Roman', serif"
	}
	if c.Theme.FontMono == "" {
		c.Theme.FontMono = "'SF Mono', Menlo, Consolas, monospace"
	}
	if c.Theme.DarkMode == "" {
		c.Theme.DarkMode = "auto"
	}
	if c.Theme.DateFormat == "" {
		c.Theme.DateFormat = "January 2, 2006"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":3000"
	}
	if c.Serve.CacheTTL.Duration == 0 {
		c.Serve.CacheTTL.Duration = 5 * time.Second
	}
	if c.Serve.AnalyticsDB == "" {
		c.Serve.AnalyticsDB = "data/analytics.db"
	}
	if c.Serve.RetentionDays == 0 {
		c.Serve.RetentionDays = 365
	}
}

var reHexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the config shape. Called by LoadConfig; exported so
// programmatic configs get the same treatment.
func (c *Config) Validate() error {
	err := validation.Errors{
		"site.title":          validation.Validate(c.Site.Title, validation.Required),
		"site.base_url":       validation.Validate(c.Site.URL, validation.Required, validation.By(checkBaseURL)),
		"build.feed_limit":    validation.Validate(c.Build.FeedLimit, validation.Min(1), validation.Max(500)),
		"build.image_quality": validation.Validate(c.Build.ImageQuality, validation.Min(1), validation.Max(100)),
		"theme.accent":        validation.Validate(c.Theme.Accent, validation.Match(reHexColor)),
		"theme.background":    validation.Validate(c.Theme.Background, validation.Match(reHexColor)),
		"theme.text":          validation.Validate(c.Theme.Text, validation.Match(reHexColor)),
		"theme.dark_mode":     validation.Validate(c.Theme.DarkMode, validation.In("auto", "off")),
	}.Filter()
	if err != nil {
		return err
	}
	for i, m := range c.Menu {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.URL) == "" {
			return fmt.Errorf("menu entry %d: name and url are both required", i+1)
		}
	}
	for i, s := range c.Social {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("social entry %d: name and url are both required", i+1)
		}
	}
	return nil
}

func checkBaseURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL like https://example.com")
	}
	return nil
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ContentDir returns the absolute content directory.
func (c *Config) ContentDir() string { return c.resolve(c.Content.Dir) }

// PostsDir returns the absolute posts directory.
func (c *Config) PostsDir() string { return filepath.Join(c.ContentDir(), "posts") }

// PagesDir returns the absolute pages directory.
func (c *Config) PagesDir() string { return filepath.Join(c.ContentDir(), "pages") }

// StaticDir returns the absolute static assets directory.
func (c *Config) StaticDir() string { return c.resolve(c.Content.StaticDir) }

// OutputDir returns the absolute build output directory.
func (c *Config) OutputDir() string { return c.resolve(c.Build.OutputDir) }

// AnalyticsDBPath returns the absolute analytics database path.
func (c *Config) AnalyticsDBPath() string { return c.resolve(c.Serve.AnalyticsDB) }

// AdminEnabled reports whether the web editor should be mounted: it needs a
// password hash and a session secret.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.SessionSecret != ""
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are mounted, before Start.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}
