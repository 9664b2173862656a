// Package analytics provides privacy-aware visit counting for a blog.
// No cookies are set and no raw IP addresses or user agents are stored:
// visitors are identified by a salted fingerprint that cannot be reversed
// and rotates with the per-installation salt.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// salt holds the per-installation secret for fingerprint hashing.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads the installation salt from the store, generating and
// persisting one on first run. Call it once at startup before serving.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// Visit is one human page view.
type Visit struct {
	ID          int64     `json:"-"`
	VisitorID   string    `json:"visitor_id"`
	SessionID   string    `json:"session_id"`
	IPHash      string    `json:"-"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"`
	Path        string    `json:"path"`
	Referrer    string    `json:"referrer"`
	ScreenSize  string    `json:"screen_size"`
	Timestamp   time.Time `json:"timestamp"`
	DurationSec int       `json:"duration_sec"`
}

// BotVisit is one crawler page view, counted separately from humans.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats aggregates human visits over a time range.
type Stats struct {
	Period         string          `json:"period"`
	UniqueVisitors int             `json:"unique_visitors"`
	TotalViews     int             `json:"total_views"`
	AvgDuration    int             `json:"avg_duration_sec"`
	TopPages       []PageStat      `json:"top_pages"`
	Browsers       []DimensionStat `json:"browsers"`
	Devices        []DimensionStat `json:"devices"`
	Referrers      []DimensionStat `json:"referrers"`
	DailyViews     []DailyView     `json:"daily_views"`
}

// BotStats aggregates crawler visits over a time range.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	TopPages    []PageStat      `json:"top_pages"`
	DailyVisits []DailyView     `json:"daily_visits"`
}

// PageStat counts views of one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DimensionStat is one row of a breakdown (browser, device, referrer, bot).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView counts views in one bucket: a day, an hour or a month
// depending on the requested period.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// HashIP returns a salted, truncated SHA-256 of an IP address.
func HashIP(ip string) string {
	return saltedHash(ip)
}

// VisitorID derives the anonymous visitor fingerprint from IP and
// User-Agent. Same inputs give the same ID for as long as the salt lives.
func VisitorID(ip, userAgent string) string {
	return saltedHash(ip + "|" + userAgent)
}

func saltedHash(input string) string {
	h := sha256.New()
	h.Write([]byte(salt.value + input))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// uaPattern maps a lowercase User-Agent substring to a display name.
// Order matters: the first match wins.
type uaPattern struct {
	substr string
	name   string
}

var browserPatterns = []uaPattern{
	{"firefox", "Firefox"},
	{"opr", "Opera"},
	{"opera", "Opera"},
	{"edg", "Edge"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
}

// osPatterns checks Android before Linux: Android UAs contain "linux".
var osPatterns = []uaPattern{
	{"windows", "Windows"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"macintosh", "macOS"},
	{"mac os", "macOS"},
	{"linux", "Linux"},
}

// devicePatterns checks tablets before mobile: iPad UAs contain "mobile".
var devicePatterns = []uaPattern{
	{"tablet", "Tablet"},
	{"ipad", "Tablet"},
	{"mobile", "Mobile"},
}

func firstMatch(ua string, patterns []uaPattern, fallback string) string {
	for _, p := range patterns {
		if strings.Contains(ua, p.substr) {
			return p.name
		}
	}
	return fallback
}

// ParseUserAgent extracts browser, OS and device class from a User-Agent.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)
	browser = firstMatch(ua, browserPatterns, "Other")
	os = firstMatch(ua, osPatterns, "Other")
	device = firstMatch(ua, devicePatterns, "Desktop")
	return
}

// knownBots names the crawlers worth reporting individually. IsBot and
// BotName share the table so every named bot is also detected.
var knownBots = []uaPattern{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"mj12bot", "Majestic"},
	{"dotbot", "Moz"},
	{"slurp", "Yahoo Slurp"},
	{"gptbot", "GPTBot"},
	{"claudebot", "ClaudeBot"},
}

var genericBotMarkers = []string{"bot", "crawler", "spider", "crawl", "scrape"}

// IsBot reports whether the User-Agent looks like a crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, b := range knownBots {
		if strings.Contains(ua, b.substr) {
			return true
		}
	}
	for _, marker := range genericBotMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// BotName returns a display name for a crawler User-Agent.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range knownBots {
		if strings.Contains(ua, b.substr) {
			return b.name
		}
	}
	switch {
	case strings.Contains(ua, "crawl"):
		return "Generic Crawler"
	case strings.Contains(ua, "spider"):
		return "Generic Spider"
	case strings.Contains(ua, "bot"):
		return "Other Bot"
	}
	return "Unknown"
}

// searchEngines shortcuts frequent referrer domains to a friendly name.
var searchEngines = []uaPattern{
	{"google.", "Google"},
	{"bing.", "Bing"},
	{"duckduckgo.", "DuckDuckGo"},
	{"yahoo.", "Yahoo"},
	{"github.", "GitHub"},
}

var referrerDomainRe = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer reduces a referrer URL to a domain or search-engine name.
// An empty referrer is a direct visit.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, e := range searchEngines {
		if strings.Contains(lower, e.substr) {
			return e.name
		}
	}
	if m := referrerDomainRe.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
