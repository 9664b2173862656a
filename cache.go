package mdpress

import (
	"strings"
	"sync"
	"time"
)

// SiteCache is an in-memory snapshot of published posts, pages and tags with
// TTL. Serving reads go through it so a request does not re-parse the whole
// content directory; edits call Invalidate to force a fresh scan.
type SiteCache struct {
	mu      sync.RWMutex
	posts   []Post
	pages   []Page
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewSiteCache creates a SiteCache backed by the given Store.
func NewSiteCache(s *Store, ttl time.Duration) *SiteCache {
	return &SiteCache{store: s, ttl: ttl}
}

func (c *SiteCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh scan.
func (c *SiteCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.pages = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *SiteCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return err
	}
	pages, err := c.store.ListPages()
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	c.posts = posts
	c.pages = pages
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SiteCache) ensureLoaded() ([]Post, []Page, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, pages, tags := c.posts, c.pages, c.tags
		c.mu.RUnlock()
		return posts, pages, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.pages, c.tags, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *SiteCache) ListPosts(tag string) ([]Post, error) {
	posts, _, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []Post
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags from published posts.
func (c *SiteCache) ListTags() ([]string, error) {
	_, _, tags, err := c.ensureLoaded()
	return tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *SiteCache) GetPost(slug string) (Post, error) {
	posts, _, _, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// ListPages returns non-draft pages from the cache.
func (c *SiteCache) ListPages() ([]Page, error) {
	_, pages, _, err := c.ensureLoaded()
	return pages, err
}

// GetPage returns a single non-draft page by slug from the cache.
func (c *SiteCache) GetPage(slug string) (Page, error) {
	_, pages, _, err := c.ensureLoaded()
	if err != nil {
		return Page{}, err
	}
	for _, p := range pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Page{}, ErrNotFound
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
