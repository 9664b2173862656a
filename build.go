package mdpress

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eringen/mdpress/views"
)

// buildMarker names the file a build drops into the output directory so
// the next build can tell its own output from a directory it must not wipe.
const buildMarker = ".mdpress"

// homePostLimit caps how many posts the home page lists.
const homePostLimit = 10

// BuildOptions control a static build beyond what press.toml configures.
type BuildOptions struct {
	// Force wipes a non-empty output directory even when it was not
	// produced by a previous build.
	Force bool
}

// BuildResult reports what a static build produced.
type BuildResult struct {
	Posts         int
	Pages         int
	TagPages      int
	Assets        int
	ImagesResized int
	OutputDir     string
	Duration      time.Duration
}

// Build renders the whole site into cfg.Build.OutputDir: the home page,
// the blog index, one page per post, one page per tag, standalone pages,
// the 404 page, feed.xml, sitemap.xml, robots.txt and the static assets.
func Build(cfg *Config) (*BuildResult, error) {
	return BuildWith(cfg, BuildOptions{})
}

// BuildWith is Build with explicit options.
func BuildWith(cfg *Config, opts BuildOptions) (*BuildResult, error) {
	if _, err := os.Stat(cfg.ContentDir()); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return buildSite(cfg, opts, NewStore(cfg.ContentDir()))
}

func buildSite(cfg *Config, opts BuildOptions, store *Store) (*BuildResult, error) {
	start := time.Now()
	now := store.now()

	all, err := store.ListAllPosts()
	if err != nil {
		return nil, err
	}
	var posts []Post
	for _, p := range all {
		if includePost(cfg, p, now) {
			posts = append(posts, p)
		}
	}
	// Syndication never carries drafts or future posts, even in preview
	// builds.
	var published []Post
	for _, p := range posts {
		if p.Published(now) {
			published = append(published, p)
		}
	}

	allPages, err := store.ListAllPages()
	if err != nil {
		return nil, err
	}
	var pages, publishedPages []Page
	for _, p := range allPages {
		if p.Draft && !cfg.Build.IncludeDrafts {
			continue
		}
		pages = append(pages, p)
		if !p.Draft {
			publishedPages = append(publishedPages, p)
		}
	}

	outDir := cfg.OutputDir()
	if err := cleanOutputDir(outDir, opts.Force); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// The analytics beacon needs the live server's collect endpoint, so
	// static output never includes it.
	site := siteView(cfg, false)
	res := &BuildResult{OutputDir: outDir}

	home := posts
	if len(home) > homePostLimit {
		home = home[:homePostLimit]
	}
	if err := renderToFile(filepath.Join(outDir, "index.html"), views.Home(site, postViews(cfg, home))); err != nil {
		return nil, err
	}

	tags := tagsOf(posts)
	blogIndex := views.PostList(site, "Blog", postViews(cfg, posts), "", tags)
	if err := renderToFile(filepath.Join(outDir, "blog", "index.html"), blogIndex); err != nil {
		return nil, err
	}

	for _, p := range posts {
		related := postViews(cfg, RelatedPosts(p, posts))
		cmp := views.PostPage(site, postView(cfg, p), related)
		if err := renderToFile(filepath.Join(outDir, "blog", p.Slug, "index.html"), cmp); err != nil {
			return nil, err
		}
		res.Posts++
	}

	for _, tag := range tags {
		var tagged []Post
		for _, p := range posts {
			if hasTag(p, tag) {
				tagged = append(tagged, p)
			}
		}
		cmp := views.PostList(site, "Posts tagged "+tag, postViews(cfg, tagged), tag, tags)
		if err := renderToFile(filepath.Join(outDir, "tags", tag, "index.html"), cmp); err != nil {
			return nil, err
		}
		res.TagPages++
	}

	for _, p := range pages {
		cmp := views.PageView(site, pageView(p))
		if err := renderToFile(filepath.Join(outDir, p.Slug, "index.html"), cmp); err != nil {
			return nil, err
		}
		res.Pages++
	}

	if err := renderToFile(filepath.Join(outDir, "404.html"), views.NotFound(site)); err != nil {
		return nil, err
	}

	feed, err := feedXML(cfg, published)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "feed.xml"), feed, 0o644); err != nil {
		return nil, fmt.Errorf("write feed: %w", err)
	}

	sm, err := sitemapXML(cfg, published, publishedPages, tagsOf(published))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "sitemap.xml"), sm, 0o644); err != nil {
		return nil, fmt.Errorf("write sitemap: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "robots.txt"), []byte(robotsTxt(cfg)), 0o644); err != nil {
		return nil, fmt.Errorf("write robots.txt: %w", err)
	}

	res.Assets, res.ImagesResized, err = copyStatic(cfg, outDir)
	if err != nil {
		return nil, err
	}

	marker := now.UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(filepath.Join(outDir, buildMarker), []byte(marker), 0o644); err != nil {
		return nil, fmt.Errorf("write build marker: %w", err)
	}

	res.Duration = time.Since(start)
	return res, nil
}

// includePost decides whether a build renders the post. Published posts
// always go in; drafts and future-dated posts only with the matching
// build flag.
func includePost(cfg *Config, p Post, now time.Time) bool {
	if p.Draft && !cfg.Build.IncludeDrafts {
		return false
	}
	if p.Date.After(now) && !cfg.Build.IncludeFuture {
		return false
	}
	return true
}

// cleanOutputDir empties the output directory before a build. A non-empty
// directory without the build marker is refused unless force is set, so a
// mistyped output_dir cannot wipe unrelated files.
func cleanOutputDir(dir string, force bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("output dir: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if !force && !hasBuildMarker(entries) {
		return fmt.Errorf("output dir %s is not empty and does not look like a previous build; move it away or force the build", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}
	return nil
}

func hasBuildMarker(entries []fs.DirEntry) bool {
	for _, e := range entries {
		if e.Name() == buildMarker {
			return true
		}
	}
	return false
}

func tagsOf(posts []Post) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// copyStatic fills <out>/static/. The embedded stylesheet goes in first,
// so a style.css in the user's static dir replaces the built-in theme.
// JPEGs wider than build.image_max_width are scaled down on the way.
func copyStatic(cfg *Config, outDir string) (assets, resized int, err error) {
	dst := filepath.Join(outDir, "static")
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, 0, fmt.Errorf("copy static: %w", err)
	}

	css, err := StylesheetBytes()
	if err != nil {
		return 0, 0, fmt.Errorf("copy static: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dst, "style.css"), css, 0o644); err != nil {
		return 0, 0, fmt.Errorf("copy static: %w", err)
	}
	assets++

	srcDir := cfg.StaticDir()
	if _, err := os.Stat(srcDir); err != nil {
		if os.IsNotExist(err) {
			return assets, 0, nil
		}
		return assets, 0, fmt.Errorf("copy static: %w", err)
	}

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != srcDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(name))
		if (ext == ".jpg" || ext == ".jpeg") && cfg.Build.ImageMaxWidth > 0 {
			// Unreadable images are copied untouched.
			if out, changed, rerr := resizeJPEG(data, cfg.Build.ImageMaxWidth, cfg.Build.ImageQuality); rerr == nil {
				data = out
				if changed {
					resized++
				}
			}
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		assets++
		return nil
	})
	if err != nil {
		return assets, resized, fmt.Errorf("copy static: %w", err)
	}
	return assets, resized, nil
}
