// Package mdpress turns a directory of Markdown files into a personal blog.
// One TOML config file drives both modes: Build renders the whole site to
// plain static files, Serve runs the same site live with an admin dashboard
// for editing and optional privacy-aware analytics.
//
// Content lives under content/posts and content/pages as Markdown files
// with front matter. The theme ships built in and is adjusted from the
// [theme] config table; a style.css in the static dir replaces it entirely.
package mdpress

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdpress/analytics"
	"github.com/eringen/mdpress/views"
)

// App is the live server: the site a build would render, served from a
// short-lived cache, with the admin dashboard on top.
type App struct {
	Config *Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *SiteCache

	logins         *LoginLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
	customRoutes   []func(*App)
	logger         *slog.Logger
}

// New creates an App around a loaded configuration.
func New(cfg *Config, opts ...Option) *App {
	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		logger: slog.Default(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start wires the store, cache, middleware and routes, then serves on
// cfg.Serve.Addr. It blocks until the server stops.
func (a *App) Start() error {
	if _, err := os.Stat(a.Config.ContentDir()); err != nil {
		return fmt.Errorf("mdpress: content dir: %w", err)
	}

	a.Store = NewStore(a.Config.ContentDir())
	a.Cache = NewSiteCache(a.Store, a.Config.Serve.CacheTTL.Duration)
	a.logins = NewLoginLimiter(5, time.Minute)

	if a.Config.Serve.Analytics {
		store, err := analytics.NewStore(a.Config.AnalyticsDBPath())
		if err != nil {
			return fmt.Errorf("mdpress: init analytics: %w", err)
		}
		a.analyticsStore = store
		if err := analytics.InitSalt(store); err != nil {
			return fmt.Errorf("mdpress: init analytics salt: %w", err)
		}
		a.stopCleanup = store.StartCleanupScheduler(a.Config.Serve.RetentionDays, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	if !a.Config.AdminEnabled() {
		a.logger.Info("admin disabled; set MDPRESS_ADMIN_PASSWORD_HASH and MDPRESS_SESSION_SECRET to enable it")
	}
	a.logger.Info("serving", "addr", a.Config.Serve.Addr, "content", a.Config.ContentDir())

	if err := a.Echo.Start(a.Config.Serve.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// The built-in assets sit under /static like user files; the
	// stylesheet falls back to the embedded theme when the user ships
	// no style.css of their own.
	e.GET("/static/style.css", a.handleStylesheet)
	e.GET("/static/analytics.js", a.handleAnalyticsScript)
	e.Static("/static", a.Config.StaticDir())

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/tags/:tag/", a.handleTag)

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.GET("/admin/new/", a.handleAdminNew)
		e.GET("/admin/post/:slug/", a.handleAdminEditPost)
		e.GET("/admin/page/:slug/", a.handleAdminEditPage)
		e.POST("/admin/save/", a.handleAdminSave)
		e.POST("/admin/post/:slug/delete/", a.handleAdminDeletePost)
		e.POST("/admin/page/:slug/delete/", a.handleAdminDeletePage)
		e.GET("/admin/images/", a.handleImageList)
		e.POST("/admin/images/upload/", a.handleImageUpload)
		e.POST("/admin/images/:filename/delete/", a.handleImageDelete)
	}

	if a.analyticsStore != nil {
		h := analytics.NewHandler(a.analyticsStore)
		h.RegisterRoutes(e, requireAdmin)
		if a.Config.AdminEnabled() {
			e.GET("/admin/analytics/", a.handleAdminAnalytics, requireAdmin)
		}
	}

	// Standalone pages match last; every fixed route above wins over a
	// page slug.
	e.GET("/:slug/", a.handlePage)
}

// site is the view model handed to every template render.
func (a *App) site() views.Site {
	return siteView(a.Config, a.analyticsStore != nil)
}

// Close releases background resources. Call it when shutting down.
func (a *App) Close() error {
	if a.logins != nil {
		a.logins.Close()
	}
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}
