package mdpress

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdpress/views"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	if len(posts) > homePostLimit {
		posts = posts[:homePostLimit]
	}
	return Render(c, views.Home(a.site(), postViews(a.Config, posts)))
}

func (a *App) handleBlogIndex(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, views.PostList(a.site(), "Blog", postViews(a.Config, posts), "", tags))
}

func (a *App) handleTag(c echo.Context) error {
	tag := normalizeTag(c.Param("tag"))
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, views.PostList(a.site(), "Posts tagged "+tag, postViews(a.Config, posts), tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.lookupPost(c, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	related := postViews(a.Config, RelatedPosts(post, posts))
	return Render(c, views.PostPage(a.site(), postView(a.Config, post), related))
}

// lookupPost resolves a slug for the public post route. A logged-in admin
// also sees drafts and future posts, so edits can be previewed in place.
func (a *App) lookupPost(c echo.Context, slug string) (Post, error) {
	post, err := a.Cache.GetPost(slug)
	if err == nil {
		return post, nil
	}
	if errors.Is(err, ErrNotFound) && IsAdmin(c) {
		return a.Store.GetPostAny(slug)
	}
	return Post{}, err
}

func (a *App) handlePage(c echo.Context) error {
	page, err := a.lookupPage(c, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return Render(c, views.PageView(a.site(), pageView(page)))
}

func (a *App) lookupPage(c echo.Context, slug string) (Page, error) {
	page, err := a.Cache.GetPage(slug)
	if err == nil {
		return page, nil
	}
	if errors.Is(err, ErrNotFound) && IsAdmin(c) {
		return a.Store.GetPageAny(slug)
	}
	return Page{}, err
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderFeed(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	pages, err := a.Cache.ListPages()
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, pages, tags)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config))
}

func (a *App) handleStylesheet(c echo.Context) error {
	// A style.css in the user's static dir replaces the built-in theme,
	// same as in static builds.
	if err := c.File(filepath.Join(a.Config.StaticDir(), "style.css")); err == nil {
		return nil
	}
	css, err := StylesheetBytes()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", css)
}

func (a *App) handleAnalyticsScript(c echo.Context) error {
	js, err := AnalyticsScriptBytes()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", js)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Error("server error", "uri", c.Request().RequestURI, "err", err)
		_ = RenderStatus(c, code, views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
