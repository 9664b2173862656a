package mdpress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/mdpress/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, views.AdminLogin(a.site(), false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.logins.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(pass)) == nil {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.logins.Record(ip)
	return Render(c, views.AdminLogin(a.site(), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	kind := "post"
	if c.QueryParam("kind") == "page" {
		kind = "page"
	}
	doc := views.EditorDoc{
		Kind:    kind,
		DateISO: time.Now().Format("2006-01-02"),
		IsNew:   true,
	}
	return Render(c, views.AdminEditor(a.site(), doc, CsrfToken(c)))
}

func (a *App) handleAdminEditPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	doc := views.EditorDoc{
		Kind:         "post",
		Slug:         post.Slug,
		OriginalSlug: post.Slug,
		Title:        post.Title,
		DateISO:      post.Date.Format("2006-01-02"),
		Tags:         JoinTags(post.Tags),
		Description:  post.Description,
		Draft:        post.Draft,
		Body:         post.Body,
	}
	return Render(c, views.AdminEditor(a.site(), doc, CsrfToken(c)))
}

func (a *App) handleAdminEditPage(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	page, err := a.Store.GetPageAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	doc := views.EditorDoc{
		Kind:         "page",
		Slug:         page.Slug,
		OriginalSlug: page.Slug,
		Title:        page.Title,
		Description:  page.Description,
		Draft:        page.Draft,
		Body:         page.Body,
	}
	return Render(c, views.AdminEditor(a.site(), doc, CsrfToken(c)))
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if title == "" || slug == "" {
		return redirectMsg(c, "A title is required.")
	}
	originalSlug := Slugify(c.FormValue("original_slug"))
	draft := c.FormValue("draft") != ""
	description := strings.TrimSpace(c.FormValue("description"))
	body := c.FormValue("body")

	if c.FormValue("kind") == "page" {
		return a.savePage(c, title, slug, originalSlug, description, body, draft)
	}

	dateStr := strings.TrimSpace(c.FormValue("date"))
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return redirectMsg(c, "Invalid date. Use YYYY-MM-DD.")
	}
	tags := strings.Split(c.FormValue("tags"), ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}

	post := Post{
		Slug:        slug,
		Title:       title,
		Date:        date,
		Tags:        FilterEmpty(tags),
		Description: description,
		Body:        body,
		Draft:       draft,
	}
	if originalSlug != "" {
		prev, err := a.Store.GetPostAny(originalSlug)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		} else {
			post.SourcePath = prev.SourcePath
		}
	}
	if slug != originalSlug {
		if _, err := a.Store.GetPostAny(slug); err == nil {
			return redirectMsg(c, fmt.Sprintf("Slug %q is already in use.", slug))
		}
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "Saved "+slug+".")
}

func (a *App) savePage(c echo.Context, title, slug, originalSlug, description, body string, draft bool) error {
	if _, ok := reservedSlugs[slug]; ok {
		return redirectMsg(c, fmt.Sprintf("Slug %q is reserved.", slug))
	}
	page := Page{
		Slug:        slug,
		Title:       title,
		Description: description,
		Body:        body,
		Draft:       draft,
	}
	if originalSlug != "" {
		prev, err := a.Store.GetPageAny(originalSlug)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		} else {
			page.SourcePath = prev.SourcePath
		}
	}
	if slug != originalSlug {
		if _, err := a.Store.GetPageAny(slug); err == nil {
			return redirectMsg(c, fmt.Sprintf("Slug %q is already in use.", slug))
		}
	}
	if err := a.Store.SavePage(page); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "Saved "+slug+".")
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("slug")); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "Deleted.")
}

func (a *App) handleAdminDeletePage(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePage(c.Param("slug")); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "Deleted.")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	pages, err := a.Store.ListAllPages()
	if err != nil {
		return err
	}
	return Render(c, views.AdminDashboard(a.site(), postViews(a.Config, posts), pageViews(pages), msg, CsrfToken(c)))
}

func redirectMsg(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}
