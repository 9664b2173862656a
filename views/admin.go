package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// EditorDoc is the form model shared by the post and page editors.
type EditorDoc struct {
	Kind         string // "post" or "page"
	Slug         string
	OriginalSlug string
	Title        string
	DateISO      string
	Tags         string // comma separated
	Description  string
	Draft        bool
	Body         string
	IsNew        bool
}

// adminLayout is the stripped-down document used by every admin screen.
// Admin pages are never indexed and skip the public chrome.
func adminLayout(site Site, title, csrf string, loggedIn bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<!doctype html>\n")
		fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n", esc(site.Language))
		b.WriteString("<meta charset=\"utf-8\">\n")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		b.WriteString("<meta name=\"robots\" content=\"noindex\">\n")
		fmt.Fprintf(&b, "<title>%s · %s</title>\n", esc(title), esc(site.Title))
		fmt.Fprintf(&b, "<style>%s</style>\n", cssVars(site.Theme))
		b.WriteString("<link rel=\"stylesheet\" href=\"/static/style.css\">\n")
		b.WriteString("</head>\n<body class=\"admin\">\n")

		b.WriteString("<header class=\"admin-header\">\n")
		fmt.Fprintf(&b, "<strong>%s</strong>\n", esc(site.Title))
		if loggedIn {
			b.WriteString("<nav>\n")
			b.WriteString("<a href=\"/admin/\">Dashboard</a>\n")
			b.WriteString("<a href=\"/admin/images/\">Images</a>\n")
			if site.Analytics {
				b.WriteString("<a href=\"/admin/analytics/\">Analytics</a>\n")
			}
			b.WriteString("<a href=\"/\">View site</a>\n")
			b.WriteString("<form method=\"post\" action=\"/admin/logout/\" class=\"inline\">\n")
			writeCSRF(&b, csrf)
			b.WriteString("<button type=\"submit\">Log out</button>\n</form>\n")
			b.WriteString("</nav>\n")
		}
		b.WriteString("</header>\n<main class=\"admin-main\">\n")

		if err := body.Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString("</main>\n</body>\n</html>\n")
		_, err := w.Write(b.Bytes())
		return err
	})
}

// AdminLogin renders the password prompt.
func AdminLogin(site Site, showError bool, csrf string) templ.Component {
	return adminLayout(site, "Sign in", csrf, false, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<h1>Sign in</h1>\n")
		if showError {
			b.WriteString("<p class=\"error\">Wrong password.</p>\n")
		}
		b.WriteString("<form method=\"post\" action=\"/admin/login/\">\n")
		writeCSRF(&b, csrf)
		b.WriteString("<label>Password <input type=\"password\" name=\"password\" required autofocus></label>\n")
		b.WriteString("<button type=\"submit\">Sign in</button>\n</form>\n")
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// AdminDashboard renders the content overview: every post and page,
// drafts included.
func AdminDashboard(site Site, posts []Post, pages []Page, message, csrf string) templ.Component {
	return adminLayout(site, "Dashboard", csrf, true, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		if message != "" {
			fmt.Fprintf(&b, "<p class=\"notice\">%s</p>\n", esc(message))
		}
		b.WriteString("<p class=\"actions\"><a class=\"button\" href=\"/admin/new/\">New post</a> <a class=\"button\" href=\"/admin/new/?kind=page\">New page</a></p>\n")

		b.WriteString("<h2>Posts</h2>\n")
		if len(posts) == 0 {
			b.WriteString("<p>No posts yet.</p>\n")
		} else {
			b.WriteString("<table class=\"content-table\">\n<thead><tr><th>Title</th><th>Date</th><th>Status</th><th></th></tr></thead>\n<tbody>\n")
			for _, p := range posts {
				b.WriteString("<tr>")
				fmt.Fprintf(&b, "<td><a href=\"/admin/post/%s/\">%s</a></td>", PathEscape(p.Slug), esc(p.Title))
				fmt.Fprintf(&b, "<td><time datetime=\"%s\">%s</time></td>", esc(p.DateISO), esc(p.DateText))
				if p.Draft {
					b.WriteString("<td><span class=\"draft-badge\">draft</span></td>")
				} else {
					b.WriteString("<td>published</td>")
				}
				b.WriteString("<td>")
				writeDeleteForm(&b, "/admin/post/"+PathEscape(p.Slug)+"/delete/", csrf)
				b.WriteString("</td></tr>\n")
			}
			b.WriteString("</tbody>\n</table>\n")
		}

		b.WriteString("<h2>Pages</h2>\n")
		if len(pages) == 0 {
			b.WriteString("<p>No pages yet.</p>\n")
		} else {
			b.WriteString("<table class=\"content-table\">\n<thead><tr><th>Title</th><th>Link</th><th></th></tr></thead>\n<tbody>\n")
			for _, p := range pages {
				b.WriteString("<tr>")
				fmt.Fprintf(&b, "<td><a href=\"/admin/page/%s/\">%s</a>", PathEscape(p.Slug), esc(p.Title))
				if p.Draft {
					b.WriteString(" <span class=\"draft-badge\">draft</span>")
				}
				b.WriteString("</td>")
				fmt.Fprintf(&b, "<td><a href=\"%s\">%s</a></td>", esc(p.Link), esc(p.Link))
				b.WriteString("<td>")
				writeDeleteForm(&b, "/admin/page/"+PathEscape(p.Slug)+"/delete/", csrf)
				b.WriteString("</td></tr>\n")
			}
			b.WriteString("</tbody>\n</table>\n")
		}
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// AdminEditor renders the shared post/page edit form.
func AdminEditor(site Site, doc EditorDoc, csrf string) templ.Component {
	title := "Edit " + doc.Kind
	if doc.IsNew {
		title = "New " + doc.Kind
	}
	return adminLayout(site, title, csrf, true, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(title))
		b.WriteString("<form method=\"post\" action=\"/admin/save/\" class=\"editor\">\n")
		writeCSRF(&b, csrf)
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"kind\" value=\"%s\">\n", esc(doc.Kind))
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"original_slug\" value=\"%s\">\n", esc(doc.OriginalSlug))
		fmt.Fprintf(&b, "<label>Title <input type=\"text\" name=\"title\" value=\"%s\" required></label>\n", esc(doc.Title))
		fmt.Fprintf(&b, "<label>Slug <input type=\"text\" name=\"slug\" value=\"%s\" placeholder=\"derived from title\"></label>\n", esc(doc.Slug))
		if doc.Kind == "post" {
			fmt.Fprintf(&b, "<label>Date <input type=\"date\" name=\"date\" value=\"%s\" required></label>\n", esc(doc.DateISO))
			fmt.Fprintf(&b, "<label>Tags <input type=\"text\" name=\"tags\" value=\"%s\" placeholder=\"go, web\"></label>\n", esc(doc.Tags))
		}
		fmt.Fprintf(&b, "<label>Description <input type=\"text\" name=\"description\" value=\"%s\"></label>\n", esc(doc.Description))
		checked := ""
		if doc.Draft {
			checked = " checked"
		}
		fmt.Fprintf(&b, "<label class=\"checkbox\"><input type=\"checkbox\" name=\"draft\" value=\"1\"%s> Draft</label>\n", checked)
		fmt.Fprintf(&b, "<label>Body <textarea name=\"body\" rows=\"18\">%s</textarea></label>\n", esc(doc.Body))
		b.WriteString("<button type=\"submit\">Save</button>\n</form>\n")
		if !doc.IsNew {
			writeDeleteForm(&b, "/admin/"+doc.Kind+"/"+PathEscape(doc.OriginalSlug)+"/delete/", csrf)
		}
		_, err := w.Write(b.Bytes())
		return err
	}))
}

// AdminImages renders the upload form and the list of processed images.
func AdminImages(site Site, images []Image, csrf string) templ.Component {
	return adminLayout(site, "Images", csrf, true, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		b.WriteString("<h1>Images</h1>\n")
		b.WriteString("<form method=\"post\" action=\"/admin/images/upload/\" enctype=\"multipart/form-data\">\n")
		writeCSRF(&b, csrf)
		b.WriteString("<label>Upload <input type=\"file\" name=\"image\" accept=\"image/*\" required></label>\n")
		b.WriteString("<button type=\"submit\">Upload</button>\n</form>\n")
		if len(images) == 0 {
			b.WriteString("<p>No images yet.</p>\n")
			_, err := w.Write(b.Bytes())
			return err
		}
		b.WriteString("<table class=\"content-table\">\n<thead><tr><th></th><th>Markdown</th><th>Dimensions</th><th>Size</th><th></th></tr></thead>\n<tbody>\n")
		for _, img := range images {
			b.WriteString("<tr>")
			fmt.Fprintf(&b, "<td><img src=\"%s\" alt=\"%s\" width=\"80\" loading=\"lazy\"></td>", esc(img.URL), esc(img.Filename))
			fmt.Fprintf(&b, "<td><code>![](%s)</code></td>", esc(img.URL))
			if img.Width > 0 {
				fmt.Fprintf(&b, "<td>%d×%d</td>", img.Width, img.Height)
			} else {
				b.WriteString("<td></td>")
			}
			fmt.Fprintf(&b, "<td>%s</td>", formatSize(img.Size))
			b.WriteString("<td>")
			writeDeleteForm(&b, "/admin/images/"+PathEscape(img.Filename)+"/delete/", csrf)
			b.WriteString("</td></tr>\n")
		}
		b.WriteString("</tbody>\n</table>\n")
		_, err := w.Write(b.Bytes())
		return err
	}))
}

func writeCSRF(b *bytes.Buffer, csrf string) {
	fmt.Fprintf(b, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">\n", esc(csrf))
}

// writeDeleteForm renders a plain POST form. No inline confirm handler:
// the content security policy forbids inline script.
func writeDeleteForm(b *bytes.Buffer, action, csrf string) {
	fmt.Fprintf(b, "<form method=\"post\" action=\"%s\" class=\"inline\">\n", esc(action))
	writeCSRF(b, csrf)
	b.WriteString("<button type=\"submit\" class=\"danger\">Delete</button>\n</form>\n")
}
