package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
)

// Matter holds the raw front matter of a content file. Date stays untyped
// because the same field arrives as a time.Time from TOML datetimes and as a
// string from YAML or quoted TOML; ParseDate normalizes it.
type Matter struct {
	Title       string   `toml:"title" yaml:"title" json:"title"`
	Slug        string   `toml:"slug" yaml:"slug" json:"slug"`
	Date        any      `toml:"date" yaml:"date" json:"date"`
	Tags        []string `toml:"tags" yaml:"tags" json:"tags"`
	Description string   `toml:"description" yaml:"description" json:"description"`
	Draft       bool     `toml:"draft" yaml:"draft" json:"draft"`
}

// Parse splits src into front matter and Markdown body. TOML (+++ fences),
// YAML (---) and JSON front matter are all recognized.
func Parse(src []byte) (Matter, []byte, error) {
	var m Matter
	body, err := frontmatter.Parse(bytes.NewReader(src), &m)
	if err != nil {
		return Matter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return m, body, nil
}

// DateLayouts lists the accepted string layouts for front matter dates,
// tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate normalizes a front matter date value. A zero time with nil error
// means the field was absent; the caller decides whether that is a problem.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case string:
		return parseDateString(d)
	case fmt.Stringer:
		// TOML decoders hand local (zoneless) dates over as their own types;
		// all of them print in one of the accepted layouts.
		return parseDateString(d.String())
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v (%T)", v, v)
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or RFC 3339)", s)
}

// Doc carries the normalized fields of a content file for writing back to disk.
type Doc struct {
	Title       string
	Date        time.Time
	Tags        []string
	Description string
	Draft       bool
	Slug        string
	Body        string
}

// fileMatter fixes the field order and formats used on disk. Dates are
// written as plain YYYY-MM-DD strings, the way people type them.
type fileMatter struct {
	Title       string   `toml:"title"`
	Date        string   `toml:"date,omitempty"`
	Tags        []string `toml:"tags,omitempty"`
	Description string   `toml:"description,omitempty"`
	Draft       bool     `toml:"draft,omitempty"`
	Slug        string   `toml:"slug,omitempty"`
}

// Compose serializes a document as TOML front matter plus body. New and
// edited posts are always written in this canonical form regardless of the
// format they were read in.
func Compose(d Doc) ([]byte, error) {
	fm := fileMatter{
		Title:       d.Title,
		Tags:        d.Tags,
		Description: d.Description,
		Draft:       d.Draft,
		Slug:        d.Slug,
	}
	if !d.Date.IsZero() {
		fm.Date = d.Date.Format("2006-01-02")
	}
	meta, err := toml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("+++\n")
	buf.Write(meta)
	buf.WriteString("+++\n")
	if body := strings.TrimSpace(d.Body); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
