package markdown

import (
	"reflect"
	"testing"
)

func TestExtractLinks(t *testing.T) {
	src := []byte(`
A [relative link](/blog/other-post/) and an [external one](https://example.com).

![diagram](/static/images/diagram.png)

Reference [style][ref].

[ref]: /about/
`)
	got := ExtractLinks(src)
	want := []string{
		"/blog/other-post/",
		"https://example.com",
		"/static/images/diagram.png",
		"/about/",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks = %v, want %v", got, want)
	}
}

func TestExtractLinksEmpty(t *testing.T) {
	if got := ExtractLinks([]byte("no links here")); len(got) != 0 {
		t.Errorf("ExtractLinks = %v, want none", got)
	}
}
