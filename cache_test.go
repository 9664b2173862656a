package mdpress

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestSiteCacheServesStaleWithinTTL(t *testing.T) {
	s, dir := testStore(t)
	writeContentFile(t, filepath.Join(dir, "posts", "first-post.md"), firstPost)
	c := NewSiteCache(s, time.Hour)

	posts, err := c.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}

	// A new file does not show up until the TTL passes or Invalidate runs.
	writeContentFile(t, filepath.Join(dir, "posts", "second-post.md"), secondPost)
	posts, err = c.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1 (cached)", len(posts))
	}

	c.Invalidate()
	posts, err = c.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts after Invalidate: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("len(posts) = %d, want 2", len(posts))
	}
}

func TestSiteCacheExpires(t *testing.T) {
	s, dir := testStore(t)
	writeContentFile(t, filepath.Join(dir, "posts", "first-post.md"), firstPost)
	c := NewSiteCache(s, time.Millisecond)

	if _, err := c.ListPosts(""); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	writeContentFile(t, filepath.Join(dir, "posts", "second-post.md"), secondPost)
	time.Sleep(5 * time.Millisecond)

	posts, err := c.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("len(posts) = %d, want 2 after TTL expiry", len(posts))
	}
}

func TestSiteCacheTagFilter(t *testing.T) {
	s, dir := testStore(t)
	writeContentFile(t, filepath.Join(dir, "posts", "first-post.md"), firstPost)
	writeContentFile(t, filepath.Join(dir, "posts", "second-post.md"), secondPost)
	c := NewSiteCache(s, time.Hour)

	posts, err := c.ListPosts(" Web ")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "first-post" {
		t.Errorf("ListPosts(Web) = %v, want just first-post", posts)
	}
}

func TestSiteCacheGetPost(t *testing.T) {
	s, dir := testStore(t)
	writeContentFile(t, filepath.Join(dir, "posts", "first-post.md"), firstPost)
	c := NewSiteCache(s, time.Hour)

	if _, err := c.GetPost("first-post"); err != nil {
		t.Errorf("GetPost: %v", err)
	}
	if _, err := c.GetPost("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(missing) = %v, want ErrNotFound", err)
	}
}

func TestSiteCachePages(t *testing.T) {
	s, dir := testStore(t)
	writeContentFile(t, filepath.Join(dir, "pages", "about.md"), `+++
title = "About"
+++

Hi.
`)
	c := NewSiteCache(s, time.Hour)
	page, err := c.GetPage("about")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got, want := page.Title, "About"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}
