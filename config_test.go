package mdpress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "press.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
[site]
title = "Test Blog"
base_url = "https://blog.example.com"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got, want := cfg.Content.Dir, "content"; got != want {
		t.Errorf("Content.Dir = %q, want %q", got, want)
	}
	if got, want := cfg.Content.StaticDir, "static"; got != want {
		t.Errorf("Content.StaticDir = %q, want %q", got, want)
	}
	if got, want := cfg.Build.OutputDir, "public"; got != want {
		t.Errorf("Build.OutputDir = %q, want %q", got, want)
	}
	if got, want := cfg.Build.FeedLimit, 20; got != want {
		t.Errorf("Build.FeedLimit = %d, want %d", got, want)
	}
	if got, want := cfg.Theme.DarkMode, "auto"; got != want {
		t.Errorf("Theme.DarkMode = %q, want %q", got, want)
	}
	if got, want := cfg.Site.Language, "en"; got != want {
		t.Errorf("Site.Language = %q, want %q", got, want)
	}
	if got, want := cfg.Serve.Addr, ":3000"; got != want {
		t.Errorf("Serve.Addr = %q, want %q", got, want)
	}
	if got, want := cfg.Serve.CacheTTL.Duration, 5*time.Second; got != want {
		t.Errorf("Serve.CacheTTL = %v, want %v", got, want)
	}
}

func TestLoadConfigResolvesPaths(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	root := filepath.Dir(path)
	if got, want := cfg.ContentDir(), filepath.Join(root, "content"); got != want {
		t.Errorf("ContentDir() = %q, want %q", got, want)
	}
	if got, want := cfg.PostsDir(), filepath.Join(root, "content", "posts"); got != want {
		t.Errorf("PostsDir() = %q, want %q", got, want)
	}
	if got, want := cfg.OutputDir(), filepath.Join(root, "public"); got != want {
		t.Errorf("OutputDir() = %q, want %q", got, want)
	}
}

func TestLoadConfigFull(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
[site]
title = "Field Notes"
base_url = "https://notes.example.com"
description = "Notes from the field"
author = "Sam Doe"

[build]
output_dir = "dist"
include_drafts = true
feed_limit = 10

[theme]
accent = "#e66100"
dark_mode = "off"

[serve]
addr = ":8080"
cache_ttl = "30s"

[[menu]]
name = "About"
url = "/about/"

[[menu]]
name = "Archive"
url = "/blog/"

[[social]]
name = "GitHub"
url = "https://github.com/samdoe"
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got, want := cfg.Site.Author, "Sam Doe"; got != want {
		t.Errorf("Site.Author = %q, want %q", got, want)
	}
	if !cfg.Build.IncludeDrafts {
		t.Error("Build.IncludeDrafts = false, want true")
	}
	if got, want := cfg.Build.FeedLimit, 10; got != want {
		t.Errorf("Build.FeedLimit = %d, want %d", got, want)
	}
	if got, want := cfg.Theme.Accent, "#e66100"; got != want {
		t.Errorf("Theme.Accent = %q, want %q", got, want)
	}
	if got, want := cfg.Serve.CacheTTL.Duration, 30*time.Second; got != want {
		t.Errorf("Serve.CacheTTL = %v, want %v", got, want)
	}
	if got, want := len(cfg.Menu), 2; got != want {
		t.Fatalf("len(Menu) = %d, want %d", got, want)
	}
	if got, want := cfg.Menu[1].Name, "Archive"; got != want {
		t.Errorf("Menu[1].Name = %q, want %q", got, want)
	}
	if got, want := len(cfg.Social), 1; got != want {
		t.Fatalf("len(Social) = %d, want %d", got, want)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "missing title",
			config: `
[site]
base_url = "https://example.com"
`,
			wantErr: "site.title",
		},
		{
			name: "relative base url",
			config: `
[site]
title = "Blog"
base_url = "example.com/blog"
`,
			wantErr: "site.base_url",
		},
		{
			name: "bad accent color",
			config: minimalConfig + `
[theme]
accent = "blue"
`,
			wantErr: "theme.accent",
		},
		{
			name: "bad dark mode",
			config: minimalConfig + `
[theme]
dark_mode = "always"
`,
			wantErr: "theme.dark_mode",
		},
		{
			name: "image quality out of range",
			config: minimalConfig + `
[build]
image_quality = 150
`,
			wantErr: "build.image_quality",
		},
		{
			name: "menu entry without url",
			config: minimalConfig + `
[[menu]]
name = "About"
`,
			wantErr: "menu entry 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.config))
			if err == nil {
				t.Fatal("LoadConfig succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
[serve]
cache_ttl = "forever"
`))
	if err == nil {
		t.Fatal("LoadConfig succeeded, want error")
	}
}

func TestConfigSecretsFromEnv(t *testing.T) {
	t.Setenv("MDPRESS_ADMIN_PASSWORD_HASH", "$2a$10$fakehash")
	t.Setenv("MDPRESS_SESSION_SECRET", "0123456789abcdef")
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.AdminEnabled() {
		t.Error("AdminEnabled() = false, want true")
	}

	t.Setenv("MDPRESS_SESSION_SECRET", "")
	cfg, err = LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AdminEnabled() {
		t.Error("AdminEnabled() = true without session secret, want false")
	}
}
