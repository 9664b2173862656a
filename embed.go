package mdpress

import "embed"

// EmbeddedAssets contains the files shipped with the theme: the stylesheet
// and the analytics collection script.
//
//go:embed assets/*
var EmbeddedAssets embed.FS

// StylesheetBytes returns the built-in theme stylesheet.
func StylesheetBytes() ([]byte, error) {
	return EmbeddedAssets.ReadFile("assets/style.css")
}

// AnalyticsScriptBytes returns the visit collection script served when
// analytics is enabled.
func AnalyticsScriptBytes() ([]byte, error) {
	return EmbeddedAssets.ReadFile("assets/analytics.js")
}
