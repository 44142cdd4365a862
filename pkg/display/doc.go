// Package display turns classified transaction statuses into something a
// terminal or page can show: a color per tier resolved from go-theme tokens,
// sanitized SVG icons, and a one-line pongo2 status template.
package display
