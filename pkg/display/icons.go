package display

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-txform/pkg/txstatus"
)

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// Icons maps icon names produced by txstatus.Classify to SVG markup.
type Icons struct {
	markup map[string]string
}

// NewIcons sanitizes every entry of markup. Entries that sanitize to nothing
// are dropped.
func NewIcons(markup map[string]string) Icons {
	icons := Icons{markup: make(map[string]string, len(markup))}
	for name, raw := range markup {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if cleaned := SanitizeIcon(raw); cleaned != "" {
			icons.markup[name] = cleaned
		}
	}
	return icons
}

// DefaultIcons returns the built-in icon set.
func DefaultIcons() Icons {
	return NewIcons(builtinIcons)
}

// With returns a copy of the set with overrides layered on top.
func (i Icons) With(overrides map[string]string) Icons {
	merged := make(map[string]string, len(i.markup)+len(overrides))
	for name, markup := range i.markup {
		merged[name] = markup
	}
	for name, markup := range NewIcons(overrides).markup {
		merged[name] = markup
	}
	return Icons{markup: merged}
}

// Markup returns the sanitized markup for name, or the bare name when the set
// has no entry for it.
func (i Icons) Markup(name string) string {
	if markup, ok := i.markup[name]; ok {
		return markup
	}
	return name
}

// Has reports whether name has markup.
func (i Icons) Has(name string) bool {
	_, ok := i.markup[name]
	return ok
}

// SanitizeIcon strips everything but a small SVG allow-list from raw.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"svg", "g", "path", "circle", "rect", "line", "polyline", "polygon",
			"ellipse", "title", "desc", "defs", "use", "clipPath", "animateTransform",
		)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")

		policy.AllowAttrs("href", "xlink:href", "clip-path").OnElements("use")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
				"stroke-linecap", "stroke-linejoin", "class",
			).OnElements(el)
		}

		// spinner rotation
		policy.AllowAttrs(
			"attributeName", "type", "from", "to", "dur", "repeatCount",
		).OnElements("animateTransform")

		policy.AllowAttrs("id", "clipPathUnits").OnElements("clipPath")
		policy.AllowAttrs("id").OnElements("defs", "g")

		iconPolicy = policy
	})
	return iconPolicy
}

const svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16" fill="none" stroke="currentColor" stroke-width="1.5" aria-hidden="true">`

var builtinIcons = map[string]string{
	txstatus.IconKey:         svgOpen + `<circle cx="5" cy="8" r="3"></circle><path d="M8 8h7M12 8v3M14 8v2"></path></svg>`,
	txstatus.IconWifi:        svgOpen + `<path d="M1 6a10 10 0 0 1 14 0M3.5 8.5a6.5 6.5 0 0 1 9 0M6 11a3 3 0 0 1 4 0"></path><circle cx="8" cy="13" r="0.5"></circle></svg>`,
	txstatus.IconSpinner:     svgOpen + `<path d="M8 1a7 7 0 1 0 7 7"><animateTransform attributeName="transform" type="rotate" from="0 8 8" to="360 8 8" dur="1s" repeatCount="indefinite"></animateTransform></path></svg>`,
	txstatus.IconCheck:       svgOpen + `<polyline points="2,8 6,12 14,4"></polyline></svg>`,
	txstatus.IconExclamation: svgOpen + `<line x1="8" y1="2" x2="8" y2="10"></line><circle cx="8" cy="13" r="0.5"></circle></svg>`,
	txstatus.IconQuestion:    svgOpen + `<path d="M5 5a3 3 0 1 1 4 2.8c-.6.3-1 .8-1 1.4V10"></path><circle cx="8" cy="13" r="0.5"></circle></svg>`,
}
