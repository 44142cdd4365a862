package display

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-txform/pkg/sequencer"
)

// DefaultStatusTemplate renders "<glyph> <label> (<current>/<total>) <detail>".
const DefaultStatusTemplate = `{{ glyph|safe }} ` +
	`{% if ansi %}{{ label|paint:color|safe }}{% else %}{{ label|safe }}{% endif %}` +
	`{% if total > 1 %} ({{ current }}/{{ total }}){% endif %}` +
	`{% if detail %} {{ detail|safe }}{% endif %}`

var defaultGlyphs = map[string]string{
	"key":         "⚷",
	"wifi":        "⇡",
	"spinner":     "◌",
	"check":       "✔",
	"exclamation": "✖",
	"question":    "?",
}

var registerFiltersOnce sync.Once

// StatusLine renders a sequencer view as a single line of text.
type StatusLine struct {
	tmpl    *pongo2.Template
	palette Palette
	icons   Icons
	glyphs  map[string]string
	ansi    bool
}

// StatusOption configures a StatusLine.
type StatusOption func(*statusConfig)

type statusConfig struct {
	template string
	palette  Palette
	icons    Icons
	glyphs   map[string]string
	ansi     bool
}

// WithTemplate overrides DefaultStatusTemplate.
func WithTemplate(src string) StatusOption {
	return func(c *statusConfig) {
		if strings.TrimSpace(src) != "" {
			c.template = src
		}
	}
}

// WithPalette sets the tier colors.
func WithPalette(p Palette) StatusOption {
	return func(c *statusConfig) {
		c.palette = p
	}
}

// WithIcons exposes SVG markup to templates as "svg".
func WithIcons(icons Icons) StatusOption {
	return func(c *statusConfig) {
		c.icons = icons
	}
}

// WithGlyphs overrides the terminal glyph used per icon name.
func WithGlyphs(glyphs map[string]string) StatusOption {
	return func(c *statusConfig) {
		for name, glyph := range glyphs {
			c.glyphs[name] = glyph
		}
	}
}

// WithANSI colors the label with 24-bit terminal escapes.
func WithANSI(enabled bool) StatusOption {
	return func(c *statusConfig) {
		c.ansi = enabled
	}
}

// NewStatusLine compiles the status template.
func NewStatusLine(options ...StatusOption) (*StatusLine, error) {
	cfg := &statusConfig{
		template: DefaultStatusTemplate,
		palette:  DefaultPalette(),
		icons:    DefaultIcons(),
		glyphs:   make(map[string]string, len(defaultGlyphs)),
	}
	for name, glyph := range defaultGlyphs {
		cfg.glyphs[name] = glyph
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if err := registerDefaultFilters(); err != nil {
		return nil, err
	}
	tmpl, err := pongo2.FromString(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("display: parse status template: %w", err)
	}
	return &StatusLine{
		tmpl:    tmpl,
		palette: cfg.palette,
		icons:   cfg.icons,
		glyphs:  cfg.glyphs,
		ansi:    cfg.ansi,
	}, nil
}

// Render executes the template against v.
func (s *StatusLine) Render(v sequencer.View) (string, error) {
	if s == nil || s.tmpl == nil {
		return "", errors.New("display: status line is nil")
	}
	out, err := s.tmpl.Execute(s.context(v))
	if err != nil {
		return "", fmt.Errorf("display: render status line: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *StatusLine) context(v sequencer.View) pongo2.Context {
	icon := v.Display.Icon
	tier := v.Display.Tier
	detail := ""
	if v.Status != nil {
		detail = v.Status.Detail
	}
	glyph := s.glyphs[icon]
	if v.Idle {
		glyph = "○"
		tier = ""
	}
	return pongo2.Context{
		"label":    v.Label,
		"icon":     icon,
		"glyph":    glyph,
		"svg":      s.icons.Markup(icon),
		"tier":     string(tier),
		"color":    s.palette.Color(tier),
		"animated": v.Display.Animated,
		"current":  v.Progress.Current,
		"total":    v.Progress.Total,
		"done":     v.Done,
		"idle":     v.Idle,
		"disabled": v.Disabled,
		"detail":   detail,
		"ansi":     s.ansi,
	}
}

func registerDefaultFilters() error {
	var err error
	registerFiltersOnce.Do(func() {
		if pongo2.FilterExists("paint") {
			return
		}
		err = pongo2.RegisterFilter("paint", paintFilter)
	})
	return err
}

func paintFilter(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := in.String()
	if param == nil {
		return pongo2.AsValue(text), nil
	}
	r, g, b, ok := parseHex(param.String())
	if !ok {
		return pongo2.AsValue(text), nil
	}
	return pongo2.AsValue(fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, text)), nil
}

func parseHex(color string) (r, g, b uint64, ok bool) {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(color) == 3 {
		color = string([]byte{color[0], color[0], color[1], color[1], color[2], color[2]})
	}
	if len(color) != 6 {
		return 0, 0, 0, false
	}
	value, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return value >> 16 & 0xff, value >> 8 & 0xff, value & 0xff, true
}
