package display

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-txform/pkg/txstatus"
)

// TokenPrefix namespaces tier colors inside theme tokens ("status.success").
const TokenPrefix = "status."

var defaultColors = map[txstatus.Tier]string{
	txstatus.TierNeutral: "#8a8f98",
	txstatus.TierSuccess: "#2e9e44",
	txstatus.TierError:   "#d23c3c",
	txstatus.TierInfo:    "#3b73d9",
}

// Palette maps display tiers to colors.
type Palette struct {
	theme   string
	variant string
	colors  map[txstatus.Tier]string
}

// DefaultPalette returns the built-in tier colors.
func DefaultPalette() Palette {
	colors := make(map[txstatus.Tier]string, len(defaultColors))
	for tier, color := range defaultColors {
		colors[tier] = color
	}
	return Palette{colors: colors}
}

// PaletteFromSelection layers the selection's status tokens over the
// defaults. Variant tokens win over manifest tokens.
func PaletteFromSelection(selection *theme.Selection) Palette {
	p := DefaultPalette()
	if selection == nil || selection.Manifest == nil {
		return p
	}
	p.theme = selection.Theme
	p.variant = selection.Variant
	p.apply(selection.Manifest.Tokens)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		p.apply(variant.Tokens)
	}
	return p
}

// PaletteFromSelector resolves name/variant through selector.
func PaletteFromSelector(selector theme.ThemeSelector, name, variant string) (Palette, error) {
	if selector == nil {
		return DefaultPalette(), nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return Palette{}, fmt.Errorf("display: select theme %q/%q: %w", name, variant, err)
	}
	return PaletteFromSelection(selection), nil
}

func (p *Palette) apply(tokens map[string]string) {
	for key, value := range tokens {
		if !strings.HasPrefix(key, TokenPrefix) {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		p.colors[txstatus.Tier(strings.TrimPrefix(key, TokenPrefix))] = value
	}
}

// WithTokens returns a copy of the palette with "status.<tier>" tokens
// layered on top.
func (p Palette) WithTokens(tokens map[string]string) Palette {
	out := Palette{theme: p.theme, variant: p.variant, colors: make(map[txstatus.Tier]string, len(p.colors))}
	for tier, color := range p.colors {
		out.colors[tier] = color
	}
	out.apply(tokens)
	return out
}

// Color returns the color for tier, falling back to the info color.
func (p Palette) Color(tier txstatus.Tier) string {
	if color, ok := p.colors[tier]; ok {
		return color
	}
	if color, ok := p.colors[txstatus.TierInfo]; ok {
		return color
	}
	return defaultColors[txstatus.TierInfo]
}

// Theme reports the theme and variant the palette was built from.
func (p Palette) Theme() (name, variant string) {
	return p.theme, p.variant
}
