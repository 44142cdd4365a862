package display

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-txform/pkg/txstatus"
)

// ErrUnknownTheme is returned when selecting a theme that was never added.
var ErrUnknownTheme = errors.New("display: unknown theme")

// DefaultThemeName is the theme selected when none is named.
const DefaultThemeName = "default"

// Themes is a ThemeSelector over a fixed set of manifests. Manifests are
// checked by a go-theme registry before they are accepted.
type Themes struct {
	mu        sync.RWMutex
	registry  manifestRegistry
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*Themes)(nil)

type manifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// NewThemes constructs a selector holding the built-in theme plus manifests.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	t := &Themes{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
	for _, manifest := range append([]*theme.Manifest{BuiltinTheme()}, manifests...) {
		if err := t.Add(manifest); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add registers a manifest. A later manifest with the same name replaces the
// built-in one.
func (t *Themes) Add(manifest *theme.Manifest) error {
	if manifest == nil {
		return errors.New("display: nil theme manifest")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return errors.New("display: theme manifest requires a name")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.manifests[name]; !exists {
		if err := t.registry.Register(manifest); err != nil {
			return fmt.Errorf("display: register theme %q: %w", name, err)
		}
	}
	t.manifests[name] = manifest
	return nil
}

// Select implements theme.ThemeSelector. An empty name selects the default
// theme; an unknown variant falls back to the base tokens.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultThemeName
	}
	t.mu.RLock()
	manifest, ok := t.manifests[name]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return &theme.Selection{
		Theme:    name,
		Variant:  strings.TrimSpace(variant),
		Manifest: manifest,
	}, nil
}

// BuiltinTheme is the default manifest, with a dark variant.
func BuiltinTheme() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			TokenPrefix + "neutral": defaultColors[txstatus.TierNeutral],
			TokenPrefix + "success": defaultColors[txstatus.TierSuccess],
			TokenPrefix + "error":   defaultColors[txstatus.TierError],
			TokenPrefix + "info":    defaultColors[txstatus.TierInfo],
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					TokenPrefix + "neutral": "#b4b9c2",
					TokenPrefix + "success": "#5fd37a",
					TokenPrefix + "error":   "#ff6b6b",
					TokenPrefix + "info":    "#78a6ff",
				},
			},
		},
	}
}
