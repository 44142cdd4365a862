package display

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/txstatus"
)

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     [][2]string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, [2]string{name, variant})
	return s.selection, s.err
}

func TestPalette_Defaults(t *testing.T) {
	p := DefaultPalette()
	got := map[txstatus.Tier]string{
		txstatus.TierNeutral: p.Color(txstatus.TierNeutral),
		txstatus.TierSuccess: p.Color(txstatus.TierSuccess),
		txstatus.TierError:   p.Color(txstatus.TierError),
		txstatus.TierInfo:    p.Color(txstatus.TierInfo),
	}
	if diff := cmp.Diff(defaultColors, got); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}
	if p.Color("unknown") != defaultColors[txstatus.TierInfo] {
		t.Fatalf("expected unknown tier to fall back to info")
	}
}

func TestPalette_VariantTokensWin(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens: map[string]string{
				"status.success": "#00ff00",
				"status.error":   "#ff0000",
				"brand":          "#123456",
			},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"status.error": "#990000"}},
			},
		},
	}}

	p, err := PaletteFromSelector(selector, "acme", "dark")
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	if diff := cmp.Diff([][2]string{{"acme", "dark"}}, selector.calls); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
	if got := p.Color(txstatus.TierSuccess); got != "#00ff00" {
		t.Fatalf("expected manifest success token, got %s", got)
	}
	if got := p.Color(txstatus.TierError); got != "#990000" {
		t.Fatalf("expected variant error token, got %s", got)
	}
	if got := p.Color(txstatus.TierNeutral); got != defaultColors[txstatus.TierNeutral] {
		t.Fatalf("expected default neutral color, got %s", got)
	}
	if name, variant := p.Theme(); name != "acme" || variant != "dark" {
		t.Fatalf("unexpected theme %s/%s", name, variant)
	}
}

func TestPalette_SelectorError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := PaletteFromSelector(&stubThemeSelector{err: boom}, "x", ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped selector error, got %v", err)
	}
}

func TestThemes_Select(t *testing.T) {
	themes, err := NewThemes()
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	p, err := PaletteFromSelector(themes, "", "dark")
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	if got := p.Color(txstatus.TierSuccess); got != "#5fd37a" {
		t.Fatalf("expected dark success color, got %s", got)
	}
	if _, err := themes.Select("missing", ""); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestIcons_Sanitize(t *testing.T) {
	icons := DefaultIcons().With(map[string]string{
		"check": `<svg viewBox="0 0 4 4" onload="alert(1)"><script>alert(1)</script><path d="M0 0h4"></path></svg>`,
		"empty": `<script>alert(1)</script>`,
	})

	markup := icons.Markup(txstatus.IconCheck)
	if strings.Contains(markup, "script") || strings.Contains(markup, "onload") {
		t.Fatalf("expected scripts stripped, got %s", markup)
	}
	if !strings.Contains(markup, "<path") {
		t.Fatalf("expected path retained, got %s", markup)
	}
	if icons.Has("empty") {
		t.Fatalf("expected markup that sanitizes to nothing to be dropped")
	}
	if got := icons.Markup("rocket"); got != "rocket" {
		t.Fatalf("expected unknown icon to fall back to its name, got %s", got)
	}
	for _, name := range []string{txstatus.IconKey, txstatus.IconWifi, txstatus.IconSpinner, txstatus.IconExclamation, txstatus.IconQuestion} {
		if !icons.Has(name) {
			t.Fatalf("expected builtin icon %q", name)
		}
	}
}

func TestStatusLine_Render(t *testing.T) {
	line, err := NewStatusLine()
	if err != nil {
		t.Fatalf("status line: %v", err)
	}

	finalized := txstatus.Finalized("0xabc")
	cases := []struct {
		name string
		view sequencer.View
		want string
	}{
		{
			name: "idle",
			view: sequencer.View{Idle: true, Label: "Submit", Progress: sequencer.Progress{Total: 1}},
			want: "○ Submit",
		},
		{
			name: "running",
			view: sequencer.View{
				Label:    "signing",
				Display:  txstatus.Classify(txstatus.Signing()),
				Progress: sequencer.Progress{Current: 2, Total: 3},
				Running:  true,
			},
			want: "⚷ signing (2/3)",
		},
		{
			name: "done",
			view: sequencer.View{
				Label:    sequencer.DoneLabel,
				Display:  txstatus.Classify(finalized),
				Progress: sequencer.Progress{Current: 3, Total: 3},
				Status:   &finalized,
				Done:     true,
			},
			want: "✔ OK (3/3) 0xabc",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := line.Render(tc.view)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestStatusLine_ANSIAndCustomTemplate(t *testing.T) {
	line, err := NewStatusLine(WithANSI(true))
	if err != nil {
		t.Fatalf("status line: %v", err)
	}
	got, err := line.Render(sequencer.View{Label: "failed", Display: txstatus.Classify(txstatus.Failed(nil)), Done: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(got, "\x1b[38;2;210;60;60mfailed\x1b[0m") {
		t.Fatalf("expected error-colored label, got %q", got)
	}

	custom, err := NewStatusLine(WithTemplate(`{{ tier }}:{{ color }}`))
	if err != nil {
		t.Fatalf("status line: %v", err)
	}
	got, err = custom.Render(sequencer.View{Display: txstatus.Classify(txstatus.Finalized("0x1"))})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "success:#2e9e44" {
		t.Fatalf("unexpected custom render %q", got)
	}
}

func TestStatusLine_BadTemplate(t *testing.T) {
	if _, err := NewStatusLine(WithTemplate(`{% if %}`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPalette_WithTokens(t *testing.T) {
	base := DefaultPalette()
	custom := base.WithTokens(map[string]string{"status.info": "#000000", "other": "#ffffff"})
	if got := custom.Color(txstatus.TierInfo); got != "#000000" {
		t.Fatalf("expected override, got %s", got)
	}
	if got := base.Color(txstatus.TierInfo); got != defaultColors[txstatus.TierInfo] {
		t.Fatalf("expected base palette untouched, got %s", got)
	}
}
