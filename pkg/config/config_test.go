package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-txform/pkg/sequencer"
)

const sampleYAML = `
log:
  level: debug
  development: true
sequencer:
  causal: false
  cancel_policy: abort
chain:
  ss58_prefix: 0
  denominations:
    unit: DOT
    decimals: 10
    prefixes: {m: -3}
theme:
  name: default
  variant: dark
icons:
  check: "<svg></svg>"
`

func TestParse_YAMLOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML), "sample.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := sequencer.Gate{Order: true, Causal: false, StopOnFailed: true}
	if diff := cmp.Diff(want, cfg.Gate()); diff != "" {
		t.Fatalf("gate mismatch (-want +got):\n%s", diff)
	}
	policy, err := cfg.CancelPolicy()
	if err != nil || policy != sequencer.CancelAbort {
		t.Fatalf("expected abort policy, got %v (%v)", policy, err)
	}
	d := cfg.Denominations()
	if d.Unit != "DOT" || d.Decimals != 10 || d.Prefixes["m"] != -3 {
		t.Fatalf("unexpected denominations: %+v", d)
	}
	if d.Prefixes["k"] != 3 {
		t.Fatalf("expected default prefixes to be kept, got %+v", d.Prefixes)
	}
	if cfg.Address().Prefix != 0 {
		t.Fatalf("expected prefix 0, got %d", cfg.Address().Prefix)
	}
	if cfg.Theme.Variant != "dark" || cfg.Icons["check"] != "<svg></svg>" {
		t.Fatalf("unexpected theme/icons: %+v %+v", cfg.Theme, cfg.Icons)
	}

	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	_ = logger.Sync()
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"sequencer":{"order":false},"chain":{"ss58_prefix":2}}`), "c.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Gate().Order || cfg.Chain.SS58Prefix != 2 || cfg.Chain.Denominations.Unit != "UNIT" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"level":    "log: {level: loud}",
		"policy":   "sequencer: {cancel_policy: retry}",
		"prefix":   "chain: {ss58_prefix: 20000}",
		"decimals": "chain: {denominations: {decimals: 99}}",
		"unit":     "chain: {denominations: {unit: \" \"}}",
		"finer":    "chain: {denominations: {decimals: 2, prefixes: {n: -9}}}",
		"name":     "chain: {denominations: {prefixes: {\"1x\": 3}}}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc), name); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("  "), "empty"); err == nil {
		t.Fatalf("expected empty file error")
	}
	if _, err := Parse([]byte("log: [unterminated"), "broken"); err == nil || errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("default mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "txform.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chain.Denominations.Unit != "DOT" {
		t.Fatalf("unexpected unit %q", cfg.Chain.Denominations.Unit)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{"conf/txform.yaml": {Data: []byte(sampleYAML)}}
	cfg, err := LoadFS(fsys, "conf/txform.yaml")
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if !cfg.Log.Development {
		t.Fatalf("expected development logging")
	}
	if cfg, err := LoadFS(nil, "ignored"); err != nil || cfg.Log.Level != "info" {
		t.Fatalf("expected defaults for nil fs, got %+v (%v)", cfg, err)
	}
}
