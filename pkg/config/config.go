package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/validators"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// maxDecimals bounds Denominations.Decimals to something a *big.Int amount
// shift can reasonably represent.
const maxDecimals = 36

// Config is the root configuration document.
type Config struct {
	Log       LogConfig         `json:"log" yaml:"log"`
	Sequencer SequencerConfig   `json:"sequencer" yaml:"sequencer"`
	Chain     ChainConfig       `json:"chain" yaml:"chain"`
	Theme     ThemeConfig       `json:"theme" yaml:"theme"`
	Icons     map[string]string `json:"icons" yaml:"icons"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// SequencerConfig mirrors sequencer.Gate plus the cancel policy.
type SequencerConfig struct {
	Order        bool   `json:"order" yaml:"order"`
	Causal       bool   `json:"causal" yaml:"causal"`
	StopOnFailed bool   `json:"stop_on_failed" yaml:"stop_on_failed"`
	CancelPolicy string `json:"cancel_policy" yaml:"cancel_policy"`
}

// ChainConfig describes the network addresses and amounts belong to.
type ChainConfig struct {
	SS58Prefix    uint16              `json:"ss58_prefix" yaml:"ss58_prefix"`
	Denominations DenominationsConfig `json:"denominations" yaml:"denominations"`
}

// DenominationsConfig mirrors validators.Denominations.
type DenominationsConfig struct {
	Unit     string           `json:"unit" yaml:"unit"`
	Decimals int32            `json:"decimals" yaml:"decimals"`
	Prefixes map[string]int32 `json:"prefixes" yaml:"prefixes"`
}

// ThemeConfig selects the status palette. Tokens, when present, override the
// selected theme's "status.<tier>" colors.
type ThemeConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Variant string            `json:"variant" yaml:"variant"`
	Tokens  map[string]string `json:"tokens" yaml:"tokens"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := validators.DefaultDenominations()
	return Config{
		Log: LogConfig{Level: "info"},
		Sequencer: SequencerConfig{
			Order:        true,
			Causal:       true,
			StopOnFailed: true,
			CancelPolicy: sequencer.CancelDetach.String(),
		},
		Chain: ChainConfig{
			SS58Prefix: 42,
			Denominations: DenominationsConfig{
				Unit:     d.Unit,
				Decimals: d.Decimals,
				Prefixes: d.Prefixes,
			},
		},
		Theme: ThemeConfig{Name: "default"},
	}
}

// Validate reports the first problem found, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	if _, err := sequencer.ParseCancelPolicy(c.Sequencer.CancelPolicy); err != nil {
		return fmt.Errorf("%w: sequencer.cancel_policy: %v", ErrInvalidConfig, err)
	}
	if c.Chain.SS58Prefix >= 16384 {
		return fmt.Errorf("%w: chain.ss58_prefix %d out of range", ErrInvalidConfig, c.Chain.SS58Prefix)
	}

	d := c.Chain.Denominations
	if strings.TrimSpace(d.Unit) == "" {
		return fmt.Errorf("%w: chain.denominations.unit is required", ErrInvalidConfig)
	}
	if d.Decimals < 0 || d.Decimals > maxDecimals {
		return fmt.Errorf("%w: chain.denominations.decimals %d out of range [0,%d]", ErrInvalidConfig, d.Decimals, maxDecimals)
	}
	for name, exp := range d.Prefixes {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t0123456789.,") {
			return fmt.Errorf("%w: chain.denominations.prefixes has invalid name %q", ErrInvalidConfig, name)
		}
		if d.Decimals+exp < 0 {
			return fmt.Errorf("%w: chain.denominations.prefixes[%q] is finer than one base unit", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Gate converts the sequencer section.
func (c Config) Gate() sequencer.Gate {
	return sequencer.Gate{
		Order:        c.Sequencer.Order,
		Causal:       c.Sequencer.Causal,
		StopOnFailed: c.Sequencer.StopOnFailed,
	}
}

// CancelPolicy parses sequencer.cancel_policy.
func (c Config) CancelPolicy() (sequencer.CancelPolicy, error) {
	return sequencer.ParseCancelPolicy(c.Sequencer.CancelPolicy)
}

// Denominations converts the chain denominations.
func (c Config) Denominations() validators.Denominations {
	prefixes := make(map[string]int32, len(c.Chain.Denominations.Prefixes))
	for name, exp := range c.Chain.Denominations.Prefixes {
		prefixes[name] = exp
	}
	return validators.Denominations{
		Unit:     c.Chain.Denominations.Unit,
		Decimals: c.Chain.Denominations.Decimals,
		Prefixes: prefixes,
	}
}

// Address builds the address validator configuration for the chain.
func (c Config) Address() validators.AddressConfig {
	return validators.AddressConfig{Prefix: c.Chain.SS58Prefix}
}

// Logger builds a zap logger from the log section.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	zcfg := zap.NewProductionConfig()
	if c.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
