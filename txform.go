package txform

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-txform/internal/metrics"
	"github.com/goliatone/go-txform/pkg/config"
	"github.com/goliatone/go-txform/pkg/display"
	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/loop"
	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/txstatus"
	"github.com/goliatone/go-txform/pkg/validators"
)

// State aliases field.State for callers that only import the root package.
type State = field.State

// View aliases sequencer.View.
type View = sequencer.View

// Status aliases txstatus.Status.
type Status = txstatus.Status

// Plan aliases sequencer.Plan.
type Plan = sequencer.Plan

// Step aliases sequencer.Step.
type Step = sequencer.Step

// Runtime wires binders and sequencers to a shared loop, logger, metrics
// recorder, validator registry and status line, all derived from one
// config.Config.
type Runtime struct {
	Config     config.Config
	Loop       *loop.Loop
	Logger     *zap.Logger
	Metrics    *metrics.Recorder
	Validators *validators.Registry
	StatusLine *display.StatusLine
}

// Option configures NewRuntime.
type Option func(*runtimeOptions)

type runtimeOptions struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	keys       validators.KeyStore
	resolver   validators.AliasResolver
	ansi       bool
}

// WithLogger overrides the logger built from the config.
func WithLogger(logger *zap.Logger) Option {
	return func(o *runtimeOptions) {
		o.logger = logger
	}
}

// WithRegisterer registers the metrics collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *runtimeOptions) {
		o.registerer = reg
	}
}

// WithKeyStore lets the address validator report known accounts.
func WithKeyStore(keys validators.KeyStore) Option {
	return func(o *runtimeOptions) {
		o.keys = keys
	}
}

// WithAliasResolver lets the address validator resolve aliases.
func WithAliasResolver(resolver validators.AliasResolver) Option {
	return func(o *runtimeOptions) {
		o.resolver = resolver
	}
}

// WithANSI colors status lines for a terminal.
func WithANSI(enabled bool) Option {
	return func(o *runtimeOptions) {
		o.ansi = enabled
	}
}

// NewRuntime validates cfg and builds the shared collaborators.
func NewRuntime(cfg config.Config, options ...Option) (*Runtime, error) {
	opts := &runtimeOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(opts)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.logger
	if logger == nil {
		built, err := cfg.Logger()
		if err != nil {
			return nil, err
		}
		logger = built
	}

	recorder, err := metrics.New(opts.registerer)
	if err != nil {
		return nil, err
	}

	address := cfg.Address()
	address.Keys = opts.keys
	address.Resolve = opts.resolver
	registry := validators.NewDefaultRegistry(validators.Defaults{
		Address:       address,
		Denominations: cfg.Denominations(),
	})

	themes, err := display.NewThemes()
	if err != nil {
		return nil, err
	}
	palette, err := display.PaletteFromSelector(themes, cfg.Theme.Name, cfg.Theme.Variant)
	if err != nil {
		return nil, err
	}
	line, err := display.NewStatusLine(
		display.WithPalette(palette.WithTokens(cfg.Theme.Tokens)),
		display.WithIcons(display.DefaultIcons().With(cfg.Icons)),
		display.WithANSI(opts.ansi),
	)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config:     cfg,
		Loop:       loop.New(loop.WithLogger(logger.Named("loop"))),
		Logger:     logger,
		Metrics:    recorder,
		Validators: registry,
		StatusLine: line,
	}, nil
}

// Field builds a binder on the runtime loop using the named validator. An
// empty validator name leaves the field unvalidated. Balance fields format
// source values as amounts. The binder is not mounted.
func (r *Runtime) Field(name, validator string, options ...field.Option) (*field.Binder, error) {
	base := []field.Option{
		field.WithName(name),
		field.WithLogger(r.Logger.Named("field")),
		field.WithRecorder(r.Metrics),
	}
	if validator != "" {
		v, err := r.Validators.Get(validator)
		if err != nil {
			return nil, fmt.Errorf("txform: field %q: %w", name, err)
		}
		base = append(base, field.WithValidator(v))
		if validator == validators.NameBalance {
			base = append(base, field.WithFormatter(validators.BalanceFormatter(r.Config.Denominations())))
		}
	}
	return field.New(r.Loop, append(base, options...)...), nil
}

// Sequencer builds a sequencer on the runtime loop with the configured gate
// and cancel policy.
func (r *Runtime) Sequencer(plan Plan, options ...sequencer.Option) (*sequencer.Sequencer, error) {
	policy, err := r.Config.CancelPolicy()
	if err != nil {
		return nil, err
	}
	base := []sequencer.Option{
		sequencer.WithGate(r.Config.Gate()),
		sequencer.WithCancelPolicy(policy),
		sequencer.WithLogger(r.Logger.Named("sequencer")),
		sequencer.WithRecorder(r.Metrics),
	}
	return sequencer.New(r.Loop, plan, append(base, options...)...), nil
}

// Render formats v with the runtime status line.
func (r *Runtime) Render(v View) (string, error) {
	return r.StatusLine.Render(v)
}
