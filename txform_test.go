package txform

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/goliatone/go-txform/pkg/config"
	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/source"
	"github.com/goliatone/go-txform/pkg/testsupport"
	"github.com/goliatone/go-txform/pkg/txstatus"
	"github.com/goliatone/go-txform/pkg/validators"
)

func newTestRuntime(t *testing.T, cfg config.Config) (*Runtime, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	rt, err := NewRuntime(cfg, WithLogger(zap.NewNop()), WithRegisterer(reg))
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	return rt, reg
}

func TestRuntime_BalanceFieldPushesBaseUnits(t *testing.T) {
	rt, reg := newTestRuntime(t, config.Default())
	amount := source.NewValue()

	b, err := rt.Field("amount", validators.NameBalance, field.WithSource(amount))
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	testsupport.MustMount(t, b)
	if err := b.SetDisplay("2 m"); err != nil {
		t.Fatalf("set display: %v", err)
	}
	if latest, _ := amount.Latest(); latest != "2000000000" {
		t.Fatalf("expected base units pushed to the source, got %v", latest)
	}

	amount.Changed("3000000000000")
	rt.Loop.Drain(0)
	if raw := b.State().RawInput; raw != "3 UNIT" {
		t.Fatalf("expected source value formatted as an amount, got %q", raw)
	}

	if n := testutil.CollectAndCount(reg, "txform_validations_total"); n == 0 {
		t.Fatalf("expected validation metrics to be recorded")
	}
}

func TestRuntime_UnknownValidator(t *testing.T) {
	rt, _ := newTestRuntime(t, config.Default())
	if _, err := rt.Field("x", "nope"); !errors.Is(err, validators.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRuntime_SequencerUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sequencer.Causal = false
	cfg.Sequencer.CancelPolicy = "abort"
	rt, _ := newTestRuntime(t, cfg)

	chain := testsupport.NewChain(2)
	seq, err := rt.Sequencer(chain.Plan())
	if err != nil {
		t.Fatalf("sequencer: %v", err)
	}

	line, err := rt.Render(seq.View())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(line, "Submit") {
		t.Fatalf("expected idle caption, got %q", line)
	}

	if err := seq.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	chain.Feeds[0].Push(txstatus.Signed("0x1"))
	rt.Loop.Drain(0)
	if got := seq.State().Index; got != 2 {
		t.Fatalf("expected non-causal gate to advance on signed, index=%d", got)
	}

	if err := seq.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if chain.Contexts()[0].Err() == nil {
		t.Fatalf("expected abort policy to cancel the run context")
	}
}

func TestNewRuntime_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chain.Denominations.Unit = ""
	if _, err := NewRuntime(cfg, WithLogger(zap.NewNop())); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

