package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-txform"
	"github.com/goliatone/go-txform/internal/chainsim"
	"github.com/goliatone/go-txform/pkg/config"
	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/prompt"
	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/source"
	"github.com/goliatone/go-txform/pkg/validators"
)

type transfer struct {
	To     string
	Amount *big.Int
	Part   int
	Parts  int
}

func (t transfer) String() string {
	return fmt.Sprintf("transfer %s -> %s (%d/%d)", t.Amount, t.To, t.Part, t.Parts)
}

// maxSplit bounds the split offered when -steps asks interactively.
const maxSplit = 4

func main() {
	configPath := flag.String("config", "", "configuration file (YAML or JSON)")
	steps := flag.Int("steps", 0, "number of transactions the transfer is split into (0 asks)")
	failAt := flag.Int("fail-at", 0, "make the n-th submission fail (0 disables)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall time limit")
	delay := flag.Duration("delay", 300*time.Millisecond, "simulated time between transaction stages")
	to := flag.String("to", "", "destination address (prompted when empty)")
	amount := flag.String("amount", "", "amount to send (prompted when empty)")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	code, err := run(ctx, cfg, options{
		steps:  *steps,
		failAt: *failAt,
		delay:  *delay,
		to:     *to,
		amount: *amount,
		yes:    *yes,
	})
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("txform: %v", err)
	}
	os.Exit(code)
}

type options struct {
	steps  int
	failAt int
	delay  time.Duration
	to     string
	amount string
	yes    bool
}

func run(ctx context.Context, cfg config.Config, opts options) (int, error) {
	if opts.steps < 0 {
		return 0, fmt.Errorf("steps must not be negative, got %d", opts.steps)
	}

	rt, err := txform.NewRuntime(cfg,
		txform.WithRegisterer(prometheus.DefaultRegisterer),
		txform.WithANSI(true),
	)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rt.Logger.Sync() }()

	driver := prompt.NewSurveyDriver(os.Stdout)
	settle := func(ctx context.Context, b *field.Binder) error {
		return rt.Loop.RunUntil(ctx, func() bool { return !b.Pending() })
	}

	toValue := source.NewValue()
	toField, err := rt.Field("to", validators.NameAddress, field.WithSource(toValue))
	if err != nil {
		return 0, err
	}
	amountValue := source.NewValue()
	amountField, err := rt.Field("amount", validators.NameBalance, field.WithSource(amountValue))
	if err != nil {
		return 0, err
	}
	for _, b := range []*field.Binder{toField, amountField} {
		if err := b.Mount(); err != nil {
			return 0, err
		}
		defer b.Close()
	}

	denoms := cfg.Denominations()
	fields := []struct {
		binder *field.Binder
		preset string
		input  prompt.InputConfig
	}{
		{toField, opts.to, prompt.InputConfig{Message: "Destination address", Help: "SS58 address"}},
		{amountField, opts.amount, prompt.InputConfig{Message: fmt.Sprintf("Amount (%s)", denoms.Unit), Help: "e.g. 1.5, 250 m, 2k"}},
	}
	for _, f := range fields {
		if f.preset != "" {
			if err := f.binder.SetDisplay(f.preset); err != nil {
				return 0, err
			}
			if err := settle(ctx, f.binder); err != nil {
				return 0, err
			}
			if !f.binder.State().Valid {
				return 0, fmt.Errorf("invalid value %q for %s", f.preset, f.input.Message)
			}
			continue
		}
		_, err := prompt.Ask(ctx, driver, f.binder, func(ctx context.Context) error {
			return settle(ctx, f.binder)
		}, prompt.FieldConfig{InputConfig: f.input, MaxAttempts: 5})
		if err != nil {
			return 0, err
		}
	}

	dest, _ := toValue.Latest()
	base, ok := amountField.State().Internal.(*big.Int)
	if !ok {
		return 0, errors.New("amount did not validate to base units")
	}

	steps := opts.steps
	if steps == 0 {
		steps, err = chooseSplit(ctx, driver, maxSplit)
		if err != nil {
			return 0, err
		}
	}

	if !opts.yes {
		confirmed, err := driver.Confirm(ctx, prompt.ConfirmConfig{
			Message: fmt.Sprintf("Send %s to %v in %d transaction(s)?", denoms.Format(base), dest, steps),
			Default: true,
		})
		if err != nil {
			return 0, err
		}
		if !confirmed {
			return 0, prompt.ErrAborted
		}
	}

	chain := chainsim.New(
		chainsim.WithDelay(opts.delay),
		chainsim.WithFailureAt(opts.failAt),
		chainsim.WithLogger(rt.Logger.Named("chainsim")),
	)
	ready := func() bool { return toField.State().Valid && amountField.State().Valid }
	plan := sequencer.Sequence(splitTransfer(fmt.Sprint(dest), base, steps, ready)...)

	seq, err := rt.Sequencer(plan, sequencer.WithSubmitter(chain), sequencer.WithCaption("Send"))
	if err != nil {
		return 0, err
	}
	defer seq.Close()

	seq.Subscribe(func(v sequencer.View) {
		line, err := rt.Render(v)
		if err != nil {
			rt.Logger.Warn("render status line", zap.Error(err))
			return
		}
		_ = driver.Info(ctx, line)
	})

	if err := seq.Toggle(); err != nil {
		return 0, err
	}
	if err := rt.Loop.RunUntil(ctx, func() bool { return seq.View().Done }); err != nil {
		return 0, fmt.Errorf("waiting for transfer: %w", err)
	}

	if current := seq.State().Current; current != nil && current.Failed {
		return 1, nil
	}
	return 0, nil
}

// chooseSplit asks how many transactions (1..limit) the transfer uses.
func chooseSplit(ctx context.Context, d prompt.Driver, limit int) (int, error) {
	options := make([]string, limit)
	for i := range options {
		options[i] = fmt.Sprintf("%d transactions", i+1)
	}
	options[0] = "1 transaction"

	idx, err := d.Select(ctx, prompt.SelectConfig{
		Message: "Split the transfer into",
		Options: options,
		Help:    "each transaction is sent once the previous one is signed or confirmed",
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= limit {
		return 0, fmt.Errorf("unknown split choice %d", idx)
	}
	return idx + 1, nil
}

// splitTransfer divides amount into n steps; the last step carries the
// remainder.
func splitTransfer(to string, amount *big.Int, n int, ready func() bool) []sequencer.Step {
	parts := big.NewInt(int64(n))
	share := new(big.Int).Quo(amount, parts)
	rest := new(big.Int).Sub(amount, new(big.Int).Mul(share, parts))

	steps := make([]sequencer.Step, 0, n)
	for i := 1; i <= n; i++ {
		value := new(big.Int).Set(share)
		if i == n {
			value.Add(value, rest)
		}
		step := sequencer.Submit(fmt.Sprintf("transfer-%d", i), transfer{To: to, Amount: value, Part: i, Parts: n})
		step.Ready = ready
		steps = append(steps, step)
	}
	return steps
}
