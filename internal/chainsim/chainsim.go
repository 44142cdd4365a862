// Package chainsim is an in-process stand-in for a chain node. Submitted
// transactions walk through the usual lifecycle on a timer and publish every
// stage on a txstatus.Feed.
package chainsim

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/txstatus"
)

// ErrRejected is the failure reported for submissions configured to fail.
var ErrRejected = errors.New("chainsim: transaction rejected")

// Receipt describes one submission.
type Receipt struct {
	ID   string
	Hash string
	Tx   any
	Feed *txstatus.Feed
}

// Chain accepts submissions and advances them on a timer.
type Chain struct {
	mu       sync.Mutex
	delay    time.Duration
	failAt   map[int]struct{}
	schedule map[int]time.Time
	receipts []Receipt
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// Option configures a Chain.
type Option func(*Chain)

// WithDelay sets the time between lifecycle stages.
func WithDelay(d time.Duration) Option {
	return func(c *Chain) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithFailureAt makes the n-th submission (1-based) fail after signing.
func WithFailureAt(n int) Option {
	return func(c *Chain) {
		if n > 0 {
			c.failAt[n] = struct{}{}
		}
	}
}

// WithScheduleAt makes the n-th submission (1-based) end as scheduled for at
// instead of being included.
func WithScheduleAt(n int, at time.Time) Option {
	return func(c *Chain) {
		if n > 0 {
			c.schedule[n] = at
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a chain.
func New(options ...Option) *Chain {
	c := &Chain{
		delay:    50 * time.Millisecond,
		failAt:   make(map[int]struct{}),
		schedule: make(map[int]time.Time),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

var _ sequencer.Submitter = (*Chain)(nil)

// Submit implements sequencer.Submitter. The returned feed starts at
// Requested; cancelling ctx stops further stages.
func (c *Chain) Submit(ctx context.Context, tx any) (txstatus.Live, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sum := blake2b.Sum256([]byte(id + "|" + fmt.Sprint(tx)))
	receipt := Receipt{
		ID:   id,
		Hash: "0x" + hex.EncodeToString(sum[:]),
		Tx:   tx,
		Feed: txstatus.NewFeed(txstatus.Requested()),
	}

	c.mu.Lock()
	c.receipts = append(c.receipts, receipt)
	n := len(c.receipts)
	_, fail := c.failAt[n]
	at, scheduled := c.schedule[n]
	c.mu.Unlock()

	c.logger.Debug("transaction submitted", zap.String("id", id), zap.String("hash", receipt.Hash), zap.Int("n", n))

	stages := lifecycle(receipt.Hash, fail, scheduled, at)
	c.wg.Add(1)
	go c.run(ctx, receipt, stages)
	return receipt.Feed, nil
}

// Op returns a sequencer.Op submitting tx.
func (c *Chain) Op(tx any) sequencer.Op {
	return func(ctx context.Context) (txstatus.Live, error) {
		return c.Submit(ctx, tx)
	}
}

// Receipts returns every submission so far.
func (c *Chain) Receipts() []Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Receipt(nil), c.receipts...)
}

// Wait blocks until every submission has stopped advancing.
func (c *Chain) Wait() {
	c.wg.Wait()
}

func (c *Chain) run(ctx context.Context, receipt Receipt, stages []txstatus.Status) {
	defer c.wg.Done()

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			c.logger.Debug("transaction abandoned", zap.String("id", receipt.ID), zap.Error(ctx.Err()))
			return
		case <-timer.C:
		}
		receipt.Feed.Push(stage)
		timer.Reset(c.delay)
	}
}

func lifecycle(hash string, fail, scheduled bool, at time.Time) []txstatus.Status {
	stages := []txstatus.Status{
		txstatus.Signing(),
		txstatus.Signed(hash),
	}
	switch {
	case fail:
		return append(stages, txstatus.Failed(ErrRejected))
	case scheduled:
		return append(stages, txstatus.Scheduled(at))
	}
	return append(stages,
		txstatus.Sending(hash),
		txstatus.Broadcast(hash),
		txstatus.Confirmed(hash),
		txstatus.Finalized(hash),
	)
}
