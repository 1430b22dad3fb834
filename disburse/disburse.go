// Package disburse pays a computed rent allocation out to shareholders,
// one ledger transfer at a time.
package disburse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/metrics"
	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/revshare"
)

// Disburser submits the transfers of a plan sequentially.
type Disburser struct {
	ledger  network.Transferer
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Disburser.
type Option func(*Disburser)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(d *Disburser) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Disburser) { d.metrics = m }
}

// New creates a Disburser that transfers through ledger.
func New(ledger network.Transferer, opts ...Option) *Disburser {
	d := &Disburser{ledger: ledger, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Disburse transfers each allocation from payer to its recipient, in order,
// waiting for the ledger to accept each transfer before starting the next.
// Zero amounts are sent like any other.
//
// If transfer k fails the earlier transfers stay settled and the returned
// error is a *PartialDisbursementError.
func (d *Disburser) Disburse(ctx context.Context, allocs []revshare.RentAllocation, payer string) ([]TransferResult, error) {
	plan := NewPlan(allocs)
	if err := d.Execute(ctx, plan, payer); err != nil {
		return nil, err
	}
	return plan.Succeeded(), nil
}

// Execute runs plan from its first unsettled step. Succeeded steps are
// never re-sent, so a plan that failed part way can be executed again.
func (d *Disburser) Execute(ctx context.Context, plan *Plan, payer string) error {
	if plan == nil {
		return ErrNilPlan
	}
	if payer == "" {
		return ErrNoPayer
	}

	for i := plan.Next(); i >= 0 && i < len(plan.Steps); i++ {
		step := &plan.Steps[i]
		if step.State == StepSucceeded {
			continue
		}
		amount := step.Allocation.Amount

		start := time.Now()
		receipt, err := d.ledger.SubmitTransfer(ctx, payer, step.Allocation.Address, amount)
		d.metrics.RecordTransfer(amount, err, time.Since(start))

		if err != nil {
			step.State, step.Err = StepFailed, err
			d.logger.Warn("rent transfer failed",
				zap.Int("index", i),
				zap.String("payer", payer),
				zap.String("recipient", step.Allocation.Address),
				zap.String("amount", amount.String()),
				zap.Error(err))
			return &PartialDisbursementError{
				Succeeded:   plan.Succeeded(),
				FailedIndex: i,
				Failed:      step.Allocation,
				Cause:       err,
				Plan:        plan,
			}
		}
		if receipt == nil {
			receipt = &network.Receipt{}
		}
		step.State, step.TransferID, step.Err = StepSucceeded, receipt.TxID, nil
		d.logger.Info("rent transfer settled",
			zap.Int("index", i),
			zap.String("recipient", step.Allocation.Address),
			zap.String("amount", amount.String()),
			zap.String("txid", receipt.TxID))
	}
	return nil
}

// Resume checks that plan still matches a fresh allocation of total across
// shares and then executes its remaining steps.
func (d *Disburser) Resume(ctx context.Context, plan *Plan, payer string, total *big.Int, shares []revshare.ShareholderShare) error {
	if plan == nil {
		return ErrNilPlan
	}
	if err := revshare.ValidateAllocation(plan.Allocations(), total, shares); err != nil {
		return fmt.Errorf("disburse: plan no longer matches allocation: %w", err)
	}
	return d.Execute(ctx, plan, payer)
}
