package market

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/disburse"
	"github.com/bitfsorg/estateshare-go/metrics"
	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/rental"
	"github.com/bitfsorg/estateshare-go/revshare"
)

// RentRequest asks to rent a property for a number of years against a
// total payment in the ledger's smallest unit.
type RentRequest struct {
	PropertyID    uint64   `json:"propertyId"`
	DurationYears int      `json:"durationYears"`
	TotalPayment  *big.Int `json:"totalPayment"`
}

// Validate checks the property id, duration and payment.
func (r RentRequest) Validate() error {
	if r.PropertyID == 0 {
		return ErrInvalidProperty
	}
	if r.DurationYears < MinDurationYears || r.DurationYears > MaxDurationYears {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, r.DurationYears)
	}
	if r.TotalPayment == nil || r.TotalPayment.Sign() <= 0 {
		return ErrInvalidPayment
	}
	return nil
}

// RentalConfirmation is the outcome of a completed rental.
type RentalConfirmation struct {
	RequestID string                    `json:"requestId"`
	Mode      Mode                      `json:"mode"`
	Record    rental.Record             `json:"record"`
	Transfers []disburse.TransferResult `json:"transfers"`
	Remainder *big.Int                  `json:"remainder"`
	CallData  string                    `json:"callData"`
}

// Orchestrator rents properties by paying the rent straight to the
// shareholders and then recording the rental in a Store.
//
// Concurrent rentals of the same property are not coordinated: both may
// pay out and the later record replaces the earlier one.
type Orchestrator struct {
	store          rental.Store
	disburser      *disburse.Disburser
	logger         *zap.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
	allowOverwrite bool
	exclusive      bool
}

var _ RentalCapability = (*Orchestrator)(nil)

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithOverwrite disables the already-rented check, so a new rental always
// replaces the stored one.
func WithOverwrite(allow bool) OrchestratorOption {
	return func(o *Orchestrator) { o.allowOverwrite = allow }
}

// WithExclusiveWrites records rentals with a conditional write when the
// store supports it. A rental that loses the race has still paid out and
// fails with rental.ErrRentalActive.
func WithExclusiveWrites(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) { o.exclusive = enabled }
}

// NewOrchestrator creates an Orchestrator recording into store and paying
// through disburser.
func NewOrchestrator(store rental.Store, disburser *disburse.Disburser, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		disburser: disburser,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mode reports ModeSimulated.
func (o *Orchestrator) Mode() Mode { return ModeSimulated }

// Rent implements RentalCapability.
func (o *Orchestrator) Rent(ctx context.Context, sess Session, req RentRequest) (*RentalConfirmation, error) {
	return o.RentProperty(ctx, sess, req)
}

// Details returns the stored rental of propertyID.
func (o *Orchestrator) Details(ctx context.Context, _ Session, propertyID uint64) (rental.Record, error) {
	return o.store.Get(ctx, propertyID)
}

// RentProperty pays req.TotalPayment out to the property's shareholders in
// proportion to their shares and records the rental for sess.Account.
//
// Nothing is recorded unless every transfer succeeds. When a transfer
// fails the earlier ones stay settled and the returned error wraps a
// *disburse.PartialDisbursementError.
func (o *Orchestrator) RentProperty(ctx context.Context, sess Session, req RentRequest) (*RentalConfirmation, error) {
	reqID := uuid.NewString()
	log := o.logger.With(
		zap.String("request_id", reqID),
		zap.Uint64("property_id", req.PropertyID),
		zap.String("tenant", sess.Account),
	)

	conf, err := o.rent(ctx, log, sess, req, reqID)
	switch {
	case err == nil:
		o.metrics.RecordRental(metrics.OutcomeSuccess)
	case errors.Is(err, disburse.ErrPartialDisbursement):
		o.metrics.RecordRental(metrics.OutcomePartial)
		log.Error("rental aborted after partial payout", zap.Error(err))
	default:
		o.metrics.RecordRental(metrics.OutcomeFailure)
		log.Warn("rental failed", zap.Error(err))
	}
	return conf, err
}

func (o *Orchestrator) rent(ctx context.Context, log *zap.Logger, sess Session, req RentRequest, reqID string) (*RentalConfirmation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := sess.validate(); err != nil {
		return nil, err
	}

	if !o.allowOverwrite {
		cur, err := o.store.Get(ctx, req.PropertyID)
		if err != nil {
			return nil, err
		}
		if cur.Occupied(o.now().Unix()) {
			return nil, fmt.Errorf("%w: property %d until %s", ErrPropertyRented,
				req.PropertyID, time.Unix(cur.EndDate, 0).UTC().Format(time.RFC3339))
		}
	}

	holders, err := network.Shareholders(ctx, sess.Contract, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: property %d: %w", ErrShareholderLookup, req.PropertyID, err)
	}
	if len(holders) == 0 {
		return nil, fmt.Errorf("%w: property %d has no shareholders", ErrShareholderLookup, req.PropertyID)
	}
	shares := make([]revshare.ShareholderShare, len(holders))
	for i, h := range holders {
		shares[i] = revshare.ShareholderShare{Address: h.Address, Shares: h.Shares}
	}

	allocs, err := revshare.Allocate(req.TotalPayment, shares)
	if err != nil {
		return nil, err
	}
	remainder := revshare.Remainder(req.TotalPayment, allocs)
	log.Info("rent allocated",
		zap.String("total", req.TotalPayment.String()),
		zap.Int("recipients", len(allocs)),
		zap.String("remainder", remainder.String()))

	transfers, err := o.disburser.Disburse(ctx, allocs, sess.Account)
	if err != nil {
		return nil, fmt.Errorf("market: rent property %d: %w", req.PropertyID, err)
	}
	o.metrics.RecordRemainder(remainder)

	now := o.now().Unix()
	rec := rental.Record{
		PropertyID: req.PropertyID,
		Tenant:     sess.Account,
		StartDate:  now,
		EndDate:    now + int64(req.DurationYears)*rental.SecondsPerYear,
		YearlyRent: new(big.Int).Quo(req.TotalPayment, big.NewInt(int64(req.DurationYears))),
		IsActive:   true,
	}
	if err := o.record(ctx, rec, now); err != nil {
		log.Error("rent paid but not recorded",
			zap.Int("transfers", len(transfers)),
			zap.Error(err))
		return nil, err
	}

	log.Info("property rented",
		zap.Int64("end_date", rec.EndDate),
		zap.String("yearly_rent", rec.YearlyRent.String()))

	return &RentalConfirmation{
		RequestID: reqID,
		Mode:      ModeSimulated,
		Record:    rec,
		Transfers: transfers,
		Remainder: remainder,
		CallData:  "0x" + hex.EncodeToString(EncodeRentCall(req.PropertyID, req.DurationYears)),
	}, nil
}

func (o *Orchestrator) record(ctx context.Context, rec rental.Record, now int64) error {
	if o.exclusive {
		if ex, ok := o.store.(rental.ExclusiveStore); ok {
			return ex.PutIfVacant(ctx, rec.PropertyID, rec, now)
		}
	}
	return o.store.Put(ctx, rec.PropertyID, rec)
}
