package market

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/rental"
)

// Mode selects how rentals are carried out.
type Mode string

const (
	// ModeAuto uses the contract's rentProperty when deployed, else ModeSimulated.
	ModeAuto Mode = "auto"
	// ModeOnChain calls the contract's rentProperty method.
	ModeOnChain Mode = "onchain"
	// ModeSimulated pays shareholders directly and records the rental locally.
	ModeSimulated Mode = "simulated"
)

// ParseMode parses a mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeOnChain, ModeSimulated:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// RentalCapability is one way of renting a property.
type RentalCapability interface {
	Mode() Mode
	Rent(ctx context.Context, sess Session, req RentRequest) (*RentalConfirmation, error)
	Details(ctx context.Context, sess Session, propertyID uint64) (rental.Record, error)
}

// rentMethod is the contract method name probed and invoked for on-chain rentals.
const rentMethod = "rentProperty"

// SelectCapability resolves mode to a concrete capability. ModeAuto probes
// the session's contract once for rentProperty.
func SelectCapability(ctx context.Context, mode Mode, contract network.ContractReader, onchain *OnChainRental, simulated *Orchestrator) (RentalCapability, error) {
	switch mode {
	case ModeOnChain:
		if onchain == nil {
			return nil, fmt.Errorf("market: %s mode is not configured", mode)
		}
		return onchain, nil
	case ModeSimulated:
		if simulated == nil {
			return nil, fmt.Errorf("market: %s mode is not configured", mode)
		}
		return simulated, nil
	case ModeAuto, "":
		ok, err := contract.SupportsMethod(ctx, rentMethod)
		if err != nil {
			return nil, fmt.Errorf("market: probe %s: %w", rentMethod, err)
		}
		if ok && onchain != nil {
			return onchain, nil
		}
		if simulated == nil {
			return nil, fmt.Errorf("market: contract lacks %s and %s mode is not configured", rentMethod, ModeSimulated)
		}
		return simulated, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// OnChainRental rents through the contract's own rentProperty method,
// which pays shareholders and keeps the rental state on the ledger.
type OnChainRental struct {
	ledger network.Ledger
	logger *zap.Logger
	now    func() time.Time
}

var _ RentalCapability = (*OnChainRental)(nil)

// NewOnChainRental creates an on-chain capability using ledger.
func NewOnChainRental(ledger network.Ledger, logger *zap.Logger) *OnChainRental {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnChainRental{ledger: ledger, logger: logger, now: time.Now}
}

// Mode reports ModeOnChain.
func (r *OnChainRental) Mode() Mode { return ModeOnChain }

// Rent sends rentProperty(id, years) with the total payment attached.
func (r *OnChainRental) Rent(ctx context.Context, sess Session, req RentRequest) (*RentalConfirmation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if sess.Account == "" {
		return nil, ErrNoAccount
	}

	reqID := uuid.NewString()
	receipt, err := r.ledger.Send(ctx, rentMethod,
		[]interface{}{req.PropertyID, req.DurationYears},
		network.SendOpts{From: sess.Account, Value: req.TotalPayment})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRentalRejected, err)
	}

	rec := recordFromReceipt(receipt, req, sess.Account, r.now().Unix())
	r.logger.Info("property rented on chain",
		zap.String("request_id", reqID),
		zap.Uint64("property_id", req.PropertyID),
		zap.String("txid", receipt.TxID))

	return &RentalConfirmation{
		RequestID: reqID,
		Mode:      ModeOnChain,
		Record:    rec,
		Remainder: new(big.Int),
		CallData:  "0x" + hex.EncodeToString(EncodeRentCall(req.PropertyID, req.DurationYears)),
	}, nil
}

// recordFromReceipt builds the rental record from the contract's
// PropertyRented event, falling back to local values for missing fields.
func recordFromReceipt(receipt *network.Receipt, req RentRequest, tenant string, now int64) rental.Record {
	rec := rental.Record{
		PropertyID: req.PropertyID,
		Tenant:     tenant,
		StartDate:  now,
		EndDate:    now + int64(req.DurationYears)*rental.SecondsPerYear,
		YearlyRent: new(big.Int).Quo(req.TotalPayment, big.NewInt(int64(req.DurationYears))),
		IsActive:   true,
	}
	for _, ev := range receipt.Events {
		if ev.Name != "PropertyRented" {
			continue
		}
		if v, err := strconv.ParseInt(ev.Values["startDate"], 10, 64); err == nil {
			rec.StartDate = v
		}
		if v, err := strconv.ParseInt(ev.Values["endDate"], 10, 64); err == nil {
			rec.EndDate = v
		}
		if v, ok := new(big.Int).SetString(ev.Values["yearlyRent"], 10); ok {
			rec.YearlyRent = v
		}
		if t := ev.Values["tenant"]; t != "" {
			rec.Tenant = t
		}
	}
	return rec
}

// Details calls the contract's getRentalDetails view.
func (r *OnChainRental) Details(ctx context.Context, _ Session, propertyID uint64) (rental.Record, error) {
	var rec *rental.Record
	if err := r.ledger.Call(ctx, "getRentalDetails", []interface{}{propertyID}, &rec); err != nil {
		return rental.Record{}, fmt.Errorf("market: rental details of %d: %w", propertyID, err)
	}
	if rec == nil {
		return rental.Absent(), nil
	}
	rec.PropertyID = propertyID
	return *rec, nil
}
