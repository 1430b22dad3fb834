package disburse

import (
	"math/big"

	"github.com/bitfsorg/estateshare-go/revshare"
)

// StepState is the settlement state of one planned transfer.
type StepState int

const (
	StepPending StepState = iota
	StepSucceeded
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one transfer of a Plan.
type Step struct {
	Allocation revshare.RentAllocation
	State      StepState
	TransferID string
	Err        error
}

// Plan is an ordered list of transfers that can be executed, interrupted
// and resumed without paying any recipient twice.
type Plan struct {
	Steps []Step
}

// TransferResult is a settled transfer.
type TransferResult struct {
	Recipient  string   `json:"recipient"`
	Amount     *big.Int `json:"amount"`
	TransferID string   `json:"transferId"`
}

// NewPlan creates a pending step per allocation, in allocation order.
// Amounts are copied.
func NewPlan(allocs []revshare.RentAllocation) *Plan {
	p := &Plan{Steps: make([]Step, len(allocs))}
	for i, a := range allocs {
		amount := new(big.Int)
		if a.Amount != nil {
			amount.Set(a.Amount)
		}
		p.Steps[i] = Step{Allocation: revshare.RentAllocation{Address: a.Address, Amount: amount}}
	}
	return p
}

// Next returns the index of the first step that has not succeeded, or -1
// when the plan is complete.
func (p *Plan) Next() int {
	for i := range p.Steps {
		if p.Steps[i].State != StepSucceeded {
			return i
		}
	}
	return -1
}

// Done reports whether every step has succeeded.
func (p *Plan) Done() bool { return p.Next() == -1 }

// Succeeded returns the settled transfers in plan order.
func (p *Plan) Succeeded() []TransferResult {
	out := make([]TransferResult, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.State == StepSucceeded {
			out = append(out, TransferResult{
				Recipient:  s.Allocation.Address,
				Amount:     new(big.Int).Set(s.Allocation.Amount),
				TransferID: s.TransferID,
			})
		}
	}
	return out
}

// Allocations returns the planned allocations in order.
func (p *Plan) Allocations() []revshare.RentAllocation {
	out := make([]revshare.RentAllocation, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Allocation
	}
	return out
}
