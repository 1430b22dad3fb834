// Package market implements property rental: pricing, paying rent out to
// shareholders and recording the agreement.
package market

import (
	"strings"

	"github.com/bitfsorg/estateshare-go/network"
)

// MinDurationYears and MaxDurationYears bound a rental's length.
const (
	MinDurationYears = 1
	MaxDurationYears = 10
)

// Session identifies the acting account and the contract it talks to.
// It is passed to every operation.
type Session struct {
	Account  string
	Contract network.ContractReader
}

func (s Session) validate() error {
	if s.Account == "" {
		return ErrNoAccount
	}
	if s.Contract == nil {
		return ErrNoContract
	}
	return nil
}

// sameAccount compares account addresses case-insensitively.
func sameAccount(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
