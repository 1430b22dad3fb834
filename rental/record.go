// Package rental persists the rental agreement recorded for each property.
//
// Every backend stores one value per property under the key
// "rental_<propertyId>". The value is the JSON document
//
//	{"propertyId":7,"tenant":"...","startDate":1700000000,
//	 "endDate":1763072000,"yearlyRent":"50","isActive":true}
//
// with yearlyRent as a decimal string so no precision is lost.
package rental

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// SecondsPerYear is the fixed rental year used for end dates.
const SecondsPerYear int64 = 31536000

// KeyPrefix prefixes every stored rental key.
const KeyPrefix = "rental_"

// Key returns the storage key of property id.
func Key(propertyID uint64) string {
	return KeyPrefix + strconv.FormatUint(propertyID, 10)
}

// ParseKey extracts the property id from a storage key.
func ParseKey(key string) (uint64, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(key[len(KeyPrefix):], 10, 64)
	return id, err == nil
}

// Record is the rental agreement for one property. Dates are Unix seconds.
type Record struct {
	PropertyID uint64
	Tenant     string
	StartDate  int64
	EndDate    int64
	YearlyRent *big.Int
	IsActive   bool
}

// Absent returns the record reported for a property that was never rented.
func Absent() Record {
	return Record{YearlyRent: new(big.Int)}
}

// Status classifies a record at a point in time.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
)

// Status returns the state of r at Unix time now.
func (r Record) Status(now int64) Status {
	switch {
	case !r.IsActive:
		return StatusInactive
	case now < r.StartDate:
		return StatusUpcoming
	case now >= r.EndDate:
		return StatusExpired
	default:
		return StatusActive
	}
}

// Occupied reports whether r blocks a new rental at time now.
func (r Record) Occupied(now int64) bool {
	return r.IsActive && now < r.EndDate
}

// Equal reports whether r and o carry the same values.
func (r Record) Equal(o Record) bool {
	return r.PropertyID == o.PropertyID &&
		r.Tenant == o.Tenant &&
		r.StartDate == o.StartDate &&
		r.EndDate == o.EndDate &&
		r.IsActive == o.IsActive &&
		rentOrZero(r.YearlyRent).Cmp(rentOrZero(o.YearlyRent)) == 0
}

func rentOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

type recordWire struct {
	PropertyID uint64 `json:"propertyId"`
	Tenant     string `json:"tenant"`
	StartDate  int64  `json:"startDate"`
	EndDate    int64  `json:"endDate"`
	YearlyRent string `json:"yearlyRent"`
	IsActive   bool   `json:"isActive"`
}

// MarshalJSON encodes r in the persisted layout.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordWire{
		PropertyID: r.PropertyID,
		Tenant:     r.Tenant,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		YearlyRent: rentOrZero(r.YearlyRent).String(),
		IsActive:   r.IsActive,
	})
}

// UnmarshalJSON decodes the persisted layout. yearlyRent may be a decimal
// string or a JSON number.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w struct {
		recordWire
		YearlyRent json.Number `json:"yearlyRent"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rent := new(big.Int)
	if w.YearlyRent != "" {
		if _, ok := rent.SetString(string(w.YearlyRent), 10); !ok {
			return fmt.Errorf("%w: yearlyRent %q", ErrCorruptRecord, w.YearlyRent)
		}
	}
	*r = Record{
		PropertyID: w.PropertyID,
		Tenant:     w.Tenant,
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		YearlyRent: rent,
		IsActive:   w.IsActive,
	}
	return nil
}

func encode(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrStoreWrite, err)
	}
	return data, nil
}

func decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return rec, nil
}

// ByTenant returns the records whose tenant is address. Addresses compare
// case-insensitively.
func ByTenant(records []Record, address string) []Record {
	var out []Record
	for _, r := range records {
		if r.Tenant != "" && strings.EqualFold(r.Tenant, address) {
			out = append(out, r)
		}
	}
	return out
}
