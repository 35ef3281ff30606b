// Package balances normalizes aggregator balance line items into a fixed
// set of named buckets.
package balances

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
)

// Type is a balance bucket name as used by the aggregator.
type Type string

// Known balance buckets.
const (
	InterimAvailable Type = "interimAvailable"
	InterimBooked    Type = "interimBooked"
	Expected         Type = "expected"
	OpeningBooked    Type = "openingBooked"
	ClosingBooked    Type = "closingBooked"
	ForwardAvailable Type = "forwardAvailable"
	NonInvoiced      Type = "nonInvoiced"
)

// Types lists every bucket in display order.
var Types = []Type{
	InterimAvailable,
	InterimBooked,
	Expected,
	OpeningBooked,
	ClosingBooked,
	ForwardAvailable,
	NonInvoiced,
}

// Valid reports whether t is a known bucket.
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// Amount is a balanceAmount as returned by the API. The amount is a
// decimal string upstream but some institutions send a number.
type Amount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Entry is one raw balance line.
type Entry struct {
	BalanceAmount      Amount `json:"balanceAmount"`
	BalanceType        string `json:"balanceType"`
	ReferenceDate      string `json:"referenceDate,omitempty"`
	LastChangeDateTime string `json:"lastChangeDateTime,omitempty"`
}

// Response is the body of the account balances call.
type Response struct {
	Balances []Entry `json:"balances"`
}

// Balances maps every bucket to an amount. Buckets missing from the
// response are present with Valid=false.
type Balances map[Type]decimal.NullDecimal

// Normalize picks the known buckets out of resp. Unknown balance types are
// ignored; when a type appears more than once the first entry wins.
func Normalize(resp Response) Balances {
	out := make(Balances, len(Types))
	for _, t := range Types {
		out[t] = decimal.NullDecimal{}
	}
	for _, e := range resp.Balances {
		t := Type(e.BalanceType)
		if !t.Valid() || out[t].Valid {
			continue
		}
		out[t] = decimal.NewNullDecimal(e.BalanceAmount.Amount)
	}
	return out
}

// Currency returns the currency of the first entry, or "".
func Currency(resp Response) string {
	for _, e := range resp.Balances {
		if e.BalanceAmount.Currency != "" {
			return e.BalanceAmount.Currency
		}
	}
	return ""
}

// Get returns the amount of t and whether it is known.
func (b Balances) Get(t Type) (decimal.Decimal, bool) {
	v, ok := b[t]
	if !ok || !v.Valid {
		return decimal.Decimal{}, false
	}
	return v.Decimal, true
}

// Known returns the buckets that carry a value, in display order.
func (b Balances) Known() []Type {
	var known []Type
	for _, t := range Types {
		if v, ok := b[t]; ok && v.Valid {
			known = append(known, t)
		}
	}
	return known
}

// Filter keeps only the given buckets. An empty selection keeps all.
func (b Balances) Filter(types []Type) Balances {
	if len(types) == 0 {
		return b
	}
	out := make(Balances, len(types))
	for _, t := range types {
		out[t] = b[t]
	}
	return out
}

// MarshalJSON emits every bucket, unknown ones as null.
func (b Balances) MarshalJSON() ([]byte, error) {
	m := make(map[string]decimal.NullDecimal, len(b))
	for t, v := range b {
		m[string(t)] = v
	}
	return json.Marshal(m)
}

// shorthands maps user-facing names to buckets.
var shorthands = map[string]Type{
	"available": InterimAvailable,
	"booked":    InterimBooked,
}

// ParseTypes resolves configured balance type names. It accepts the
// shorthands "Available" and "Booked" as well as bucket names.
func ParseTypes(names []string) ([]Type, error) {
	types := make([]Type, 0, len(names))
	for _, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// ParseType resolves one balance type name.
func ParseType(name string) (Type, error) {
	trimmed := strings.TrimSpace(name)
	if t, ok := shorthands[strings.ToLower(trimmed)]; ok {
		return t, nil
	}
	for _, t := range Types {
		if strings.EqualFold(string(t), trimmed) {
			return t, nil
		}
	}
	return "", errors.NewValidationError("balance_types", name,
		fmt.Sprintf("unknown balance type %q", name))
}
