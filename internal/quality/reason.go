// Package quality classifies enriched sales records as clean or rejected.
package quality

import (
	"fmt"
	"strings"
)

// Reason is a machine-readable rejection code. Values are ordered by rule
// declaration, and that order is the serialization order.
type Reason uint8

const (
	InvalidDate Reason = iota + 1
	InvalidQuantity
	InvalidPrice
	InvalidAge
	InvalidCustomerID
	AmountMismatch
)

// Separator joins reason codes in the composite reason string.
const Separator = "|"

var reasonCodes = map[Reason]string{
	InvalidDate:       "INVALID_DATE",
	InvalidQuantity:   "INVALID_QUANTITY",
	InvalidPrice:      "INVALID_PRICE",
	InvalidAge:        "INVALID_AGE",
	InvalidCustomerID: "INVALID_CUSTOMER_ID",
	AmountMismatch:    "AMOUNT_MISMATCH",
}

// String returns the reason code, e.g. "INVALID_DATE".
func (r Reason) String() string {
	if code, ok := reasonCodes[r]; ok {
		return code
	}
	return fmt.Sprintf("Reason(%d)", uint8(r))
}

// ParseReason returns the Reason for a code.
func ParseReason(code string) (Reason, error) {
	for r, c := range reasonCodes {
		if c == code {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown reason code %q", code)
}

// Reasons is the verdict for one record: the violated rules in declaration
// order. An empty Reasons means the record is clean.
type Reasons []Reason

// Clean reports whether no rule was violated.
func (rs Reasons) Clean() bool {
	return len(rs) == 0
}

// Has reports whether r is among the violations.
func (rs Reasons) Has(r Reason) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// String returns the composite reason string, "" for a clean verdict.
func (rs Reasons) String() string {
	codes := make([]string, len(rs))
	for i, r := range rs {
		codes[i] = r.String()
	}
	return strings.Join(codes, Separator)
}

// ParseReasons parses a composite reason string. "" parses to a clean verdict.
func ParseReasons(s string) (Reasons, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, Separator)
	rs := make(Reasons, 0, len(parts))
	for _, p := range parts {
		r, err := ParseReason(p)
		if err != nil {
			return nil, fmt.Errorf("parsing reasons %q: %w", s, err)
		}
		if len(rs) > 0 && r <= rs[len(rs)-1] {
			return nil, fmt.Errorf("parsing reasons %q: %s out of order", s, p)
		}
		rs = append(rs, r)
	}
	return rs, nil
}
