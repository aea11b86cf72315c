package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar date that may be absent. The zero value is "no value"
// and never compares equal to a parsed date.
type Date struct {
	Time  time.Time // midnight UTC when Valid
	Valid bool
}

// NewDate returns a valid Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// String returns the ISO form, or "" for an absent date.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// NumericField names one of the numeric cells of a RawRecord.
type NumericField uint8

const (
	FieldAge NumericField = 1 << iota
	FieldQuantity
	FieldUnitPrice
	FieldTotalAmount
)

// amountFields are the inputs of the recomputed amount and its variance.
const amountFields = FieldQuantity | FieldUnitPrice | FieldTotalAmount

// RawRecord is one sales transaction as ingested. A numeric cell that was
// blank or did not parse is listed in Unparsed and its value is zero.
type RawRecord struct {
	TransactionID string
	CustomerID    string
	Date          string // free text, parsed by the normalizer
	Age           int
	Gender        string
	Category      string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal // stated by the source
	Unparsed      NumericField
}

// Parsed reports whether field held a usable number.
func (r RawRecord) Parsed(field NumericField) bool {
	return r.Unparsed&field == 0
}

// AmountKnown reports whether quantity, unit price and total all parsed, so
// the recomputed amount and variance are defined.
func (r RawRecord) AmountKnown() bool {
	return r.Unparsed&amountFields == 0
}

// EnrichedRecord is a RawRecord after normalization and derivation.
// Year, Month and Quarter are zero when Date is absent. AmountCalc and
// AmountDiff are zero unless Raw.AmountKnown, and AgeGroup is empty when the
// age did not parse.
type EnrichedRecord struct {
	Raw RawRecord

	CustomerID string
	Gender     string
	Category   string
	Date       Date

	AmountCalc decimal.Decimal // quantity x unit price
	AmountDiff decimal.Decimal // stated - calc
	Year       int
	Month      int
	Quarter    int
	AgeGroup   string
}
