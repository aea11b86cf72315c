package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRow is a row of dim_customer. Rows are distinct on the full tuple,
// so one customer ID may appear more than once.
type CustomerRow struct {
	CustomerID string
	Age        int
	Gender     string
	AgeGroup   string
}

// ProductRow is a row of dim_product.
type ProductRow struct {
	Category string
}

// DateRow is a row of dim_date keyed by the YYYYMMDD surrogate.
type DateRow struct {
	DateID  int
	Date    time.Time
	Year    int
	Month   int
	Quarter int
}

// FactRow is a row of fact_sales, one per clean transaction.
type FactRow struct {
	TransactionID string
	DateID        int
	CustomerID    string
	Category      string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal // recomputed
	SourceAmount  decimal.Decimal // as stated
	AmountDiff    decimal.Decimal
}
