// Package star derives a star schema from clean sales records.
//
// Deduplication needs the whole clean set, so Transform materializes it.
// Memory grows with the number of distinct dimension tuples plus one fact
// row per record. Row order in every table is first appearance in the
// input, which makes the output reproducible for a given input.
package star

import (
	"fmt"

	"github.com/cleared-dev/retailstar/internal/id"
	"github.com/cleared-dev/retailstar/internal/model"
)

// Table names as written to the sink.
const (
	TableCustomer = "dim_customer"
	TableProduct  = "dim_product"
	TableDate     = "dim_date"
	TableFact     = "fact_sales"
)

// Schema is the star schema built from one clean set.
type Schema struct {
	Customers []model.CustomerRow
	Products  []model.ProductRow
	Dates     []model.DateRow
	Facts     []model.FactRow
}

// Transform builds the dimension and fact tables. Every record must carry a
// parsed date; a clean set always does.
func Transform(clean []model.EnrichedRecord) (*Schema, error) {
	s := &Schema{Facts: make([]model.FactRow, 0, len(clean))}

	// Customers are distinct on the whole tuple, not the ID alone.
	customers := make(map[model.CustomerRow]struct{})
	products := make(map[string]struct{})
	dates := make(map[int]struct{})

	for i := range clean {
		rec := &clean[i]
		if !rec.Date.Valid {
			return nil, fmt.Errorf("transaction %s: no date", rec.Raw.TransactionID)
		}

		c := model.CustomerRow{
			CustomerID: rec.CustomerID,
			Age:        rec.Raw.Age,
			Gender:     rec.Gender,
			AgeGroup:   rec.AgeGroup,
		}
		if _, ok := customers[c]; !ok {
			customers[c] = struct{}{}
			s.Customers = append(s.Customers, c)
		}

		if _, ok := products[rec.Category]; !ok {
			products[rec.Category] = struct{}{}
			s.Products = append(s.Products, model.ProductRow{Category: rec.Category})
		}

		dateID := id.FormatDateKey(rec.Date.Time)
		if _, ok := dates[dateID]; !ok {
			dates[dateID] = struct{}{}
			s.Dates = append(s.Dates, model.DateRow{
				DateID:  dateID,
				Date:    rec.Date.Time,
				Year:    rec.Date.Time.Year(),
				Month:   int(rec.Date.Time.Month()),
				Quarter: id.Quarter(int(rec.Date.Time.Month())),
			})
		}

		s.Facts = append(s.Facts, model.FactRow{
			TransactionID: rec.Raw.TransactionID,
			DateID:        dateID,
			CustomerID:    rec.CustomerID,
			Category:      rec.Category,
			Quantity:      rec.Raw.Quantity,
			UnitPrice:     rec.Raw.UnitPrice,
			TotalAmount:   rec.AmountCalc,
			SourceAmount:  rec.Raw.TotalAmount,
			AmountDiff:    rec.AmountDiff,
		})
	}
	return s, nil
}

// ReferenceError is a fact row whose key has no dimension row.
type ReferenceError struct {
	TransactionID string
	Table         string
	Key           string
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("transaction %s: %s has no row for %q", e.TransactionID, e.Table, e.Key)
}

// CheckReferences returns every fact reference missing from its dimension.
// A schema built by Transform always passes.
func CheckReferences(s *Schema) []ReferenceError {
	customers := make(map[string]bool, len(s.Customers))
	for _, c := range s.Customers {
		customers[c.CustomerID] = true
	}
	products := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		products[p.Category] = true
	}
	dates := make(map[int]bool, len(s.Dates))
	for _, d := range s.Dates {
		dates[d.DateID] = true
	}

	var errs []ReferenceError
	for _, f := range s.Facts {
		if !dates[f.DateID] {
			errs = append(errs, ReferenceError{f.TransactionID, TableDate, fmt.Sprint(f.DateID)})
		}
		if !customers[f.CustomerID] {
			errs = append(errs, ReferenceError{f.TransactionID, TableCustomer, f.CustomerID})
		}
		if !products[f.Category] {
			errs = append(errs, ReferenceError{f.TransactionID, TableProduct, f.Category})
		}
	}
	return errs
}
