package star

import "github.com/cleared-dev/retailstar/internal/sink"

var (
	customerColumns = []sink.Column{
		{Name: "customer_id", Type: sink.Text},
		{Name: "age", Type: sink.Integer},
		{Name: "gender", Type: sink.Text},
		{Name: "age_group", Type: sink.Text},
	}
	productColumns = []sink.Column{
		{Name: "product_category", Type: sink.Text},
	}
	dateColumns = []sink.Column{
		{Name: "date_id", Type: sink.Integer},
		{Name: "date", Type: sink.Date},
		{Name: "year", Type: sink.Integer},
		{Name: "month", Type: sink.Integer},
		{Name: "quarter", Type: sink.Integer},
	}
	factColumns = []sink.Column{
		{Name: "transaction_id", Type: sink.Text},
		{Name: "date_id", Type: sink.Integer},
		{Name: "customer_id", Type: sink.Text},
		{Name: "product_category", Type: sink.Text},
		{Name: "quantity", Type: sink.Integer},
		{Name: "unit_price", Type: sink.Decimal},
		{Name: "total_amount", Type: sink.Decimal},
		{Name: "total_amount_source", Type: sink.Decimal},
		{Name: "amount_diff", Type: sink.Decimal},
	}
)

// Tables returns the schema as sink tables, dimensions first.
func (s *Schema) Tables() []sink.Table {
	customers := sink.Table{Name: TableCustomer, Columns: customerColumns}
	for _, c := range s.Customers {
		customers.Rows = append(customers.Rows, []any{c.CustomerID, c.Age, c.Gender, c.AgeGroup})
	}

	products := sink.Table{Name: TableProduct, Columns: productColumns}
	for _, p := range s.Products {
		products.Rows = append(products.Rows, []any{p.Category})
	}

	dates := sink.Table{Name: TableDate, Columns: dateColumns}
	for _, d := range s.Dates {
		dates.Rows = append(dates.Rows, []any{d.DateID, d.Date, d.Year, d.Month, d.Quarter})
	}

	facts := sink.Table{Name: TableFact, Columns: factColumns}
	for _, f := range s.Facts {
		facts.Rows = append(facts.Rows, []any{
			f.TransactionID, f.DateID, f.CustomerID, f.Category, f.Quantity,
			f.UnitPrice, f.TotalAmount, f.SourceAmount, f.AmountDiff,
		})
	}

	return []sink.Table{customers, products, dates, facts}
}
