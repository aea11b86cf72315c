// Package report renders human-readable stage summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/cleared-dev/retailstar/internal/partition"
	"github.com/cleared-dev/retailstar/internal/sink"
)

// TopReasons is how many reject reasons the quality report lists.
const TopReasons = 10

// Quality writes the record counts, the most frequent reject reasons and
// the amount control totals.
func Quality(w io.Writer, s partition.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Records:  %s\n", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(&b, "Clean:    %s\n", humanize.Comma(int64(s.Clean)))
	fmt.Fprintf(&b, "Rejected: %s\n", humanize.Comma(int64(s.Rejected)))

	if top := s.Top(TopReasons); len(top) > 0 {
		b.WriteString("\nTop reject reasons:\n")
		for _, rc := range top {
			fmt.Fprintf(&b, "  %-40s %s\n", rc.Reason, humanize.Comma(int64(rc.Count)))
		}
	}

	b.WriteString("\nAmount control totals:\n")
	fmt.Fprintf(&b, "  stated:     %s\n", s.Amounts.Source.StringFixed(2))
	fmt.Fprintf(&b, "  recomputed: %s\n", s.Amounts.Calc.StringFixed(2))
	fmt.Fprintf(&b, "  difference: %s\n", s.Amounts.Diff().StringFixed(2))

	_, err := io.WriteString(w, b.String())
	return err
}

// Load writes the row count of every table written to target.
func Load(w io.Writer, target string, tables []sink.Table) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Loaded %d tables into %s\n", len(tables), target)
	for _, t := range tables {
		fmt.Fprintf(&b, "  %-14s %s rows\n", t.Name, humanize.Comma(int64(len(t.Rows))))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Details condenses reason counts into one line for the run log.
func Details(reasons []partition.ReasonCount) string {
	parts := make([]string, len(reasons))
	for i, rc := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", rc.Reason, rc.Count)
	}
	return strings.Join(parts, "; ")
}

// TableDetails condenses table row counts into one line for the run log.
func TableDetails(tables []sink.Table) string {
	parts := make([]string, len(tables))
	for i, t := range tables {
		parts[i] = fmt.Sprintf("%s=%d", t.Name, len(t.Rows))
	}
	return strings.Join(parts, "; ")
}
