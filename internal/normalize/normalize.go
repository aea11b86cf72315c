// Package normalize canonicalizes the free-text fields of raw sales records.
package normalize

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cleared-dev/retailstar/internal/model"
)

// dateLayouts are tried in order. Time of day, when present, is dropped.
// Single-digit month and day elements also accept zero-padded input.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
}

// Fields holds the normalized text fields of one record.
type Fields struct {
	CustomerID string
	Gender     string
	Category   string
	Date       model.Date
}

// Normalize trims text fields, title-cases gender and category, and parses
// the date. It never fails: an unparseable date yields an absent model.Date.
func Normalize(raw model.RawRecord) Fields {
	return Fields{
		CustomerID: strings.TrimSpace(raw.CustomerID),
		Gender:     Title(raw.Gender),
		Category:   Title(raw.Category),
		Date:       ParseDate(raw.Date),
	}
}

// Title trims s and rewrites it in title case ("beauty " -> "Beauty").
func Title(s string) string {
	// cases.Caser is stateful, so a fresh one is used per call.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// ParseDate parses s into a calendar date. Impossible dates such as
// "2024-13-40" and empty input return the zero model.Date.
func ParseDate(s string) model.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Date{}
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return model.NewDate(t.Year(), t.Month(), t.Day())
	}
	return model.Date{}
}
