package quality

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/retailstar/internal/model"
)

// Config holds the adjustable rule thresholds.
type Config struct {
	AgeMin          int             // inclusive
	AgeMax          int             // inclusive
	AmountTolerance decimal.Decimal // max |stated - calc| still accepted
}

// DefaultConfig returns the stock thresholds: ages 10-100, exact amounts.
func DefaultConfig() Config {
	return Config{AgeMin: 10, AgeMax: 100, AmountTolerance: decimal.Zero}
}

// Validate checks that the thresholds are coherent.
func (c Config) Validate() error {
	if c.AgeMin > c.AgeMax {
		return fmt.Errorf("age bounds inverted: min %d > max %d", c.AgeMin, c.AgeMax)
	}
	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance %s is negative", c.AmountTolerance)
	}
	return nil
}

// Rule is one data-quality predicate.
type Rule struct {
	Reason   Reason
	Violated func(cfg Config, rec *model.EnrichedRecord) bool
}

// Rules returns the predicates in declaration order.
func Rules() []Rule {
	return []Rule{
		{InvalidDate, func(_ Config, rec *model.EnrichedRecord) bool {
			return !rec.Date.Valid
		}},
		{InvalidQuantity, func(_ Config, rec *model.EnrichedRecord) bool {
			return !rec.Raw.Parsed(model.FieldQuantity) || rec.Raw.Quantity <= 0
		}},
		{InvalidPrice, func(_ Config, rec *model.EnrichedRecord) bool {
			return !rec.Raw.Parsed(model.FieldUnitPrice) || !rec.Raw.UnitPrice.IsPositive()
		}},
		{InvalidAge, func(cfg Config, rec *model.EnrichedRecord) bool {
			return !rec.Raw.Parsed(model.FieldAge) || rec.Raw.Age < cfg.AgeMin || rec.Raw.Age > cfg.AgeMax
		}},
		{InvalidCustomerID, func(_ Config, rec *model.EnrichedRecord) bool {
			return rec.CustomerID == ""
		}},
		{AmountMismatch, func(cfg Config, rec *model.EnrichedRecord) bool {
			// An amount that cannot be recomputed cannot be confirmed.
			return !rec.Raw.AmountKnown() || rec.AmountDiff.Abs().GreaterThan(cfg.AmountTolerance)
		}},
	}
}

// Engine evaluates every rule against a record. It holds no per-record
// state and is safe for concurrent use.
type Engine struct {
	cfg   Config
	rules []Rule
}

// NewEngine creates an Engine with the stock rule set.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quality config: %w", err)
	}
	return &Engine{cfg: cfg, rules: Rules()}, nil
}

// Config returns the thresholds the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluate runs all rules, without short-circuiting, and returns the
// violations in declaration order.
func (e *Engine) Evaluate(rec *model.EnrichedRecord) Reasons {
	var rs Reasons
	for _, rule := range e.rules {
		if rule.Violated(e.cfg, rec) {
			rs = append(rs, rule.Reason)
		}
	}
	return rs
}

// EvaluateAll returns one verdict per record, index-aligned with recs.
func (e *Engine) EvaluateAll(recs []model.EnrichedRecord) []Reasons {
	out := make([]Reasons, len(recs))
	for i := range recs {
		out[i] = e.Evaluate(&recs[i])
	}
	return out
}
