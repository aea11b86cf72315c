// Package pipeline runs the two stages: quality classification of raw
// records, and loading the clean set into a star schema sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/retailstar/internal/derive"
	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/partition"
	"github.com/cleared-dev/retailstar/internal/quality"
	"github.com/cleared-dev/retailstar/internal/sink"
	"github.com/cleared-dev/retailstar/internal/star"
)

// minChunk keeps small inputs on a single goroutine.
const minChunk = 1024

// Pipeline holds the rule engine and worker settings for one run.
type Pipeline struct {
	engine *quality.Engine
	jobs   int
	runID  string
	log    zerolog.Logger
}

// New creates a Pipeline. jobs below one means one worker.
func New(cfg quality.Config, jobs int, log zerolog.Logger) (*Pipeline, error) {
	engine, err := quality.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if jobs < 1 {
		jobs = 1
	}
	runID := uuid.NewString()
	return &Pipeline{
		engine: engine,
		jobs:   jobs,
		runID:  runID,
		log:    log.With().Str("run_id", runID).Logger(),
	}, nil
}

// RunID identifies this run in logs and the run log.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Classify enriches and evaluates every record, then partitions them.
// Records are independent, so chunks are processed concurrently; results
// stay index-aligned with raws.
func (p *Pipeline) Classify(ctx context.Context, raws []model.RawRecord) (*partition.Result, error) {
	recs := make([]model.EnrichedRecord, len(raws))
	verdicts := make([]quality.Reasons, len(raws))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs)

	size := max(minChunk, (len(raws)+p.jobs-1)/p.jobs)
	for start := 0; start < len(raws); start += size {
		end := min(start+size, len(raws))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				recs[i] = derive.Enrich(raws[i])
				verdicts[i] = p.engine.Evaluate(&recs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classifying records: %w", err)
	}

	res, err := partition.Split(recs, verdicts)
	if err != nil {
		return nil, err
	}

	s := res.Summary()
	p.log.Info().
		Int("total", s.Total).
		Int("clean", s.Clean).
		Int("rejected", s.Rejected).
		Msg("quality stage done")
	return res, nil
}

// Load builds the star schema from clean and replaces every table in dst,
// dimensions before facts. It returns the tables written.
func (p *Pipeline) Load(ctx context.Context, clean []model.EnrichedRecord, dst sink.Sink) ([]sink.Table, error) {
	schema, err := star.Transform(clean)
	if err != nil {
		return nil, fmt.Errorf("building star schema: %w", err)
	}

	if refErrs := star.CheckReferences(schema); len(refErrs) > 0 {
		errs := make([]error, len(refErrs))
		for i, e := range refErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("referential check: %w", errors.Join(errs...))
	}

	tables := schema.Tables()
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := dst.Replace(ctx, t); err != nil {
			return nil, fmt.Errorf("writing %s: %w", t.Name, err)
		}
		p.log.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Msg("table replaced")
	}

	p.log.Info().
		Int("customers", len(schema.Customers)).
		Int("products", len(schema.Products)).
		Int("dates", len(schema.Dates)).
		Int("facts", len(schema.Facts)).
		Msg("load stage done")
	return tables, nil
}
