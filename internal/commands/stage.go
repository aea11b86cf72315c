package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/retailstar/internal/dataset"
	"github.com/cleared-dev/retailstar/internal/ingest"
	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/partition"
	"github.com/cleared-dev/retailstar/internal/pipeline"
	"github.com/cleared-dev/retailstar/internal/report"
	"github.com/cleared-dev/retailstar/internal/runlog"
	"github.com/cleared-dev/retailstar/internal/sink"
)

// Run log stage names.
const (
	stageClean = "clean"
	stageLoad  = "load"
)

// qualityFlags override the quality and input settings of the config file.
type qualityFlags struct {
	input     string
	ageMin    int
	ageMax    int
	tolerance string
	jobs      int
}

func (f *qualityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "raw sales CSV (overrides paths.raw)")
	cmd.Flags().IntVar(&f.ageMin, "age-min", 0, "minimum valid age (overrides quality.age_min)")
	cmd.Flags().IntVar(&f.ageMax, "age-max", 0, "maximum valid age (overrides quality.age_max)")
	cmd.Flags().StringVar(&f.tolerance, "amount-tolerance", "", "allowed |total - quantity*price| (overrides quality.amount_tolerance)")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "enrichment workers (overrides jobs)")
}

func (f *qualityFlags) apply(cmd *cobra.Command, env *environment) error {
	fs := cmd.Flags()
	if fs.Changed("input") {
		env.cfg.Paths.Raw = f.input
	}
	if fs.Changed("age-min") {
		env.cfg.Quality.AgeMin = f.ageMin
	}
	if fs.Changed("age-max") {
		env.cfg.Quality.AgeMax = f.ageMax
	}
	if fs.Changed("amount-tolerance") {
		env.cfg.Quality.AmountTolerance = f.tolerance
	}
	if fs.Changed("jobs") {
		env.cfg.Jobs = f.jobs
	}
	if err := env.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// sinkFlags override the sink section of the config file.
type sinkFlags struct {
	driver string
	target string
}

func (f *sinkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", "", "sink driver: csv, sqlite or postgres (overrides sink.driver)")
	cmd.Flags().StringVar(&f.target, "target", "", "csv directory or database DSN (overrides sink.target)")
}

func (f *sinkFlags) apply(cmd *cobra.Command, env *environment) error {
	fs := cmd.Flags()
	if fs.Changed("driver") {
		env.cfg.Sink.Driver = f.driver
	}
	if fs.Changed("target") {
		env.cfg.Sink.Target = f.target
	}
	if err := env.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func newPipeline(env *environment) (*pipeline.Pipeline, error) {
	qcfg, err := env.cfg.QualityConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(qcfg, env.cfg.Jobs, env.log)
}

// runClean reads the raw file, classifies it, writes the clean and rejected
// sets and prints the quality report.
func runClean(cmd *cobra.Command, env *environment, p *pipeline.Pipeline) (*partition.Result, error) {
	paths := env.cfg.Paths

	raws, err := ingest.ReadFile(paths.Raw)
	if err != nil {
		return nil, err
	}
	env.log.Info().Str("path", paths.Raw).Int("records", len(raws)).Msg("read raw sales")

	res, err := p.Classify(cmd.Context(), raws)
	if err != nil {
		return nil, err
	}

	clean := make([]dataset.Row, len(res.Clean))
	for i, rec := range res.Clean {
		clean[i] = dataset.Row{Record: rec}
	}
	rejected := make([]dataset.Row, len(res.Rejected))
	for i, r := range res.Rejected {
		rejected[i] = dataset.Row{Record: r.Record, Reasons: r.Reasons}
	}

	for _, out := range []struct {
		path string
		rows []dataset.Row
	}{
		{paths.Clean, clean},
		{paths.Rejected, rejected},
	} {
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		if err := dataset.WriteFile(out.path, out.rows); err != nil {
			return nil, err
		}
		env.log.Info().Str("path", out.path).Int("records", len(out.rows)).Msg("wrote dataset")
	}

	s := res.Summary()
	if err := report.Quality(cmd.OutOrStdout(), s); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	entry := runlog.Entry{
		Timestamp: time.Now(),
		RunID:     p.RunID(),
		Stage:     stageClean,
		Total:     s.Total,
		Clean:     s.Clean,
		Rejected:  s.Rejected,
		Details:   report.Details(s.Reasons),
	}
	if err := runlog.Open(paths.RunLog).Append(entry); err != nil {
		return nil, err
	}
	return res, nil
}

// runLoad writes the star schema of clean to the configured sink.
func runLoad(cmd *cobra.Command, env *environment, p *pipeline.Pipeline, clean []model.EnrichedRecord) error {
	sc := env.cfg.Sink

	if strings.EqualFold(sc.Driver, "sqlite") {
		if err := os.MkdirAll(filepath.Dir(sc.Target), 0o755); err != nil {
			return fmt.Errorf("creating warehouse dir: %w", err)
		}
	}

	dst, err := sink.Open(sc.Driver, sc.Target)
	if err != nil {
		return fmt.Errorf("opening %s sink: %w", sc.Driver, err)
	}
	defer dst.Close()

	tables, err := p.Load(cmd.Context(), clean, dst)
	if err != nil {
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing sink: %w", err)
	}

	if err := report.Load(cmd.OutOrStdout(), sc.Target, tables); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	entry := runlog.Entry{
		Timestamp: time.Now(),
		RunID:     p.RunID(),
		Stage:     stageLoad,
		Total:     len(clean),
		Clean:     len(clean),
		Details:   report.TableDetails(tables),
	}
	return runlog.Open(env.cfg.Paths.RunLog).Append(entry)
}
