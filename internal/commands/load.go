package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/retailstar/internal/dataset"
)

func newLoadCommand(opts *rootOptions) *cobra.Command {
	var sf sinkFlags

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the clean set into the star schema sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := sf.apply(cmd, env); err != nil {
				return err
			}

			rows, err := dataset.ReadFile(env.cfg.Paths.Clean)
			if err != nil {
				return err
			}
			for i, row := range rows {
				if !row.Reasons.Clean() {
					return fmt.Errorf("%s row %d: transaction %s is rejected (%s)",
						env.cfg.Paths.Clean, i+2, row.Record.Raw.TransactionID, row.Reasons)
				}
			}
			env.log.Info().Str("path", env.cfg.Paths.Clean).Int("records", len(rows)).Msg("read clean set")

			p, err := newPipeline(env)
			if err != nil {
				return err
			}
			return runLoad(cmd, env, p, dataset.Records(rows))
		},
	}

	sf.register(cmd)

	return cmd
}
