package commands

import (
	"github.com/spf13/cobra"
)

func newCleanCommand(opts *rootOptions) *cobra.Command {
	var qf qualityFlags

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Validate raw sales and write the clean and rejected sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := qf.apply(cmd, env); err != nil {
				return err
			}

			p, err := newPipeline(env)
			if err != nil {
				return err
			}
			_, err = runClean(cmd, env, p)
			return err
		},
	}

	qf.register(cmd)

	return cmd
}
