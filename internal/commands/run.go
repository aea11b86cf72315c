package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var qf qualityFlags
	var sf sinkFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clean and load stages in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := qf.apply(cmd, env); err != nil {
				return err
			}
			if err := sf.apply(cmd, env); err != nil {
				return err
			}

			p, err := newPipeline(env)
			if err != nil {
				return err
			}
			res, err := runClean(cmd, env, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return runLoad(cmd, env, p, res.Clean)
		},
	}

	qf.register(cmd)
	sf.register(cmd)

	return cmd
}
