package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/retailstar/internal/buildinfo"
	"github.com/cleared-dev/retailstar/internal/config"
	"github.com/cleared-dev/retailstar/internal/logger"
)

// ConfigFile is the config file name init writes and commands look for.
const ConfigFile = "retailstar.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "retailstar",
		Short:   "Retail sales cleaning and star schema loading",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", ConfigFile, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCommand(),
		newCleanCommand(opts),
		newLoadCommand(opts),
		newRunCommand(opts),
	)

	return rootCmd
}

// environment is the loaded config and logger shared by stage commands.
type environment struct {
	cfg *config.Config
	log zerolog.Logger
}

// load reads the config file. A missing default file falls back to built-in
// defaults; a missing file named with --config is an error. Relative paths
// in the file are taken relative to the file's directory.
func (o *rootOptions) load(cmd *cobra.Command) (*environment, error) {
	path := o.configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.Flag("config").Changed {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		abs, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		cfg.ResolvePaths(abs)
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return &environment{
		cfg: cfg,
		log: logger.New(cfg.Log, cmd.ErrOrStderr()),
	}, nil
}
