package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docspell/internal/api"
	"github.com/dgallion1/docspell/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "docspell",
		Short:         "Spell-check documents and report mistakes with their source locations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "project file (default "+config.DefaultProjectFile+" when present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every visited node")

	root.AddCommand(newCheckCmd(opts, stdout, stderr), newServeCmd(opts))
	return root
}

// load reads the environment, then the project file, and sets up logging.
func (o *rootOptions) load(stderr io.Writer) error {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	o.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	o.cfg = config.Load()
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultProjectFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = config.DefaultProjectFile
	}
	if err := config.LoadFile(path, &o.cfg); err != nil {
		return err
	}
	o.log.Debug("loaded project file", "path", path)
	return nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP check service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				opts.cfg.Port = port
			}
			if err := opts.cfg.ValidateServer(); err != nil {
				return err
			}
			log := slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), nil))
			return api.Run(cmd.Context(), opts.cfg, log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
