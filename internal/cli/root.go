package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/portalAuth/internal/config"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	out    printer

	configPath string
	envFile    string
	baseURL    string
	backend    string
	logLevel   string
}

// NewRootCmd returns the portalctl command tree.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: printer{out: stdout, st: defaultStyles()}}

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Session and route gate tooling for the photo-event portal",
		Long: `portalctl drives the portal session store from a terminal.

It can host the gated front-end (serve), run the development auth backend
(mockapi), and log in, register, log out or inspect the persisted session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, a.envFile)
			if err != nil {
				return err
			}
			if a.baseURL != "" {
				cfg.API.BaseURL = a.baseURL
			}
			if a.backend != "" {
				cfg.Persistence.Backend = a.backend
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger, err = newLogger(stderr, cfg.Log.Level, cfg.Log.Format)
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before PORTAL_* overrides")
	flags.StringVar(&a.baseURL, "base-url", "", "auth backend base URL (overrides config)")
	flags.StringVar(&a.backend, "persistence", "", "session backend: memory, file or redis (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		newServeCmd(a),
		newMockAPICmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRoutesCmd(a),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}
