package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/inventory"
	"github.com/zero-day-ai/inventory/config"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath   string
	organization string
	logLevel     string
	logFormat    string
}

// opener builds the session a command runs against.
type opener func(ctx context.Context, flags *globalFlags, logger *slog.Logger) (*inventory.Session, error)

func openSession(ctx context.Context, flags *globalFlags, logger *slog.Logger) (*inventory.Session, error) {
	getenv := os.Getenv
	if flags.organization != "" {
		getenv = func(name string) string {
			if name == config.EnvPrefix+"ORGANIZATION" {
				return flags.organization
			}
			return os.Getenv(name)
		}
	}

	cfg, err := config.LoadWithEnv(flags.configPath, getenv)
	if err != nil {
		return nil, err
	}
	return inventory.Open(ctx, cfg, logger)
}

func newRootCmd(open opener) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "inventory",
		Short: "Query objects of interest and their provenance",
		Long: `inventory reads objects of interest (OOIs) from the knowledge-graph service
of one organization: single objects, bounded-depth trees, paged listings,
provenance enriched with normalizer metadata and plugin descriptors, and
scalar property views merged with the knowledge base.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to the YAML configuration file")
	pf.StringVarP(&flags.organization, "organization", "o", "", "organization code (overrides the configuration)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	// withSession opens a session for the duration of one command.
	var withSession sessionRunner = func(run func(cmd *cobra.Command, args []string, s *inventory.Session) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat)
			s, err := open(cmd.Context(), flags, logger)
			if err != nil {
				return err
			}
			defer inventory.CloseWithLog(s, logger, "session")
			return run(cmd, args, s)
		}
	}

	root.AddCommand(
		newGetCmd(withSession),
		newTreeCmd(withSession),
		newListCmd(withSession),
		newCountCmd(withSession),
		newOriginsCmd(withSession),
		newDeclareCmd(withSession),
		newPropertiesCmd(withSession),
		newPluginsCmd(withSession),
		newHealthCmd(withSession),
	)
	return root
}

type sessionRunner func(run func(cmd *cobra.Command, args []string, s *inventory.Session) error) func(*cobra.Command, []string) error

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
