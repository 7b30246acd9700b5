// Package cli implements the advisor command line.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai-advisor/internal/app"
	"ai-advisor/internal/common/config"
	"ai-advisor/internal/common/logger"
)

type globalFlags struct {
	configPath string
	inMemory   bool
	logLevel   string
}

func Execute() error {
	return NewRoot().Execute()
}

func NewRoot() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "advisor",
		Short:        "AI enterprise advisor: feed, chat and solution export",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config.yaml (default: ./configs/config.yaml)")
	root.PersistentFlags().BoolVar(&g.inMemory, "in-memory", false, "Serve the demo catalog without a database")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override logging.level")

	root.AddCommand(
		ServeCmd(g),
		ChatCmd(g),
		FeedCmd(g),
		EstimateCmd(),
		ExportCmd(),
		ActivitiesCmd(),
		MigrateCmd(g),
	)
	return root
}

// loadConfig reads the config file. In-memory runs without a file fall
// back to the built-in defaults.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	switch {
	case g.configPath != "":
		return config.LoadFromFile(g.configPath)
	case g.inMemory:
		return config.Defaults(), nil
	default:
		return config.Load()
	}
}

func (g *globalFlags) newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	return logger.New(level, cfg.Logging.Format)
}

// build loads config and wires the application. Callers must Close the app
// and Sync the logger.
func (g *globalFlags) build(ctx context.Context, opts app.Options) (*app.App, *zap.Logger, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	zl := g.newLogger(cfg)
	opts.InMemory = g.inMemory
	a, err := app.Build(ctx, cfg, opts, logger.NewZapAdapter(zl))
	if err != nil {
		_ = zl.Sync()
		return nil, nil, err
	}
	return a, zl, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
