package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ai-advisor/internal/api"
	"ai-advisor/internal/app"
	"ai-advisor/internal/common/config"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/observability"
)

func ServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			zl := g.newLogger(cfg)
			defer func() { _ = zl.Sync() }()
			log := logger.NewZapAdapter(zl)

			obs := observability.New(cfg.App.Name, zl)
			defer obs.Shutdown()
			if cfg.Tracing.Enabled {
				if err := obs.EnableTracing(observability.TracingOptions{
					Enabled:        true,
					JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
					SampleRatio:    cfg.Tracing.SampleRatio,
				}); err != nil {
					log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
				}
			}

			a, err := app.Build(ctx, cfg, app.Options{InMemory: g.inMemory, Observability: obs}, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				cfg.Server.Address = addr
			}
			srv := api.NewServer(serverConfig(cfg), a.Repo, a.Advisor, a.Feed, a.Dashboard, log, serverOptions(a)...)
			fmt.Fprintf(cmd.OutOrStdout(), "advisor API listening on %s\n", cfg.Server.Address)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP bind address (overrides server.address)")
	return cmd
}

func serverConfig(cfg *config.Config) api.Config {
	return api.Config{
		Address:        cfg.Server.Address,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		ReadTimeout:    config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:   config.GetDuration(cfg.Server.WriteTimeout),
	}
}

func serverOptions(a *app.App) []api.Option {
	var opts []api.Option
	if a.Mailer != nil {
		opts = append(opts, api.WithMailer(a.Mailer))
	}
	for name, check := range a.Checks {
		opts = append(opts, api.WithReadinessCheck(name, api.ReadinessCheck(check)))
	}
	if a.LLM == nil {
		opts = append(opts, api.WithReadinessCheck("ark", func(context.Context) error {
			return fmt.Errorf("ARK_API_KEY is not configured")
		}))
	}
	return opts
}
