// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai-advisor/internal/app"
	"ai-advisor/internal/common/camunda"
	"ai-advisor/internal/common/config"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/observability"

	ad "ai-advisor/internal/workers/advisor/analyze-demand"
	bs "ai-advisor/internal/workers/advisor/build-solution"
	rf "ai-advisor/internal/workers/advisor/rank-feed"
)

const healthAddress = ":8080"

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("worker-manager", zapLog)
	defer obs.Shutdown()
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(observability.TracingOptions{
			Enabled:        true,
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		}); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = app.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init storage, LLM agents and services ---
	advisor, err := app.Build(ctx, cfg, app.Options{ConnectRetries: 15, Observability: obs}, log)
	if err != nil {
		zapLog.Fatal("advisor wiring failed", zap.Error(err))
	}
	defer advisor.Close()

	// --- Register advisor workers ---
	demandCfg := ad.LoadConfig()
	demandCfg.Timeout = workerTimeout(cfg, ad.TaskType, demandCfg.Timeout)
	solutionCfg := bs.LoadConfig()
	solutionCfg.Timeout = workerTimeout(cfg, bs.TaskType, solutionCfg.Timeout)
	feedCfg := rf.LoadConfig()
	feedCfg.Timeout = workerTimeout(cfg, rf.TaskType, feedCfg.Timeout)

	client := zeebe.GetClient()
	workers := []*camunda.Worker{
		camunda.StartWorker(client, ad.TaskType, config.GetWorkerConfig(cfg, ad.TaskType),
			ad.NewHandler(demandCfg, advisor.Demand, log), obs, log),
		camunda.StartWorker(client, bs.TaskType, config.GetWorkerConfig(cfg, bs.TaskType),
			bs.NewHandler(solutionCfg, advisor.Solution, log), obs, log),
		camunda.StartWorker(client, rf.TaskType, config.GetWorkerConfig(cfg, rf.TaskType),
			rf.NewHandler(feedCfg, advisor.Feed, advisor.Repo, log), obs, log),
	}
	zapLog.Info("Advisor workers registered")

	// --- Health & Metrics Server ---
	checks := map[string]func(context.Context) error{"zeebe": zeebe.HealthCheck}
	for name, check := range advisor.Checks {
		checks[name] = check
	}
	srv := &http.Server{
		Addr:              healthAddress,
		Handler:           healthHandler(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening on " + healthAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
