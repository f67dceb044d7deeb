// Command serve exposes the loaded table over a read-only JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EmpoweredVote/county-health-etl/internal/config"
	"github.com/EmpoweredVote/county-health-etl/internal/db"
	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/report"
	"github.com/EmpoweredVote/county-health-etl/internal/sink"
)

func main() {
	cfgPath := flag.String("config", "", "path to pipeline YAML (default $PIPELINE_CONFIG or pipeline.yaml)")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("load env: %v", err)
	}
	cfg, err := config.Load(config.ResolvePath(*cfgPath))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		LogSQL: cfg.Database.LogSQL || logger.Level() == logging.LevelDebug,
	}, logger.Writer())
	if err != nil {
		logger.LogError("open database", err)
		os.Exit(1)
	}
	defer db.Close(conn)

	store := sink.NewStore(conn, cfg.Database.Table, cfg.Database.BatchSize, logger)
	handler := report.SetupRoutes(report.NewHandlers(store, logger), cfg.Report)

	srv := &http.Server{
		Addr:              cfg.Report.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("serving %s on %s", store.Table(), cfg.Report.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.LogError("server", err)
		os.Exit(1)
	}
}
