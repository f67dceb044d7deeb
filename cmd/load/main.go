// Command load reads the cleaned flat file into the database and prints the
// per-quartile verification summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/EmpoweredVote/county-health-etl/internal/config"
	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/pipeline"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "path to pipeline YAML (default $PIPELINE_CONFIG or pipeline.yaml)")
		dsn     = flag.String("db", "", "override the database DSN")
		table   = flag.String("table", "", "override the destination table")
	)
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("load env: %v", err)
	}
	cfg, err := config.Load(config.ResolvePath(*cfgPath))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *table != "" {
		cfg.Database.Table = *table
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Load(ctx, cfg, logger)
	var missing *pipeline.MissingInputError
	if errors.As(err, &missing) {
		fmt.Println(missing.Error())
		os.Exit(1)
	}
	if err != nil {
		logger.LogError("load", err)
		os.Exit(1)
	}

	pipeline.PrintLoad(os.Stdout, res)
}
