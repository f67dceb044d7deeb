// Command prepare normalizes and joins the health and income sources and
// writes the cleaned flat file.
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
		health  = flag.String("health", "", "override the life-expectancy CSV path")
		income  = flag.String("income", "", "override the income CSV path")
		out     = flag.String("out", "", "override the cleaned CSV output path")
	)
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("load env: %v", err)
	}
	cfg, err := config.Load(config.ResolvePath(*cfgPath))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *health != "" {
		cfg.Health.Path = *health
	}
	if *income != "" {
		cfg.Income.Path = *income
	}
	if *out != "" {
		cfg.Output.FlatFile = *out
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Prepare(ctx, cfg, logger)
	var missing *pipeline.MissingInputError
	if errors.As(err, &missing) {
		fmt.Println(missing.Error())
		os.Exit(1)
	}
	if err != nil {
		logger.LogError("prepare", err)
		os.Exit(1)
	}

	pipeline.PrintPrepare(os.Stdout, res)
}
