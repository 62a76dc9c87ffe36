// Command etl runs one incremental load across every enabled source and
// prints the run report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/sources"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		startStr   = flag.String("start", "", "backfill start date (YYYY-MM-DD); requires -end")
		endStr     = flag.String("end", "", "backfill end date (YYYY-MM-DD)")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	srcs := sources.Build(cfg)
	if len(srcs) == 0 {
		log.Fatal("no sources enabled; set connector credentials in config or environment")
	}

	store, err := warehouse.Open(cfg.Warehouse.Path)
	if err != nil {
		log.Fatalf("Failed to open warehouse at %s: %v", cfg.Warehouse.Path, err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := etl.NewRunner(store, srcs, cfg.ETL.BackfillDays)

	var report etl.Report
	switch {
	case *startStr != "" && *endStr != "":
		window, err := parseWindow(*startStr, *endStr)
		if err != nil {
			log.Fatalf("Invalid backfill range: %v", err)
		}
		report = runner.RunWindow(ctx, window, cfg.ETL.BatchDays)
	case *startStr != "" || *endStr != "":
		log.Fatal("backfill needs both -start and -end")
	default:
		report = runner.Run(ctx)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	fmt.Println(string(out))

	if n := report.Failed(); n > 0 {
		log.Printf("%d source(s) failed", n)
		os.Exit(1)
	}
}

func parseWindow(startStr, endStr string) (etl.Window, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return etl.Window{}, fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return etl.Window{}, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return etl.Window{}, fmt.Errorf("end %s is before start %s", endStr, startStr)
	}
	// make the end date inclusive
	return etl.Window{Start: start, End: end.AddDate(0, 0, 1)}, nil
}
