// Command server exposes the dashboard API over the warehouse and an
// on-demand load trigger.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/commerce-pulse/internal/api"
	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/etl"
	"github.com/ignite/commerce-pulse/internal/sources"
	"github.com/ignite/commerce-pulse/internal/warehouse"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	store, err := warehouse.Open(cfg.Warehouse.Path)
	if err != nil {
		log.Fatalf("Failed to open warehouse at %s: %v", cfg.Warehouse.Path, err)
	}
	defer store.Close()

	var runner api.LoadRunner
	if srcs := sources.Build(cfg); len(srcs) > 0 {
		runner = etl.NewRunner(store, srcs, cfg.ETL.BackfillDays)
	} else {
		log.Println("[startup] no connectors enabled; /api/etl/run will return 503")
	}

	cache := api.NewCache(cfg.Cache)
	if cache != nil {
		log.Printf("[startup] rollup cache enabled at %s", cfg.Cache.Addr)
	}

	server := api.NewServer(cfg.Server, store, runner, cache, cfg.Thresholds)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("[startup] serving on http://%s", addr)
		if err := server.ListenAndServe(addr); err != nil {
			log.Printf("[server] stopped: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[shutdown] draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[shutdown] forced: %v", err)
	}
}
