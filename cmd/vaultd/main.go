package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stablevault/config"
	"stablevault/observability/logging"
	"stablevault/rpc"
	"stablevault/storage"
	"stablevault/vault"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "vaultd.toml", "path to vaultd configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("VAULT_ENV"))
	logger := logging.Setup("vaultd", env)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("vaultd: load config: %v", err)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		log.Fatalf("vaultd: open state database: %v", err)
	}
	defer db.Close()
	state := storage.NewStateDB(db)

	assets := make([]string, 0, len(cfg.Collateral))
	feeds := make([]vault.PriceFeed, 0, len(cfg.Collateral))
	for _, asset := range cfg.Collateral {
		price, ok := new(big.Int).SetString(strings.TrimSpace(asset.FeedPrice), 10)
		if !ok || price.Sign() <= 0 {
			log.Fatalf("vaultd: invalid feed price for %s: %q", asset.Symbol, asset.FeedPrice)
		}
		feed := vault.NewManualFeed()
		feed.Set(price, time.Now())
		assets = append(assets, asset.Symbol)
		feeds = append(feeds, feed)
	}

	registry, err := vault.NewRegistry(assets, feeds)
	if err != nil {
		log.Fatalf("vaultd: build collateral registry: %v", err)
	}
	oracle := vault.NewOracleAdapter(registry, cfg.Vault.OracleMaxAge())
	engine := vault.NewEngine(registry, oracle, cfg.Vault.RiskParameters())
	engine.SetState(state)

	rpcServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           rpc.NewServer(engine),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("rpc server listening", "address", cfg.ListenAddress)
		if err := rpcServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("vaultd: rpc server: %v", err)
		}
	}()
	go func() {
		logger.Info("metrics server listening", "address", cfg.MetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("vaultd: metrics server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rpcServer.Shutdown(ctx); err != nil {
		logger.Error("rpc shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("metrics shutdown", "error", err)
	}
}
