package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/config"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/balance"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/legtracker"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/orderbook"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/privateorder"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
	ristrettocache "github.com/tdex-network/tdex-privateswap/internal/infrastructure/cache/ristretto"
	rpcengine "github.com/tdex-network/tdex-privateswap/internal/infrastructure/engine/rpc"
	"github.com/tdex-network/tdex-privateswap/internal/infrastructure/metrics"
	webhookpubsub "github.com/tdex-network/tdex-privateswap/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/tdex-network/tdex-privateswap/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-privateswap/internal/infrastructure/storage/db/inmemory"
	grpcinterface "github.com/tdex-network/tdex-privateswap/internal/interfaces/grpc"
	httpinterface "github.com/tdex-network/tdex-privateswap/internal/interfaces/http"
	"github.com/tdex-network/tdex-privateswap/pkg/stats"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	datadir := config.GetDatadir()
	logLevel := log.Level(config.GetInt(config.LogLevelKey))
	log.SetLevel(logLevel)
	if config.GetBool(config.LogFileKey) {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(datadir, config.LogLocation, config.LogFile),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}))
	}

	engines, directEngine, err := newEngineRegistry()
	if err != nil {
		log.WithError(err).Fatal("failed to init trading engines")
	}

	var ledger domain.SwapLedger
	switch config.GetString(config.DBTypeKey) {
	case config.DBTypeInMemory:
		ledger = inmemory.NewSwapLedger()
	default:
		var dbLogger badger.Logger
		if logLevel >= log.DebugLevel {
			dbLogger = log.StandardLogger()
		}
		ledger, err = dbbadger.NewSwapLedger(
			filepath.Join(datadir, config.DbLocation), dbLogger,
		)
		if err != nil {
			log.WithError(err).Fatal("failed to open swap ledger")
		}
	}

	var quoteCache ports.QuoteCache
	closeCache := func() {}
	cacheTTL := config.GetDuration(config.OrderBookCacheTTLKey)
	if cacheTTL > 0 {
		if quoteCache, closeCache, err = ristrettocache.NewQuoteCache(); err != nil {
			log.WithError(err).Fatal("failed to init order book cache")
		}
	}

	orderBookSvc, err := orderbook.NewService(engines, orderbook.Engines{
		Direct: directEngine,
		Main:   ports.EngineMain,
		Hop:    ports.EngineHop,
	}, quoteCache, cacheTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to init order book gateway")
	}
	submitterSvc, err := submitter.NewService(engines, ledger)
	if err != nil {
		log.WithError(err).Fatal("failed to init order submitter")
	}
	balanceSvc, err := balance.NewService(engines, balance.Config{
		PollInterval:    config.GetDuration(config.PollIntervalKey),
		StageTimeout:    config.GetDuration(config.StageTimeoutKey),
		FinalLegTimeout: config.GetDuration(config.FinalLegTimeoutKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init balance observer")
	}

	webhookSvc := webhookpubsub.NewWebhookPubSubService(
		config.GetDuration(config.WebhookTimeoutKey),
	)
	for _, hook := range config.GetWebhooks() {
		if _, err := webhookSvc.AddWebhook(hook.Action, hook.Endpoint, hook.Secret); err != nil {
			log.WithError(err).Fatalf("failed to add webhook %s", hook.Endpoint)
		}
	}
	metricsSvc := metrics.NewPublisher()
	hub := httpinterface.NewHub()
	publisher := pubsub.NewService(webhookSvc, hub, metricsSvc)

	privateOrderSvc, err := privateorder.NewService(privateorder.Config{
		Ledger:               ledger,
		Engines:              engines,
		Gateway:              orderBookSvc,
		Submitter:            submitterSvc,
		Observer:             balanceSvc,
		Publisher:            publisher,
		MainEngine:           ports.EngineMain,
		HopEngine:            ports.EngineHop,
		IntermediateCurrency: config.GetString(config.IntermediateCurrencyKey),
		SlippageFactor:       config.GetDecimal(config.SlippageFactorKey),
		DexFeePercent:        config.GetDecimal(config.DexFeePercentKey),
		DefaultNetworkFee:    config.GetDecimal(config.NetworkFeeKey),
		NetworkFees:          config.GetNetworkFees(),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init private order service")
	}

	legTrackerSvc, err := legtracker.NewService(
		ledger, engines, config.GetDuration(config.LegTrackerIntervalKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init leg tracker")
	}

	handler, err := httpinterface.NewHandler(httpinterface.HandlerOpts{
		OrderBookSvc:    orderBookSvc,
		OrderSvc:        submitterSvc,
		PrivateOrderSvc: privateOrderSvc,
		WebhookSvc:      webhookSvc,
		Ledger:          ledger,
		DefaultEngine:   directEngine,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init http handler")
	}
	router := httpinterface.NewRouter(handler, hub, metricsSvc.Registry())
	httpSvc, err := httpinterface.NewService(
		fmt.Sprintf(":%d", config.GetInt(config.HTTPListeningPortKey)), router, hub,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init http interface")
	}
	grpcSvc, err := grpcinterface.NewService(grpcinterface.ServiceOpts{
		Address: fmt.Sprintf(":%d", config.GetInt(config.OperatorListeningPortKey)),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init grpc interface")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(
			ctx, time.Duration(interval)*time.Second, metricsSvc.Registry(),
			filepath.Join(datadir, config.StatsLocation, "metrics"),
		)
	}

	log.Debug("starting daemon")

	if err := legTrackerSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start leg tracker")
	}
	if err := privateOrderSvc.Resume(ctx); err != nil {
		log.WithError(err).Fatal("failed to resume private orders")
	}
	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	if err := grpcSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start grpc interface")
	}

	log.Infof("privswapd started, engines: %v", engines.Names())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	select {
	case <-sigChan:
	case <-httpSvc.Err():
	}

	log.Info("shutting down daemon")

	grpcSvc.Drain()
	httpSvc.Stop()
	if err := legTrackerSvc.Stop(); err != nil {
		log.WithError(err).Warn("failed to stop leg tracker")
	}
	privateOrderSvc.Stop()
	cancel()
	grpcSvc.Stop()
	closeCache()
	if err := ledger.Close(); err != nil {
		log.WithError(err).Warn("failed to close swap ledger")
	}

	log.Debug("exiting")
}

// newEngineRegistry returns the registry of the configured engines, along
// with the name of the one serving direct books and single leg orders.
func newEngineRegistry() (ports.EngineRegistry, string, error) {
	timeout := config.GetDuration(config.EngineRequestTimeoutKey)
	rateLimit := config.GetInt(config.EngineRateLimitKey)

	cfgs := []rpcengine.Config{
		{
			Name:     ports.EngineMain,
			URL:      config.GetString(config.MainEngineURLKey),
			User:     config.GetString(config.MainEngineUserKey),
			Password: config.GetString(config.MainEnginePasswordKey),
		},
		{
			Name:     ports.EngineHop,
			URL:      config.GetString(config.HopEngineURLKey),
			User:     config.GetString(config.HopEngineUserKey),
			Password: config.GetString(config.HopEnginePasswordKey),
		},
	}
	direct := ports.EngineMain
	if url := config.GetString(config.DirectEngineURLKey); url != "" {
		direct = ports.EngineDirect
		cfgs = append(cfgs, rpcengine.Config{
			Name:     ports.EngineDirect,
			URL:      url,
			User:     config.GetString(config.DirectEngineUserKey),
			Password: config.GetString(config.DirectEnginePasswordKey),
		})
	}

	engines := make([]ports.TradingEngine, 0, len(cfgs))
	for _, cfg := range cfgs {
		cfg.RequestTimeout = timeout
		cfg.RateLimit = rateLimit
		engine, err := rpcengine.NewTradingEngine(cfg)
		if err != nil {
			return nil, "", err
		}
		engines = append(engines, engine)
	}

	registry, err := application.NewEngineRegistry(engines...)
	if err != nil {
		return nil, "", err
	}
	return registry, direct, nil
}
