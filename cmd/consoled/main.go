// Command consoled is the Amadeus console daemon. It maintains the
// realtime feed channels against the gateway, tracks the latest snapshot
// per feed, primes snapshots over REST at startup, optionally archives
// raw frames to Postgres, and serves a health endpoint reporting
// per-feed connection state.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amadeus-trading/amadeus-console/internal/api"
	"github.com/amadeus-trading/amadeus-console/internal/archive"
	"github.com/amadeus-trading/amadeus-console/internal/cache"
	"github.com/amadeus-trading/amadeus-console/internal/config"
	"github.com/amadeus-trading/amadeus-console/internal/feed"
	"github.com/amadeus-trading/amadeus-console/internal/realtime"
	"github.com/amadeus-trading/amadeus-console/internal/state"
	"github.com/amadeus-trading/amadeus-console/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/consoled.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging; the level is re-applied from config below.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting consoled",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		logger.Error("bad log level", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"gateway", cfg.Gateway.RestURL,
		"log_level", cfg.LogLevel,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the snapshot cache
	var snapCache *cache.Store
	if cfg.Cache.Enabled {
		snapCache, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			logger.Error("failed to open snapshot cache", "error", err, "path", cfg.Cache.Path)
			os.Exit(1)
		}
		defer snapCache.Close()
		logger.Info("snapshot cache open", "path", cfg.Cache.Path)
	}

	// Create gateway API client
	apiOpts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.Gateway.Timeout),
		api.WithRetries(cfg.Gateway.MaxRetries, time.Second),
	}
	if cfg.Gateway.RateLimit > 0 {
		apiOpts = append(apiOpts, api.WithRateLimit(cfg.Gateway.RateLimit, cfg.Gateway.RateBurst))
	}
	apiClient := api.NewClient(cfg.Gateway.RestURL, cfg.Gateway.AuthToken, apiOpts...)

	// Create the realtime channel manager
	dialerOpts := []realtime.DialerOption{}
	if cfg.Gateway.AuthToken != "" {
		dialerOpts = append(dialerOpts, realtime.WithAuthToken(cfg.Gateway.AuthToken))
	}
	dialer, err := realtime.NewWebSocketDialer(cfg.Gateway.WSURL, dialerOpts...)
	if err != nil {
		logger.Error("failed to create dialer", "error", err, "ws_url", cfg.Gateway.WSURL)
		os.Exit(1)
	}

	manager := realtime.NewManager(dialer,
		realtime.WithLogger(logger),
		realtime.WithBufferSize(cfg.Feeds.BufferSize),
	)

	// Start the standing feeds
	retryPolicy := func(d realtime.Descriptor) realtime.Descriptor {
		d.RetryAttempts = *cfg.Feeds.RetryAttempts
		d.RetryDelay = cfg.Feeds.RetryDelay
		return d
	}

	channels := make(map[string]*realtime.Channel)
	var stores []state.StatusReporter

	nodesStore, nodesCh, stopNodes, err := startFeed[feed.NodesMessage](
		ctx, manager, retryPolicy(feed.NodesDescriptor()), snapCache, logger)
	if err != nil {
		logger.Error("failed to start nodes feed", "error", err)
		os.Exit(1)
	}
	defer stopNodes()
	channels[feed.NameNodes] = nodesCh
	stores = append(stores, nodesStore)

	ordersStore, ordersCh, stopOrders, err := startFeed[feed.OrdersMessage](
		ctx, manager, retryPolicy(feed.OrdersDescriptor()), snapCache, logger)
	if err != nil {
		logger.Error("failed to start orders feed", "error", err)
		os.Exit(1)
	}
	defer stopOrders()
	channels[feed.NameOrders] = ordersCh
	stores = append(stores, ordersStore)

	instrumentsStore, instrumentsCh, stopInstruments, err := startFeed[feed.InstrumentsMessage](
		ctx, manager, retryPolicy(feed.InstrumentsDescriptor()), snapCache, logger)
	if err != nil {
		logger.Error("failed to start instruments feed", "error", err)
		os.Exit(1)
	}
	defer stopInstruments()
	channels[feed.NameInstruments] = instrumentsCh
	stores = append(stores, instrumentsStore)

	portfolioStore, portfolioCh, stopPortfolio, err := startFeed[feed.PortfolioMessage](
		ctx, manager, retryPolicy(feed.PortfolioDescriptor()), snapCache, logger)
	if err != nil {
		logger.Error("failed to start portfolio feed", "error", err)
		os.Exit(1)
	}
	defer stopPortfolio()
	channels[feed.NamePortfolio] = portfolioCh
	stores = append(stores, portfolioStore)

	alertsStore, alertsCh, stopAlerts, err := startFeed[feed.RiskAlertsMessage](
		ctx, manager, retryPolicy(feed.RiskAlertsDescriptor()), snapCache, logger)
	if err != nil {
		logger.Error("failed to start risk alerts feed", "error", err)
		os.Exit(1)
	}
	defer stopAlerts()
	channels[feed.NameRiskAlerts] = alertsCh
	stores = append(stores, alertsStore)

	// Prime the nodes snapshot over REST so the console renders before
	// the first feed frame lands.
	primeCtx, primeCancel := context.WithTimeout(ctx, cfg.Gateway.Timeout)
	if nodes, err := apiClient.ListNodes(primeCtx); err != nil {
		logger.Warn("failed to prime nodes snapshot", "error", err)
	} else {
		nodesStore.Prime(toNodesMessage(nodes))
		logger.Info("nodes snapshot primed", "count", len(nodes))
	}
	primeCancel()

	// Start the feed archive
	var archiveWriter *archive.Writer
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.DB.Host,
			"database", cfg.Archive.DB.Name,
		)

		pool, err := archive.Connect(ctx, cfg.Archive.DB)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		archiveWriter = archive.NewWriter(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, pool, logger)
		if err := archiveWriter.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}

		for name, ch := range channels {
			sub := ch.SubscribeMessages()
			defer sub.Cancel()
			go archiveTap(name, sub, archiveWriter)
		}
	}

	// Start health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, channels, stores, archiveWriter),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("consoled running",
		"instance_id", cfg.Instance.ID,
		"feeds", len(channels),
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	if archiveWriter != nil {
		archiveWriter.Stop(shutdownCtx)
	}

	logger.Info("consoled stopped")
}

// startFeed wires one feed end to end: channel, typed stream, state
// subscription, and snapshot store. The returned stop function releases
// the channel subscriptions; the channel tears down its transport once
// the last subscriber is gone.
func startFeed[T any](
	ctx context.Context,
	manager *realtime.Manager,
	desc realtime.Descriptor,
	snapCache *cache.Store,
	logger *slog.Logger,
) (*state.Store[T], *realtime.Channel, func(), error) {
	ch, err := manager.Channel(desc)
	if err != nil {
		return nil, nil, nil, err
	}

	storeOpts := []state.Option[T]{state.WithLogger[T](logger)}
	if snapCache != nil {
		storeOpts = append(storeOpts, state.WithCache[T](snapCache))
	}
	store := state.New[T](desc.Name, storeOpts...)

	if err := store.LoadCached(ctx); err != nil {
		logger.Warn("failed to load cached snapshot", "feed", desc.Name, "error", err)
	}

	stream := feed.NewStream[T](ch, logger)
	states := ch.SubscribeStates()
	go store.Run(ctx, stream.C(), states.C())

	stop := func() {
		stream.Cancel()
		states.Cancel()
	}
	return store, ch, stop, nil
}

// archiveTap forwards a channel's raw frames to the archive writer.
func archiveTap(name string, sub *realtime.MessageSub, w *archive.Writer) {
	for payload := range sub.C() {
		w.Enqueue(archive.Record{
			Feed:       name,
			Payload:    payload,
			ReceivedAt: time.Now(),
		})
	}
}

func toNodesMessage(nodes []api.Node) feed.NodesMessage {
	msg := feed.NodesMessage{Nodes: make([]feed.Node, len(nodes))}
	for i, n := range nodes {
		msg.Nodes[i] = feed.Node{
			NodeID:    n.NodeID,
			Name:      n.Name,
			Region:    n.Region,
			Status:    n.Status,
			Strategy:  n.Strategy,
			UptimeSec: n.UptimeSec,
			UpdatedAt: n.UpdatedAt,
		}
	}
	return msg
}

// createHealthHandler reports overall health plus per-feed connection
// state. The daemon is degraded while any feed is not connected and
// unhealthy when every feed is disconnected.
func createHealthHandler(path string, channels map[string]*realtime.Channel, stores []state.StatusReporter, w *archive.Writer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(rw http.ResponseWriter, r *http.Request) {
		health := struct {
			Status  string            `json:"status"`
			Feeds   map[string]string `json:"feeds"`
			Archive any               `json:"archive,omitempty"`
		}{
			Status: "healthy",
			Feeds:  make(map[string]string),
		}

		connected := 0
		for name, ch := range channels {
			st := ch.State()
			health.Feeds[name] = string(st)
			if st == realtime.StateConnected {
				connected++
			}
		}
		if connected < len(channels) {
			health.Status = "degraded"
		}
		if connected == 0 {
			health.Status = "unhealthy"
		}

		if w != nil {
			health.Archive = w.Stats()
		}

		rw.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			rw.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(rw).Encode(health)
	})

	mux.HandleFunc("/debug/feeds", func(rw http.ResponseWriter, r *http.Request) {
		statuses := make([]state.Status, 0, len(stores))
		for _, s := range stores {
			statuses = append(statuses, s.Status())
		}

		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(map[string]any{
			"count": len(statuses),
			"feeds": statuses,
		})
	})

	return mux
}
