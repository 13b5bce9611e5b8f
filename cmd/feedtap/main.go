// feedtap connects to one gateway feed and streams its frames and
// connection state transitions to the console.
//
// Usage:
//
//	go run ./cmd/feedtap --config configs/consoled.local.yaml --feed orders-stream
//	go run ./cmd/feedtap --config configs/consoled.local.yaml --path /ws/backtests/run-42/progress
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amadeus-trading/amadeus-console/internal/config"
	"github.com/amadeus-trading/amadeus-console/internal/feed"
	"github.com/amadeus-trading/amadeus-console/internal/realtime"
)

func main() {
	configPath := flag.String("config", "configs/consoled.example.yaml", "path to config file")
	feedName := flag.String("feed", "", "standing feed to tap (nodes-stream, orders-stream, instruments-stream, portfolio-stream, risk-alerts-stream)")
	path := flag.String("path", "", "raw WebSocket path to tap instead of a standing feed")
	retries := flag.Int("retries", realtime.RetryUnbounded, "reconnect budget (-1 = forever)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	desc, err := resolveDescriptor(*feedName, *path)
	if err != nil {
		logger.Error("bad feed selection", "error", err)
		flag.Usage()
		os.Exit(2)
	}
	desc.RetryAttempts = *retries
	desc.RetryDelay = cfg.Feeds.RetryDelay

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	dialerOpts := []realtime.DialerOption{}
	if cfg.Gateway.AuthToken != "" {
		dialerOpts = append(dialerOpts, realtime.WithAuthToken(cfg.Gateway.AuthToken))
	}
	dialer, err := realtime.NewWebSocketDialer(cfg.Gateway.WSURL, dialerOpts...)
	if err != nil {
		logger.Error("failed to create dialer", "error", err)
		os.Exit(1)
	}

	manager := realtime.NewManager(dialer, realtime.WithLogger(logger))
	ch, err := manager.Channel(desc)
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}

	logger.Info("tapping feed",
		"feed", desc.Name,
		"path", desc.Path,
		"ws_url", cfg.Gateway.WSURL,
	)

	states := ch.SubscribeStates()
	defer states.Cancel()
	msgs := ch.SubscribeMessages()
	defer msgs.Cancel()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("done", "frames", frames)
			return

		case <-ch.Done():
			logger.Error("reconnect budget exhausted", "frames", frames)
			os.Exit(1)

		case st := <-states.C():
			fmt.Printf("%s  [state] %s\n", time.Now().Format(time.RFC3339), st)

		case payload := <-msgs.C():
			frames++
			fmt.Printf("%s  %s\n", time.Now().Format(time.RFC3339), payload)
		}
	}
}

func resolveDescriptor(feedName, path string) (realtime.Descriptor, error) {
	if (feedName == "") == (path == "") {
		return realtime.Descriptor{}, fmt.Errorf("exactly one of --feed or --path is required")
	}

	if path != "" {
		return realtime.NewDescriptor("tap", path), nil
	}

	switch feedName {
	case feed.NameNodes:
		return feed.NodesDescriptor(), nil
	case feed.NameOrders:
		return feed.OrdersDescriptor(), nil
	case feed.NameInstruments:
		return feed.InstrumentsDescriptor(), nil
	case feed.NamePortfolio:
		return feed.PortfolioDescriptor(), nil
	case feed.NameRiskAlerts:
		return feed.RiskAlertsDescriptor(), nil
	default:
		return realtime.Descriptor{}, fmt.Errorf("unknown feed %q", feedName)
	}
}
