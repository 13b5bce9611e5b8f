package feed

import (
	"net/url"

	"github.com/amadeus-trading/amadeus-console/internal/realtime"
)

// Descriptors for the console's standing feeds. All use the default
// retry policy (unbounded attempts, one-second delay); callers override
// the policy on the returned value when needed.

// NodesDescriptor describes the trading-node snapshot feed.
func NodesDescriptor() realtime.Descriptor {
	return realtime.NewDescriptor(NameNodes, "/ws/nodes")
}

// OrdersDescriptor describes the order/execution delta feed.
func OrdersDescriptor() realtime.Descriptor {
	return realtime.NewDescriptor(NameOrders, "/ws/orders")
}

// InstrumentsDescriptor describes the market instrument tick feed.
func InstrumentsDescriptor() realtime.Descriptor {
	return realtime.NewDescriptor(NameInstruments, "/ws/instruments")
}

// PortfolioDescriptor describes the portfolio balance/position/movement feed.
func PortfolioDescriptor() realtime.Descriptor {
	return realtime.NewDescriptor(NamePortfolio, "/ws/portfolio")
}

// RiskAlertsDescriptor describes the risk alert batch feed.
func RiskAlertsDescriptor() realtime.Descriptor {
	return realtime.NewDescriptor(NameRiskAlerts, "/ws/risk/alerts")
}

// BacktestProgressDescriptor describes the progress feed for one backtest
// run. The run id is percent-encoded into the path.
func BacktestProgressDescriptor(runID string) realtime.Descriptor {
	return realtime.NewDescriptor(
		"backtest-progress-"+runID,
		"/ws/backtests/"+url.PathEscape(runID)+"/progress",
	)
}
