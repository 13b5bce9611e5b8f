package feed

// Feed names. Used for channel identification, cache keys, and logging.
const (
	NameNodes       = "nodes-stream"
	NameOrders      = "orders-stream"
	NameInstruments = "instruments-stream"
	NamePortfolio   = "portfolio-stream"
	NameRiskAlerts  = "risk-alerts-stream"
)

// Node is one trading node's status inside a nodes snapshot.
type Node struct {
	NodeID    string `json:"node_id"`
	Name      string `json:"name"`
	Region    string `json:"region"`
	Status    string `json:"status"` // "online", "degraded", "offline"
	Strategy  string `json:"strategy"`
	UptimeSec int64  `json:"uptime_sec"`
	UpdatedAt int64  `json:"updated_at"` // Unix millis
}

// NodesMessage is a full trading-node snapshot frame.
type NodesMessage struct {
	Nodes []Node `json:"nodes"`
}

// Order is one order in an order/execution delta frame.
type Order struct {
	OrderID    string `json:"order_id"`
	NodeID     string `json:"node_id"`
	Instrument string `json:"instrument"`
	Side       string `json:"side"` // "buy" or "sell"
	Type       string `json:"type"` // "limit" or "market"
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	Filled     string `json:"filled"`
	Status     string `json:"status"` // "open", "partial", "filled", "cancelled", "rejected"
	UpdatedAt  int64  `json:"updated_at"`
}

// Execution is a fill reported alongside an order delta.
type Execution struct {
	ExecutionID string `json:"execution_id"`
	OrderID     string `json:"order_id"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Ts          int64  `json:"ts"`
}

// OrdersMessage is an order/execution delta frame.
type OrdersMessage struct {
	Orders     []Order     `json:"orders,omitempty"`
	Executions []Execution `json:"executions,omitempty"`
}

// InstrumentTick is one market instrument quote.
type InstrumentTick struct {
	Symbol    string `json:"symbol"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	Last      string `json:"last"`
	Volume24h string `json:"volume_24h"`
	Ts        int64  `json:"ts"`
}

// InstrumentsMessage is a batch of instrument ticks.
type InstrumentsMessage struct {
	Ticks []InstrumentTick `json:"ticks"`
}

// Balance is one asset balance in a portfolio delta.
type Balance struct {
	Asset     string `json:"asset"`
	Total     string `json:"total"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// Position is one open position in a portfolio delta.
type Position struct {
	Instrument    string `json:"instrument"`
	Quantity      string `json:"quantity"`
	AvgPrice      string `json:"avg_price"`
	UnrealizedPnL string `json:"unrealized_pnl"`
}

// Movement is one balance movement (deposit, withdrawal, fee, transfer).
type Movement struct {
	MovementID string `json:"movement_id"`
	Asset      string `json:"asset"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Ts         int64  `json:"ts"`
}

// PortfolioMessage is a portfolio balance/position/movement delta frame.
// Any combination of the three lists may be present.
type PortfolioMessage struct {
	Balances  []Balance  `json:"balances,omitempty"`
	Positions []Position `json:"positions,omitempty"`
	Movements []Movement `json:"movements,omitempty"`
}

// RiskAlert is one triggered risk limit alert.
type RiskAlert struct {
	AlertID  string `json:"alert_id"`
	LimitID  string `json:"limit_id"`
	NodeID   string `json:"node_id"`
	Severity string `json:"severity"` // "info", "warning", "critical"
	Message  string `json:"message"`
	Ts       int64  `json:"ts"`
}

// RiskAlertsMessage is a risk alert batch frame.
type RiskAlertsMessage struct {
	Alerts []RiskAlert `json:"alerts"`
}

// BacktestProgressMessage is a backtest progress update frame.
type BacktestProgressMessage struct {
	RunID     string  `json:"run_id"`
	Status    string  `json:"status"` // "queued", "running", "completed", "failed"
	Progress  float64 `json:"progress"`
	Step      string  `json:"step"`
	Ts        int64   `json:"ts"`
}
