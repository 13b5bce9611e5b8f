package api

// Node is a trading node as reported by GET /api/nodes.
type Node struct {
	NodeID    string `json:"node_id"`
	Name      string `json:"name"`
	Region    string `json:"region"`
	Status    string `json:"status"`
	Strategy  string `json:"strategy"`
	UptimeSec int64  `json:"uptime_sec"`
	UpdatedAt int64  `json:"updated_at"`
}

// NodesResponse from GET /api/nodes.
type NodesResponse struct {
	Nodes []Node `json:"nodes"`
}

// Order is an order as reported by the gateway.
type Order struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	NodeID        string `json:"node_id"`
	Instrument    string `json:"instrument"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	Filled        string `json:"filled"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// OrdersResponse from GET /api/orders.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
	Cursor string  `json:"cursor"`
}

// SingleOrderResponse from GET /api/orders/{id} and POST /api/orders.
type SingleOrderResponse struct {
	Order Order `json:"order"`
}

// ListOrdersOptions filters GET /api/orders.
type ListOrdersOptions struct {
	NodeID     string
	Instrument string
	Status     string
	Limit      int
	Cursor     string
}

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest struct {
	ClientOrderID string `json:"client_order_id,omitempty"`
	NodeID        string `json:"node_id"`
	Instrument    string `json:"instrument"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Price         string `json:"price,omitempty"`
	Quantity      string `json:"quantity"`
}

// Instrument is a tradeable market instrument.
type Instrument struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	Status     string `json:"status"`
	TickSize   string `json:"tick_size"`
	LotSize    string `json:"lot_size"`
}

// InstrumentsResponse from GET /api/instruments.
type InstrumentsResponse struct {
	Instruments []Instrument `json:"instruments"`
}

// Balance is one asset balance from GET /api/portfolio/balances.
type Balance struct {
	Asset     string `json:"asset"`
	Total     string `json:"total"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// BalancesResponse from GET /api/portfolio/balances.
type BalancesResponse struct {
	Balances []Balance `json:"balances"`
}

// Position is one open position from GET /api/portfolio/positions.
type Position struct {
	Instrument    string `json:"instrument"`
	Quantity      string `json:"quantity"`
	AvgPrice      string `json:"avg_price"`
	UnrealizedPnL string `json:"unrealized_pnl"`
}

// PositionsResponse from GET /api/portfolio/positions.
type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

// Movement is one balance movement from GET /api/portfolio/movements.
type Movement struct {
	MovementID string `json:"movement_id"`
	Asset      string `json:"asset"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Ts         int64  `json:"ts"`
}

// MovementsResponse from GET /api/portfolio/movements.
type MovementsResponse struct {
	Movements []Movement `json:"movements"`
	Cursor    string     `json:"cursor"`
}

// RiskLimit is a configured risk limit.
type RiskLimit struct {
	LimitID   string `json:"limit_id"`
	NodeID    string `json:"node_id,omitempty"` // empty = platform-wide
	Metric    string `json:"metric"`            // "max_position", "max_drawdown", "max_order_size"
	Threshold string `json:"threshold"`
	Action    string `json:"action"` // "alert", "halt"
	Enabled   bool   `json:"enabled"`
	UpdatedAt int64  `json:"updated_at"`
}

// RiskLimitsResponse from GET /api/risk/limits.
type RiskLimitsResponse struct {
	Limits []RiskLimit `json:"limits"`
}

// SingleRiskLimitResponse from risk limit mutations.
type SingleRiskLimitResponse struct {
	Limit RiskLimit `json:"limit"`
}

// RiskLimitRequest is the body for creating or updating a risk limit.
type RiskLimitRequest struct {
	NodeID    string `json:"node_id,omitempty"`
	Metric    string `json:"metric"`
	Threshold string `json:"threshold"`
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
}

// RiskAlert is a triggered alert from GET /api/risk/alerts.
type RiskAlert struct {
	AlertID  string `json:"alert_id"`
	LimitID  string `json:"limit_id"`
	NodeID   string `json:"node_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Ts       int64  `json:"ts"`
}

// RiskAlertsResponse from GET /api/risk/alerts.
type RiskAlertsResponse struct {
	Alerts []RiskAlert `json:"alerts"`
	Cursor string      `json:"cursor"`
}

// BacktestRun is one backtest run.
type BacktestRun struct {
	RunID     string  `json:"run_id"`
	Strategy  string  `json:"strategy"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	StartTs   int64   `json:"start_ts"`
	EndTs     int64   `json:"end_ts"`
	CreatedAt int64   `json:"created_at"`
}

// BacktestsResponse from GET /api/backtests.
type BacktestsResponse struct {
	Runs []BacktestRun `json:"runs"`
}

// SingleBacktestResponse from GET /api/backtests/{id} and POST /api/backtests.
type SingleBacktestResponse struct {
	Run BacktestRun `json:"run"`
}

// StartBacktestRequest is the body of POST /api/backtests.
type StartBacktestRequest struct {
	Strategy string         `json:"strategy"`
	StartTs  int64          `json:"start_ts"`
	EndTs    int64          `json:"end_ts"`
	Params   map[string]any `json:"params,omitempty"`
}

// APIKey is a stored exchange credential. The secret never round-trips:
// it is submitted encrypted and only the label/fingerprint come back.
type APIKey struct {
	KeyID       string `json:"key_id"`
	Label       string `json:"label"`
	Exchange    string `json:"exchange"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   int64  `json:"created_at"`
}

// APIKeysResponse from GET /api/keys.
type APIKeysResponse struct {
	Keys []APIKey `json:"keys"`
}

// SingleAPIKeyResponse from POST /api/keys.
type SingleAPIKeyResponse struct {
	Key APIKey `json:"key"`
}

// CreateAPIKeyRequest is the body of POST /api/keys. SecretCiphertext
// must be produced by the secret package before the request is built.
type CreateAPIKeyRequest struct {
	Label            string `json:"label"`
	Exchange         string `json:"exchange"`
	APIKey           string `json:"api_key"`
	SecretCiphertext string `json:"secret_ciphertext"`
}
