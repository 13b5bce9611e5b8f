// Package api implements the HTTP client for the Amadeus gateway REST
// API: snapshot reads (nodes, orders, instruments, portfolio, risk,
// backtests, keys) and mutations (order placement/cancel, risk limit
// management, backtest control, credential storage). GETs retry with
// exponential backoff on retryable status codes; mutations are sent once.
package api
