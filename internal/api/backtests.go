package api

import (
	"context"
	"fmt"
	"net/url"
)

// ListBacktests fetches backtest runs, optionally filtered by status.
func (c *Client) ListBacktests(ctx context.Context, status string) ([]BacktestRun, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var resp BacktestsResponse
	if err := c.get(ctx, "/api/backtests", query, &resp); err != nil {
		return nil, fmt.Errorf("list backtests: %w", err)
	}
	return resp.Runs, nil
}

// GetBacktest fetches a single backtest run.
func (c *Client) GetBacktest(ctx context.Context, runID string) (*BacktestRun, error) {
	var resp SingleBacktestResponse
	if err := c.get(ctx, "/api/backtests/"+url.PathEscape(runID), nil, &resp); err != nil {
		return nil, fmt.Errorf("get backtest %s: %w", runID, err)
	}
	return &resp.Run, nil
}

// StartBacktest queues a new backtest run.
func (c *Client) StartBacktest(ctx context.Context, req StartBacktestRequest) (*BacktestRun, error) {
	var resp SingleBacktestResponse
	if err := c.post(ctx, "/api/backtests", req, &resp); err != nil {
		return nil, fmt.Errorf("start backtest: %w", err)
	}
	return &resp.Run, nil
}

// StopBacktest cancels a queued or running backtest.
func (c *Client) StopBacktest(ctx context.Context, runID string) error {
	if err := c.post(ctx, "/api/backtests/"+url.PathEscape(runID)+"/stop", nil, nil); err != nil {
		return fmt.Errorf("stop backtest %s: %w", runID, err)
	}
	return nil
}
