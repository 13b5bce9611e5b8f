package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetBalances fetches all asset balances.
func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	var resp BalancesResponse
	if err := c.get(ctx, "/api/portfolio/balances", nil, &resp); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	return resp.Balances, nil
}

// GetPositions fetches all open positions.
func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	var resp PositionsResponse
	if err := c.get(ctx, "/api/portfolio/positions", nil, &resp); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	return resp.Positions, nil
}

// ListMovements fetches a page of balance movements.
func (c *Client) ListMovements(ctx context.Context, limit int, cursor string) (*MovementsResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var resp MovementsResponse
	if err := c.get(ctx, "/api/portfolio/movements", query, &resp); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return &resp, nil
}
