package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListRiskLimits fetches all configured risk limits.
func (c *Client) ListRiskLimits(ctx context.Context) ([]RiskLimit, error) {
	var resp RiskLimitsResponse
	if err := c.get(ctx, "/api/risk/limits", nil, &resp); err != nil {
		return nil, fmt.Errorf("list risk limits: %w", err)
	}
	return resp.Limits, nil
}

// CreateRiskLimit creates a new risk limit.
func (c *Client) CreateRiskLimit(ctx context.Context, req RiskLimitRequest) (*RiskLimit, error) {
	var resp SingleRiskLimitResponse
	if err := c.post(ctx, "/api/risk/limits", req, &resp); err != nil {
		return nil, fmt.Errorf("create risk limit: %w", err)
	}
	return &resp.Limit, nil
}

// UpdateRiskLimit replaces an existing risk limit's configuration.
func (c *Client) UpdateRiskLimit(ctx context.Context, limitID string, req RiskLimitRequest) (*RiskLimit, error) {
	var resp SingleRiskLimitResponse
	if err := c.put(ctx, "/api/risk/limits/"+limitID, req, &resp); err != nil {
		return nil, fmt.Errorf("update risk limit %s: %w", limitID, err)
	}
	return &resp.Limit, nil
}

// DeleteRiskLimit removes a risk limit.
func (c *Client) DeleteRiskLimit(ctx context.Context, limitID string) error {
	if err := c.del(ctx, "/api/risk/limits/"+limitID); err != nil {
		return fmt.Errorf("delete risk limit %s: %w", limitID, err)
	}
	return nil
}

// ListRiskAlerts fetches a page of triggered alerts, newest first.
func (c *Client) ListRiskAlerts(ctx context.Context, limit int, cursor string) (*RiskAlertsResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var resp RiskAlertsResponse
	if err := c.get(ctx, "/api/risk/alerts", query, &resp); err != nil {
		return nil, fmt.Errorf("list risk alerts: %w", err)
	}
	return &resp, nil
}
