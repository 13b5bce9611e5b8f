package api

import (
	"context"
	"fmt"
	"net/url"
)

// ListInstruments fetches tradeable instruments, optionally filtered by
// status ("active", "halted", "delisted").
func (c *Client) ListInstruments(ctx context.Context, status string) ([]Instrument, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var resp InstrumentsResponse
	if err := c.get(ctx, "/api/instruments", query, &resp); err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	return resp.Instruments, nil
}
