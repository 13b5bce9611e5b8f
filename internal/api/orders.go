package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ListOrders fetches a page of orders.
func (c *Client) ListOrders(ctx context.Context, opts ListOrdersOptions) (*OrdersResponse, error) {
	query := url.Values{}

	if opts.NodeID != "" {
		query.Set("node_id", opts.NodeID)
	}
	if opts.Instrument != "" {
		query.Set("instrument", opts.Instrument)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var resp OrdersResponse
	if err := c.get(ctx, "/api/orders", query, &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &resp, nil
}

// ListAllOrders fetches all orders matching the options by paginating
// through results.
func (c *Client) ListAllOrders(ctx context.Context, opts ListOrdersOptions) ([]Order, error) {
	var all []Order
	opts.Limit = 1000 // Max page size

	for {
		resp, err := c.ListOrders(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Orders...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return all, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp SingleOrderResponse
	if err := c.get(ctx, "/api/orders/"+orderID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &resp.Order, nil
}

// PlaceOrder submits a new order. A client order id is generated when
// the request leaves it empty, so resubmissions are distinguishable on
// the gateway side.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	var resp SingleOrderResponse
	if err := c.post(ctx, "/api/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	c.logger.Debug("order placed",
		"order_id", resp.Order.OrderID,
		"client_order_id", req.ClientOrderID,
		"instrument", req.Instrument,
	)
	return &resp.Order, nil
}

// CancelOrder cancels an open order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.del(ctx, "/api/orders/"+orderID); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}
