package api

import (
	"context"
	"fmt"
)

// ListNodes fetches all trading nodes.
func (c *Client) ListNodes(ctx context.Context) ([]Node, error) {
	var resp NodesResponse
	if err := c.get(ctx, "/api/nodes", nil, &resp); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return resp.Nodes, nil
}

// GetNode fetches a single node by id.
func (c *Client) GetNode(ctx context.Context, nodeID string) (*Node, error) {
	var resp struct {
		Node Node `json:"node"`
	}
	if err := c.get(ctx, "/api/nodes/"+nodeID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get node %s: %w", nodeID, err)
	}
	return &resp.Node, nil
}
