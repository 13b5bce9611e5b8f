package api

import (
	"context"
	"fmt"
)

// ListAPIKeys fetches stored credential metadata. Secrets are never
// returned by the gateway.
func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var resp APIKeysResponse
	if err := c.get(ctx, "/api/keys", nil, &resp); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return resp.Keys, nil
}

// CreateAPIKey stores a new exchange credential. The secret must already
// be encrypted (see the secret package); this client refuses requests
// carrying an empty ciphertext so plaintext secrets cannot slip through.
func (c *Client) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*APIKey, error) {
	if req.SecretCiphertext == "" {
		return nil, fmt.Errorf("create api key: secret ciphertext is required")
	}

	var resp SingleAPIKeyResponse
	if err := c.post(ctx, "/api/keys", req, &resp); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &resp.Key, nil
}

// DeleteAPIKey removes a stored credential.
func (c *Client) DeleteAPIKey(ctx context.Context, keyID string) error {
	if err := c.del(ctx, "/api/keys/"+keyID); err != nil {
		return fmt.Errorf("delete api key %s: %w", keyID, err)
	}
	return nil
}
