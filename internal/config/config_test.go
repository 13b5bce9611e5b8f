package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: console-dev
gateway:
  rest_url: https://gateway.staging.amadeus.internal
  ws_url: wss://gateway.staging.amadeus.internal
  auth_token: tok-123
feeds:
  retry_delay: 2s
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "console-dev" {
		t.Errorf("Instance.ID = %q, want console-dev", cfg.Instance.ID)
	}
	if cfg.Gateway.RestURL != "https://gateway.staging.amadeus.internal" {
		t.Errorf("Gateway.RestURL = %q", cfg.Gateway.RestURL)
	}
	if cfg.Feeds.RetryDelay != 2*time.Second {
		t.Errorf("Feeds.RetryDelay = %v, want 2s", cfg.Feeds.RetryDelay)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_GATEWAY_TOKEN", "secret123")

	yaml := `
instance:
  id: console-dev
gateway:
  auth_token: ${TEST_GATEWAY_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Gateway.AuthToken != "secret123" {
		t.Errorf("Gateway.AuthToken = %q, want secret123", cfg.Gateway.AuthToken)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: console-dev
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Gateway.Timeout != DefaultGatewayTimeout {
		t.Errorf("Gateway.Timeout = %v, want default", cfg.Gateway.Timeout)
	}
	if cfg.Feeds.RetryAttempts == nil || *cfg.Feeds.RetryAttempts != DefaultRetryAttempts {
		t.Errorf("Feeds.RetryAttempts = %v, want default %d", cfg.Feeds.RetryAttempts, DefaultRetryAttempts)
	}
	if cfg.Feeds.RetryDelay != DefaultRetryDelay {
		t.Errorf("Feeds.RetryDelay = %v, want default", cfg.Feeds.RetryDelay)
	}
	if cfg.Feeds.BufferSize != DefaultBufferSize {
		t.Errorf("Feeds.BufferSize = %d, want default", cfg.Feeds.BufferSize)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default", cfg.Health.Port)
	}
}

func TestRetryAttemptsZeroSurvivesDefaults(t *testing.T) {
	// An explicit zero budget must not be overwritten by the default.
	yaml := `
instance:
  id: console-dev
feeds:
  retry_attempts: 0
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Feeds.RetryAttempts == nil || *cfg.Feeds.RetryAttempts != 0 {
		t.Errorf("Feeds.RetryAttempts = %v, want explicit 0", cfg.Feeds.RetryAttempts)
	}
}

func TestLoadAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid",
			yaml: `
instance:
  id: console-dev
`,
			wantErr: false,
		},
		{
			name:    "missing instance id",
			yaml:    `gateway: {}`,
			wantErr: true,
		},
		{
			name: "bad ws url",
			yaml: `
instance:
  id: console-dev
gateway:
  ws_url: https://not-a-ws-url
`,
			wantErr: true,
		},
		{
			name: "retry attempts below -1",
			yaml: `
instance:
  id: console-dev
feeds:
  retry_attempts: -2
`,
			wantErr: true,
		},
		{
			name: "archive enabled without db",
			yaml: `
instance:
  id: console-dev
archive:
  enabled: true
`,
			wantErr: true,
		},
		{
			name: "archive enabled with db",
			yaml: `
instance:
  id: console-dev
archive:
  enabled: true
  db:
    host: localhost
    name: amadeus_archive
    user: console
    password: pass
`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.yaml)
			_, err := LoadAndValidate(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadAndValidate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
