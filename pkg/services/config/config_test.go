package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Given
	v := NewViper()

	// When
	cfg, err := Load(v, "")

	// Then
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultMaxEntriesPerBucket, cfg.MaxEntriesPerBucket)
	assert.Equal(t, "expirationDate", cfg.Tags.Expiration)
	assert.Equal(t, DefaultOwnerTags, cfg.Tags.Owner)
	assert.True(t, cfg.Tags.CaseSensitive)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, "default", cfg.Azure.Credential)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "expiry.yaml")
	content := `subscription_id: "from-file"
webhook_url: "https://hooks.example.com/file"
http_timeout: "3s"
tags:
  expiration: "expiresOn"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SUBSCRIPTION_ID", "from-env")
	t.Setenv("MOCK_MODE", "true")
	t.Setenv("OWNER_TAGS", "owner, created_by")

	// When
	cfg, err := Load(NewViper(), path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SubscriptionID)
	assert.Equal(t, "https://hooks.example.com/file", cfg.WebhookURL)
	assert.True(t, cfg.MockMode)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "expiresOn", cfg.Tags.Expiration)
	assert.Equal(t, []string{"owner", "created_by"}, cfg.Tags.Owner)
}

func TestLoad_InvalidFile_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subscription_id: a: b"), 0o644))

	_, err := Load(NewViper(), path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(NewViper(), "")
		require.NoError(t, err)
		cfg.SubscriptionID = "sub"
		cfg.WebhookURL = "https://hooks.example.com/T000/B000"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing subscription",
			mutate:  func(c *Config) { c.SubscriptionID = "" },
			wantErr: "subscription_id is required",
		},
		{
			name:    "missing webhook",
			mutate:  func(c *Config) { c.WebhookURL = "" },
			wantErr: "webhook_url is required",
		},
		{
			name: "mock mode does not need webhook",
			mutate: func(c *Config) {
				c.WebhookURL = ""
				c.MockMode = true
			},
		},
		{
			name:    "relative webhook",
			mutate:  func(c *Config) { c.WebhookURL = "/hooks" },
			wantErr: "webhook_url must be http or https",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr: "invalid timezone",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = 0 },
			wantErr: "http_timeout must be positive",
		},
		{
			name:    "unknown credential",
			mutate:  func(c *Config) { c.Azure.Credential = "msi" },
			wantErr: "unsupported azure.credential",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	err = cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription_id is required")
	assert.Contains(t, err.Error(), "webhook_url is required")
}
