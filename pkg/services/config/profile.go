package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const DefaultProfile = "default"

// DefaultProfileFile is $HOME/.azure/config.
func DefaultProfileFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".azure", "config"), nil
}

// LoadAzureProfile reads a named section with `subscription` and `tenant` keys.
func LoadAzureProfile(path, profile string) (domain.AzureProfile, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return domain.AzureProfile{}, fmt.Errorf("unable to load Azure profile file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return domain.AzureProfile{}, fmt.Errorf("profile %s not found in %s: %w", profile, path, err)
	}

	p := domain.AzureProfile{
		Name:           profile,
		SubscriptionID: section.Key("subscription").String(),
		TenantID:       section.Key("tenant").String(),
	}
	if p.SubscriptionID == "" {
		return domain.AzureProfile{}, fmt.Errorf("subscription not found in profile %s", profile)
	}
	return p, nil
}

// ApplyProfile fills SubscriptionID (and TenantID, if unset) from the configured Azure profile when it is not set directly.
func (c *Config) ApplyProfile() error {
	if c.SubscriptionID != "" || c.Azure.Profile == "" {
		return nil
	}

	path := c.Azure.ProfileFile
	if path == "" {
		var err error
		if path, err = DefaultProfileFile(); err != nil {
			return err
		}
	}

	p, err := LoadAzureProfile(path, c.Azure.Profile)
	if err != nil {
		return err
	}
	c.SubscriptionID = p.SubscriptionID
	if c.Azure.TenantID == "" {
		c.Azure.TenantID = p.TenantID
	}
	return nil
}
