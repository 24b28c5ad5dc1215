package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSchedule            = "0 9 * * *"
	DefaultTimezone            = "UTC"
	DefaultHTTPTimeout         = 10 * time.Second
	DefaultMaxEntriesPerBucket = 10
	DefaultServerAddr          = ":8080"
)

var DefaultOwnerTags = []string{"created_by", "createdby", "created-by", "owner", "user-email"}

type Config struct {
	SubscriptionID      string        `mapstructure:"subscription_id"`
	WebhookURL          string        `mapstructure:"webhook_url"`
	MockMode            bool          `mapstructure:"mock_mode"`
	Verbose             bool          `mapstructure:"verbose"`
	Schedule            string        `mapstructure:"schedule"`
	Timezone            string        `mapstructure:"timezone"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`
	MaxEntriesPerBucket int           `mapstructure:"max_entries_per_bucket"`
	Tags                Tags          `mapstructure:"tags"`
	Azure               Azure         `mapstructure:"azure"`
	Server              Server        `mapstructure:"server"`
}

// Tags names the resource tags environments are read from.
type Tags struct {
	Expiration    string   `mapstructure:"expiration"`
	Owner         []string `mapstructure:"owner"`
	Name          string   `mapstructure:"name"`
	Project       string   `mapstructure:"project"`
	CaseSensitive bool     `mapstructure:"case_sensitive"`
}

type Azure struct {
	Credential  string `mapstructure:"credential"`
	TenantID    string `mapstructure:"tenant_id"`
	ProfileFile string `mapstructure:"profile_file"`
	Profile     string `mapstructure:"profile"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"subscription_id":        "SUBSCRIPTION_ID",
	"webhook_url":            "WEBHOOK_URL",
	"mock_mode":              "MOCK_MODE",
	"verbose":                "VERBOSE",
	"schedule":               "SCHEDULE",
	"timezone":               "TIMEZONE",
	"http_timeout":           "HTTP_TIMEOUT",
	"max_entries_per_bucket": "MAX_ENTRIES_PER_BUCKET",
	"tags.expiration":        "EXPIRATION_TAG",
	"tags.owner":             "OWNER_TAGS",
	"tags.name":              "NAME_TAG",
	"tags.project":           "PROJECT_TAG",
	"tags.case_sensitive":    "TAGS_CASE_SENSITIVE",
	"azure.credential":       "AZURE_CREDENTIAL",
	"azure.tenant_id":        "AZURE_TENANT_ID",
	"azure.profile_file":     "AZURE_PROFILE_FILE",
	"azure.profile":          "AZURE_PROFILE",
	"server.addr":            "SERVER_ADDR",
}

// NewViper returns a viper instance carrying defaults and environment bindings.
// Callers may bind command-line flags on top before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("mock_mode", false)
	v.SetDefault("verbose", false)
	v.SetDefault("schedule", DefaultSchedule)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("max_entries_per_bucket", DefaultMaxEntriesPerBucket)
	v.SetDefault("tags.expiration", "expirationDate")
	v.SetDefault("tags.owner", DefaultOwnerTags)
	v.SetDefault("tags.name", "environmentName")
	v.SetDefault("tags.project", "projectName")
	v.SetDefault("tags.case_sensitive", true)
	v.SetDefault("azure.credential", "default")
	v.SetDefault("server.addr", DefaultServerAddr)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional config file at path and decodes everything into a Config.
// The result is not validated.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Tags.Owner = splitList(cfg.Tags.Owner)
	return &cfg, nil
}

// splitList flattens comma separated entries, which is how OWNER_TAGS arrives from the environment.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error

	if c.SubscriptionID == "" {
		errs = append(errs, errors.New("subscription_id is required (SUBSCRIPTION_ID)"))
	}
	if !c.MockMode {
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("webhook_url is required unless mock mode is enabled (WEBHOOK_URL)"))
		} else if err := validateURL(c.WebhookURL); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.MaxEntriesPerBucket < 0 {
		errs = append(errs, fmt.Errorf("max_entries_per_bucket must not be negative, got %d", c.MaxEntriesPerBucket))
	}
	if c.Tags.Expiration == "" {
		errs = append(errs, errors.New("tags.expiration must not be empty"))
	}
	switch c.Azure.Credential {
	case "default", "cli":
	default:
		errs = append(errs, fmt.Errorf("unsupported azure.credential %q (want default or cli)", c.Azure.Credential))
	}

	return errors.Join(errs...)
}

// Location returns the zone used for calendar-day comparisons.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook_url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook_url has no host")
	}
	return nil
}
