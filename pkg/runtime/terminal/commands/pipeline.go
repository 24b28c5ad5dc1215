package commands

import (
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/config"
	"github.com/de-tools/env-expiry/pkg/services/inventory"
	"github.com/de-tools/env-expiry/pkg/services/inventory/azure"
	"github.com/de-tools/env-expiry/pkg/services/inventory/fixture"
	"github.com/de-tools/env-expiry/pkg/services/notify"
	mocksender "github.com/de-tools/env-expiry/pkg/services/notify/mock"
	"github.com/de-tools/env-expiry/pkg/services/notify/webhook"
	"github.com/de-tools/env-expiry/pkg/services/workflow"
)

// demoSubscription is used by the fixture inventory when none is configured.
const demoSubscription = "00000000-0000-0000-0000-000000000000"

func newEnumerator(cfg *config.Config, demo bool) (inventory.Enumerator, error) {
	if demo {
		return &fixture.Enumerator{
			SubscriptionID: cfg.SubscriptionID,
			ExpirationTag:  cfg.Tags.Expiration,
		}, nil
	}

	azCfg := azure.Config{
		SubscriptionID: cfg.SubscriptionID,
		ExpirationTag:  cfg.Tags.Expiration,
		CaseSensitive:  cfg.Tags.CaseSensitive,
		Credential:     domain.CredentialType(cfg.Azure.Credential),
		TenantID:       cfg.Azure.TenantID,
	}
	cred, err := azure.NewCredential(azCfg)
	if err != nil {
		return nil, err
	}

	// One attempt per call, bounded by the configured timeout.
	options := &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: -1,
				TryTimeout: cfg.HTTPTimeout,
			},
		},
	}
	enum, err := azure.NewEnumerator(cred, azCfg, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create enumerator: %w", err)
	}
	return enum, nil
}

func renderOptions(cfg *config.Config) adapters.RenderOptions {
	return adapters.RenderOptions{
		MaxEntriesPerBucket: cfg.MaxEntriesPerBucket,
		Location:            cfg.Location(),
	}
}

func newNotifier(cfg *config.Config, out io.Writer) (notify.Notifier, error) {
	if cfg.MockMode {
		return mocksender.NewSender(out, renderOptions(cfg)), nil
	}
	sender, err := webhook.NewSender(webhook.Config{
		URL:     cfg.WebhookURL,
		Timeout: cfg.HTTPTimeout,
		Render:  renderOptions(cfg),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook sender: %w", err)
	}
	return sender, nil
}

// newRunner validates cfg and wires the pipeline. Demo mode reads the fixture inventory and never posts.
func newRunner(cfg *config.Config, out io.Writer, demo bool) (*workflow.Runner, error) {
	if demo {
		cfg.MockMode = true
		if cfg.SubscriptionID == "" {
			cfg.SubscriptionID = demoSubscription
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	enum, err := newEnumerator(cfg, demo)
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(cfg, out)
	if err != nil {
		return nil, err
	}
	return workflow.NewRunner(enum, notifier, workflow.SettingsFromConfig(cfg)), nil
}
