package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/de-tools/env-expiry/pkg/models/domain"
)

type Config struct {
	SubscriptionID string
	ExpirationTag  string
	// CaseSensitive controls how the expiration tag key is matched by the query.
	CaseSensitive bool
	Credential    domain.CredentialType
	TenantID      string
}

// NewCredential returns DefaultAzureCredential (managed identity, env, CLI chain) or AzureCLICredential.
func NewCredential(cfg Config) (azcore.TokenCredential, error) {
	switch cfg.Credential {
	case domain.CredentialTypeCLI:
		cred, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: cfg.TenantID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure CLI credential: %w", err)
		}
		return cred, nil
	case domain.CredentialTypeDefault, "":
		cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
			TenantID: cfg.TenantID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create default Azure credential: %w", err)
		}
		return cred, nil
	default:
		return nil, fmt.Errorf("unsupported credential type %q", cfg.Credential)
	}
}
