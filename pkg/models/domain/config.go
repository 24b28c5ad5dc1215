package domain

import "fmt"

type CredentialType string

const (
	CredentialTypeDefault CredentialType = "default"
	CredentialTypeCLI     CredentialType = "cli"
)

// AzureProfile is a named section in an Azure profile file.
type AzureProfile struct {
	Name           string
	SubscriptionID string
	TenantID       string
}

func (p AzureProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.SubscriptionID)
}
