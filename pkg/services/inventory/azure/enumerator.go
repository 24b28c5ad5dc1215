package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/inventory"
	"github.com/rs/zerolog"
)

// maxPages guards against a service that keeps returning skip tokens.
const maxPages = 1000

type resourceQuerier interface {
	Resources(
		ctx context.Context,
		query armresourcegraph.QueryRequest,
		options *armresourcegraph.ClientResourcesOptions,
	) (armresourcegraph.ClientResourcesResponse, error)
}

type enumerator struct {
	client resourceQuerier
	config Config
}

// NewEnumerator builds a Resource Graph backed enumerator for cfg.SubscriptionID.
func NewEnumerator(cred azcore.TokenCredential, cfg Config, options *arm.ClientOptions) (inventory.Enumerator, error) {
	if cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required")
	}
	client, err := armresourcegraph.NewClient(cred, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource graph client: %w", err)
	}
	return newEnumerator(client, cfg), nil
}

func newEnumerator(client resourceQuerier, cfg Config) *enumerator {
	return &enumerator{client: client, config: cfg}
}

// Query selects resource groups that carry the expiration tag. Property access on tags is
// case-sensitive, so case-insensitive matching filters on the serialized bag instead and
// leaves the exact key match to the normalizer.
func Query(expirationTag string, caseSensitive bool) string {
	tag := strings.NewReplacer(`\`, `\\`, "'", "\\'").Replace(expirationTag)
	filter := fmt.Sprintf("isnotempty(tags['%s'])", tag)
	if !caseSensitive {
		filter = fmt.Sprintf(`tostring(tags) contains '"%s"'`, tag)
	}
	return fmt.Sprintf(`ResourceContainers
| where type =~ 'microsoft.resources/subscriptions/resourcegroups'
| where %s
| project id, name, tags
| order by id asc`, filter)
}

func (e *enumerator) Enumerate(ctx context.Context) ([]domain.RawRecord, error) {
	logger := zerolog.Ctx(ctx)

	request := armresourcegraph.QueryRequest{
		Query:         to.Ptr(Query(e.config.ExpirationTag, e.config.CaseSensitive)),
		Subscriptions: []*string{to.Ptr(e.config.SubscriptionID)},
		Options: &armresourcegraph.QueryRequestOptions{
			ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
		},
	}

	var records []domain.RawRecord
	for page := 0; page < maxPages; page++ {
		resp, err := e.client.Resources(ctx, request, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to query resource graph: %w", err)
		}

		rows, err := decodeRows(resp.Data)
		if err != nil {
			return nil, err
		}
		records = append(records, rows...)

		logger.Debug().
			Int("page", page).
			Int("rows", len(rows)).
			Msg("resource graph page received")

		if resp.SkipToken == nil || *resp.SkipToken == "" {
			logger.Info().
				Str("subscription", e.config.SubscriptionID).
				Int("records", len(records)).
				Msg("resource graph enumeration finished")
			return records, nil
		}
		request.Options.SkipToken = resp.SkipToken
	}
	return nil, fmt.Errorf("resource graph returned more than %d pages", maxPages)
}

// decodeRows converts an objectArray result into raw records.
func decodeRows(data any) ([]domain.RawRecord, error) {
	if data == nil {
		return nil, nil
	}
	rows, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected resource graph result type %T", data)
	}

	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		records = append(records, domain.RawRecord{
			ID:   id,
			Tags: decodeTags(obj["tags"]),
		})
	}
	return records, nil
}

func decodeTags(v any) map[string]string {
	raw, ok := v.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	tags := make(map[string]string, len(raw))
	for k, val := range raw {
		switch t := val.(type) {
		case string:
			tags[k] = t
		case nil:
		default:
			tags[k] = fmt.Sprint(t)
		}
	}
	return tags
}
