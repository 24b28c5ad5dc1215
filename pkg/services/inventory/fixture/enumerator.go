package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/inventory"
)

type demoEnv struct {
	name    string
	project string
	owner   string
	offset  time.Duration
	raw     string // overrides the computed expiration when set
	noTag   bool
}

var demoEnvs = []demoEnv{
	{name: "dev-frontend-app", project: "customer-portal", owner: "alice@company.com", offset: -48 * time.Hour},
	{name: "test-backend-api", project: "customer-portal", owner: "bob@company.com"},
	{name: "demo-ml-workspace", project: "ai-initiatives", owner: "carol@company.com", offset: 24 * time.Hour},
	{name: "staging-database", project: "data-platform", owner: "david@company.com", offset: 48 * time.Hour},
	{name: "poc-iot-simulator", project: "iot-platform", owner: "eve@company.com", offset: -6 * time.Hour},
	{name: "perf-load-runner", project: "data-platform", offset: 5 * 24 * time.Hour},
	{name: "sandbox-long-lived", project: "ai-initiatives", owner: "frank@company.com", offset: 30 * 24 * time.Hour},
	{name: "legacy-untagged", project: "customer-portal", noTag: true},
	{name: "typo-date", project: "iot-platform", raw: "31/12/2025"},
}

// Enumerator returns a fixed set of demo resource groups with expirations relative to Now.
type Enumerator struct {
	SubscriptionID string
	Now            func() time.Time
	ExpirationTag  string
}

var _ inventory.Enumerator = (*Enumerator)(nil)

func (e *Enumerator) Enumerate(_ context.Context) ([]domain.RawRecord, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	tag := e.ExpirationTag
	if tag == "" {
		tag = "expirationDate"
	}
	sub := e.SubscriptionID
	if sub == "" {
		sub = "00000000-0000-0000-0000-000000000000"
	}

	base := now().UTC()
	records := make([]domain.RawRecord, 0, len(demoEnvs))
	for _, d := range demoEnvs {
		tags := map[string]string{
			"environmentName": d.name,
			"projectName":     d.project,
		}
		if d.owner != "" {
			tags["created_by"] = d.owner
		}
		switch {
		case d.noTag:
		case d.raw != "":
			tags[tag] = d.raw
		default:
			tags[tag] = base.Add(d.offset).Format(time.RFC3339)
		}
		records = append(records, domain.RawRecord{
			ID:   fmt.Sprintf("/subscriptions/%s/resourceGroups/rg-%s", sub, d.name),
			Tags: tags,
		})
	}
	return records, nil
}
