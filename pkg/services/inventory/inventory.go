package inventory

import (
	"context"

	"github.com/de-tools/env-expiry/pkg/models/domain"
)

// Enumerator lists tagged resources for one account scope.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]domain.RawRecord, error)
}
