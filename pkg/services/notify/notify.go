package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/de-tools/env-expiry/pkg/models/api"
	"github.com/de-tools/env-expiry/pkg/models/domain"
)

// Notifier delivers a finished report. Implementations make a single attempt.
type Notifier interface {
	Deliver(ctx context.Context, report *domain.Report) (*domain.SendResult, error)
}

// Encode serializes a message the same way for every backend.
func Encode(msg api.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
