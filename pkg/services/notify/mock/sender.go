package mock

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/notify"
	"github.com/rs/zerolog"
)

// Sender writes the payload that would have been posted to a local writer.
type Sender struct {
	writer io.Writer
	render adapters.RenderOptions
}

func NewSender(writer io.Writer, render adapters.RenderOptions) *Sender {
	if writer == nil {
		writer = os.Stdout
	}
	return &Sender{writer: writer, render: render}
}

var _ notify.Notifier = (*Sender)(nil)

func (s *Sender) Deliver(ctx context.Context, report *domain.Report) (*domain.SendResult, error) {
	msg, err := adapters.MapReportDomainToApi(report, s.render)
	if err != nil {
		return nil, err
	}
	body, err := notify.Encode(msg)
	if err != nil {
		return nil, err
	}

	stamp := report.GeneratedAt.UTC().Format(time.RFC3339)
	if _, err := fmt.Fprintf(s.writer, "[MOCK WEBHOOK %s]\n%s\n", stamp, body); err != nil {
		return nil, fmt.Errorf("failed to write mock payload: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int("bytes", len(body)).
		Msg("mock mode: payload written locally, no webhook call made")

	return &domain.SendResult{Mode: domain.SendModeMock, Bytes: len(body)}, nil
}
