package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/notify"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseRead = 4096
)

type Config struct {
	URL     string
	Timeout time.Duration
	Render  adapters.RenderOptions
}

// Sender posts the rendered report to a chat webhook.
type Sender struct {
	client *http.Client
	config Config
}

// NewSender builds a Sender. A nil client gets a pooled client from go-cleanhttp.
func NewSender(config Config, client *http.Client) (*Sender, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	return &Sender{client: client, config: config}, nil
}

var _ notify.Notifier = (*Sender)(nil)

func (s *Sender) Deliver(ctx context.Context, report *domain.Report) (*domain.SendResult, error) {
	logger := zerolog.Ctx(ctx)

	msg, err := adapters.MapReportDomainToApi(report, s.config.Render)
	if err != nil {
		return nil, err
	}
	body, err := notify.Encode(msg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewSendError(resp.StatusCode, respBody)
	}

	logger.Info().
		Str("host", req.URL.Host).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("webhook notification sent")

	return &domain.SendResult{
		Mode:       domain.SendModeWebhook,
		StatusCode: resp.StatusCode,
		Bytes:      len(body),
	}, nil
}
