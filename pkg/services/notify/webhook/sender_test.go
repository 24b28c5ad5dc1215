package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *domain.Report {
	now := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)
	return report.Build([]domain.ClassifiedEnvironment{{
		Environment: domain.Environment{Name: "envA", Owner: "unknown", ExpiresAt: now.AddDate(0, 0, -1)},
		Bucket:      domain.BucketExpired,
		DaysLeft:    -1,
	}}, now, report.Stats{}, report.Options{})
}

func TestSender_Deliver_Success(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotPayload     map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	sender, err := NewSender(Config{URL: srv.URL}, srv.Client())
	require.NoError(t, err)

	res, err := sender.Deliver(context.Background(), testReport())

	require.NoError(t, err)
	assert.Equal(t, domain.SendModeWebhook, res.Mode)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Positive(t, res.Bytes)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	require.Contains(t, gotPayload, "text")
	assert.Contains(t, gotPayload["text"], "envA")
	assert.Contains(t, gotPayload, "blocks")
}

func TestSender_Deliver_Non2xx(t *testing.T) {
	longBody := strings.Repeat("x", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(longBody))
	}))
	defer srv.Close()

	sender, err := NewSender(Config{URL: srv.URL}, srv.Client())
	require.NoError(t, err)

	res, err := sender.Deliver(context.Background(), testReport())

	assert.Nil(t, res)
	var sendErr *domain.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusInternalServerError, sendErr.StatusCode)
	assert.Len(t, sendErr.Body, 512)
}

func TestSender_Deliver_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sender, err := NewSender(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client())
	require.NoError(t, err)

	_, err = sender.Deliver(context.Background(), testReport())

	var transportErr *domain.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSender_Deliver_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sender, err := NewSender(Config{URL: url, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = sender.Deliver(context.Background(), testReport())

	var transportErr *domain.TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestNewSender_RequiresURL(t *testing.T) {
	_, err := NewSender(Config{}, nil)
	assert.Error(t, err)
}
