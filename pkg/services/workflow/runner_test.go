package workflow

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/config"
	mocksender "github.com/de-tools/env-expiry/pkg/services/notify/mock"
	"github.com/de-tools/env-expiry/pkg/services/notify/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)

type mockEnumerator struct {
	mock.Mock
}

func (m *mockEnumerator) Enumerate(ctx context.Context) ([]domain.RawRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Deliver(ctx context.Context, report *domain.Report) (*domain.SendResult, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SendResult), args.Error(1)
}

func settings() Settings {
	return Settings{
		Tags: config.Tags{
			Expiration:    "expirationDate",
			Owner:         config.DefaultOwnerTags,
			Name:          "environmentName",
			Project:       "projectName",
			CaseSensitive: true,
		},
		Location: time.UTC,
	}
}

func rawEnv(name string, expiresAt time.Time) domain.RawRecord {
	return domain.RawRecord{
		ID: "/subscriptions/sub/resourceGroups/rg-" + name,
		Tags: map[string]string{
			"environmentName": name,
			"expirationDate":  expiresAt.Format(time.RFC3339),
		},
	}
}

func scenarioRecords() []domain.RawRecord {
	return []domain.RawRecord{
		rawEnv("envA", today.AddDate(0, 0, -1)),
		rawEnv("envB", today.AddDate(0, 0, 1)),
		rawEnv("envC", today.AddDate(0, 0, 10)),
	}
}

func bucketNames(r *domain.Report, b domain.Bucket) []string {
	var out []string
	for _, e := range r.Buckets[b] {
		out = append(out, e.Name)
	}
	return out
}

func TestRunner_Scenario(t *testing.T) {
	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return(scenarioRecords(), nil)
	notifier := new(mockNotifier)
	notifier.On("Deliver", mock.Anything, mock.Anything).Return(&domain.SendResult{Mode: domain.SendModeMock}, nil)

	runner := NewRunner(enum, notifier, settings(), WithClock(func() time.Time { return today }))
	res, err := runner.Run(context.Background())

	require.NoError(t, err)
	r := res.Report
	assert.Equal(t, []string{"envA"}, bucketNames(r, domain.BucketExpired))
	assert.Equal(t, []string{"envB"}, bucketNames(r, domain.BucketTomorrow))
	assert.Empty(t, r.Buckets[domain.BucketThreeDays])
	assert.Empty(t, r.Buckets[domain.BucketSevenDays])
	assert.Empty(t, r.Buckets[domain.BucketHealthy])
	assert.Equal(t, 2, r.TotalCount)
	assert.Equal(t, today, r.GeneratedAt)
	assert.Equal(t, domain.SendModeMock, res.Send.Mode)
	notifier.AssertCalled(t, "Deliver", mock.Anything, r)
}

func TestRunner_Build_DoesNotDeliver(t *testing.T) {
	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return(scenarioRecords(), nil)
	notifier := new(mockNotifier)

	res, err := NewRunner(enum, notifier, settings(), WithClock(func() time.Time { return today })).
		Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.TotalCount)
	assert.Nil(t, res.Send)
	notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestRunner_EnumerationFailure_SendsNothing(t *testing.T) {
	enum := new(mockEnumerator)
	boom := errors.New("resource graph unavailable")
	enum.On("Enumerate", mock.Anything).Return(nil, boom)
	notifier := new(mockNotifier)

	res, err := NewRunner(enum, notifier, settings()).Run(context.Background())

	assert.Nil(t, res)
	var enumErr *domain.EnumerationError
	require.True(t, errors.As(err, &enumErr))
	assert.ErrorIs(t, err, boom)
	notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestRunner_MissingAndInvalidTags_AreWarnings(t *testing.T) {
	records := append(scenarioRecords(),
		domain.RawRecord{ID: "rg-untagged", Tags: map[string]string{"environmentName": "untagged"}},
		domain.RawRecord{ID: "rg-bad", Tags: map[string]string{"environmentName": "bad", "expirationDate": "soon"}},
	)
	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return(records, nil)
	notifier := new(mockNotifier)
	notifier.On("Deliver", mock.Anything, mock.Anything).Return(&domain.SendResult{Mode: domain.SendModeMock}, nil)

	res, err := NewRunner(enum, notifier, settings(), WithClock(func() time.Time { return today })).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, 1, res.Report.MissingExpiration)
	assert.Equal(t, 1, res.Report.ParseErrors)
	for _, b := range domain.BucketOrder {
		assert.NotContains(t, bucketNames(res.Report, b), "untagged")
		assert.NotContains(t, bucketNames(res.Report, b), "bad")
	}
}

func TestRunner_AllClear_StillDelivers(t *testing.T) {
	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return([]domain.RawRecord{rawEnv("far", today.AddDate(0, 2, 0))}, nil)
	var out bytes.Buffer
	sender := mocksender.NewSender(&out, adapters.RenderOptions{})

	res, err := NewRunner(enum, sender, settings(), WithClock(func() time.Time { return today })).Run(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Report.AllClear())
	assert.Equal(t, domain.SendModeMock, res.Send.Mode)
	assert.Contains(t, out.String(), "All deployment environments are healthy")
}

func TestRunner_Webhook500_FailsAfterReportIsBuilt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal_error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender, err := webhook.NewSender(webhook.Config{URL: srv.URL}, srv.Client())
	require.NoError(t, err)
	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return(scenarioRecords(), nil)

	var hooked *domain.Report
	runner := NewRunner(enum, sender, settings(),
		WithClock(func() time.Time { return today }),
		WithReportHook(func(r *domain.Report) { hooked = r }),
	)
	res, err := runner.Run(context.Background())

	var sendErr *domain.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusInternalServerError, sendErr.StatusCode)
	assert.Contains(t, sendErr.Body, "internal_error")
	require.NotNil(t, hooked)
	assert.Equal(t, 2, hooked.TotalCount)
	require.NotNil(t, res)
	assert.Same(t, hooked, res.Report)
	assert.Nil(t, res.Send)
}

func TestRunner_DateOnlyTagInConfiguredZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, 9, 10, 9, 0, 0, 0, ny)

	enum := new(mockEnumerator)
	enum.On("Enumerate", mock.Anything).Return([]domain.RawRecord{{
		ID:   "/subscriptions/sub/resourceGroups/rg-envB",
		Tags: map[string]string{"environmentName": "envB", "expirationDate": "2025-09-11"},
	}}, nil)
	var out bytes.Buffer
	sender := mocksender.NewSender(&out, adapters.RenderOptions{Location: ny})

	s := settings()
	s.Location = ny
	res, err := NewRunner(enum, sender, s, WithClock(func() time.Time { return now })).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"envB"}, bucketNames(res.Report, domain.BucketTomorrow))
	assert.Empty(t, res.Report.Buckets[domain.BucketExpired])
	assert.Contains(t, out.String(), "expires: 2025-09-11 (tomorrow)")
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{Timezone: "UTC", Verbose: true, Tags: config.Tags{Expiration: "exp"}}

	s := SettingsFromConfig(cfg)

	assert.True(t, s.Verbose)
	assert.Equal(t, "exp", s.Tags.Expiration)
	assert.Equal(t, time.UTC, s.Location)
}
