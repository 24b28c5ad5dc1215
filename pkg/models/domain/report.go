package domain

import "time"

// Report is the result of one pipeline pass, grouped by bucket.
type Report struct {
	GeneratedAt time.Time
	Buckets     map[Bucket][]ClassifiedEnvironment
	// TotalCount is the number of environments needing attention (all non-healthy buckets).
	TotalCount int
	// Scanned is the number of environments that were classified, healthy included.
	Scanned           int
	ParseErrors       int
	MissingExpiration int
	Verbose           bool
}

// Count returns the number of environments in b.
func (r *Report) Count(b Bucket) int {
	return len(r.Buckets[b])
}

// AllClear reports whether no environment needs attention.
func (r *Report) AllClear() bool {
	return r.TotalCount == 0
}

// VisibleBuckets returns the buckets that are rendered, in priority order.
func (r *Report) VisibleBuckets() []Bucket {
	visible := make([]Bucket, 0, len(BucketOrder))
	for _, b := range BucketOrder {
		if b == BucketHealthy && !r.Verbose {
			continue
		}
		visible = append(visible, b)
	}
	return visible
}

type SendMode string

const (
	SendModeWebhook SendMode = "webhook"
	SendModeMock    SendMode = "mock"
)

type SendResult struct {
	Mode       SendMode
	StatusCode int
	Bytes      int
}

type RunResult struct {
	Report   *Report
	Warnings []NormalizationWarning
	Send     *SendResult
}

// RunRecord describes the most recent finished run.
type RunRecord struct {
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}
