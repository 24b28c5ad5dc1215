package report

import (
	"sort"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
)

type Options struct {
	// Verbose keeps the healthy bucket in the report.
	Verbose bool
}

// Stats carries the normalization counters that end up in the report header.
type Stats struct {
	ParseErrors       int
	MissingExpiration int
}

// StatsFromWarnings counts warnings by reason.
func StatsFromWarnings(warnings []domain.NormalizationWarning) Stats {
	var s Stats
	for _, w := range warnings {
		switch w.Reason {
		case domain.WarningInvalidExpiration:
			s.ParseErrors++
		case domain.WarningMissingExpiration:
			s.MissingExpiration++
		}
	}
	return s
}

// Build groups classified environments by bucket. Every visible bucket is present,
// empty or not, and entries are ordered by expiration then name.
func Build(envs []domain.ClassifiedEnvironment, now time.Time, stats Stats, opts Options) *domain.Report {
	r := &domain.Report{
		GeneratedAt:       now,
		Buckets:           make(map[domain.Bucket][]domain.ClassifiedEnvironment, len(domain.BucketOrder)),
		Scanned:           len(envs),
		ParseErrors:       stats.ParseErrors,
		MissingExpiration: stats.MissingExpiration,
		Verbose:           opts.Verbose,
	}

	for _, b := range r.VisibleBuckets() {
		r.Buckets[b] = []domain.ClassifiedEnvironment{}
	}

	for _, env := range envs {
		if env.Bucket == domain.BucketHealthy && !opts.Verbose {
			continue
		}
		r.Buckets[env.Bucket] = append(r.Buckets[env.Bucket], env)
		if env.Bucket.NeedsAttention() {
			r.TotalCount++
		}
	}

	for _, entries := range r.Buckets {
		sortEntries(entries)
	}
	return r
}

func sortEntries(entries []domain.ClassifiedEnvironment) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ExpiresAt.Equal(b.ExpiresAt) {
			return a.ExpiresAt.Before(b.ExpiresAt)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SourceID < b.SourceID
	})
}
