package expiry

import (
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
)

const secondsPerDay = 24 * 60 * 60

// DaysUntil counts calendar days from now to expiresAt in loc. Time of day is ignored,
// so repeated evaluations on the same day agree.
func DaysUntil(expiresAt, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	// Unix seconds rather than Sub, which saturates beyond ~292 years.
	return int((civilDay(expiresAt.In(loc)).Unix() - civilDay(now.In(loc)).Unix()) / secondsPerDay)
}

// civilDay drops the clock and zone so DST transitions cannot shift the day count.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Classify maps an expiration to its urgency bucket:
// today or earlier is expired, +1 tomorrow, +2..3 three days, +4..7 seven days, later healthy.
func Classify(expiresAt, now time.Time, loc *time.Location) domain.Bucket {
	return bucketFor(DaysUntil(expiresAt, now, loc))
}

func bucketFor(days int) domain.Bucket {
	switch {
	case days <= 0:
		return domain.BucketExpired
	case days == 1:
		return domain.BucketTomorrow
	case days <= 3:
		return domain.BucketThreeDays
	case days <= 7:
		return domain.BucketSevenDays
	default:
		return domain.BucketHealthy
	}
}

// ClassifyAll attaches a bucket and day distance to every environment.
func ClassifyAll(envs []domain.Environment, now time.Time, loc *time.Location) []domain.ClassifiedEnvironment {
	out := make([]domain.ClassifiedEnvironment, 0, len(envs))
	for _, env := range envs {
		days := DaysUntil(env.ExpiresAt, now, loc)
		out = append(out, domain.ClassifiedEnvironment{
			Environment: env,
			Bucket:      bucketFor(days),
			DaysLeft:    days,
		})
	}
	return out
}
