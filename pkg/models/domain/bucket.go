package domain

type Bucket int

const (
	BucketExpired Bucket = iota
	BucketTomorrow
	BucketThreeDays
	BucketSevenDays
	BucketHealthy
)

// BucketOrder is the fixed rendering priority.
var BucketOrder = []Bucket{
	BucketExpired,
	BucketTomorrow,
	BucketThreeDays,
	BucketSevenDays,
	BucketHealthy,
}

func (b Bucket) String() string {
	switch b {
	case BucketExpired:
		return "expired"
	case BucketTomorrow:
		return "tomorrow"
	case BucketThreeDays:
		return "3_days"
	case BucketSevenDays:
		return "7_days"
	case BucketHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// NeedsAttention reports whether environments in the bucket are part of the alert.
func (b Bucket) NeedsAttention() bool {
	return b != BucketHealthy
}
