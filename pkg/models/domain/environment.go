package domain

import "time"

// RawRecord is a tagged cloud resource as returned by an enumerator.
type RawRecord struct {
	ID   string            // /subscriptions/<sub>/resourceGroups/<name>
	Tags map[string]string // expirationDate -> 2025-06-20T00:00:00Z
}

type Environment struct {
	Name      string
	Project   string // optional
	Owner     string // email or "unknown"
	ExpiresAt time.Time
	SourceID  string
}

type ClassifiedEnvironment struct {
	Environment
	Bucket Bucket
	// DaysLeft is the calendar-day distance from today, negative once expired.
	DaysLeft int
}

type WarningReason string

const (
	WarningMissingExpiration WarningReason = "missing_expiration"
	WarningInvalidExpiration WarningReason = "invalid_expiration"
)

// NormalizationWarning describes a record that was excluded from classification.
type NormalizationWarning struct {
	ResourceID string
	Reason     WarningReason
	Tag        string
	Value      string
	Detail     string
}

func (w NormalizationWarning) String() string {
	switch w.Reason {
	case WarningMissingExpiration:
		return "no expiration tag " + w.Tag + " on " + w.ResourceID
	default:
		return "cannot parse " + w.Tag + "=" + w.Value + " on " + w.ResourceID
	}
}
