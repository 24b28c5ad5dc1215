package expiry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/config"
)

const UnknownOwner = "unknown"

// expirationLayouts are tried in order. Values without a zone are read in the configured location.
var expirationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"2006/01/02",
}

// ParseExpiration parses an expiration tag value. ISO-8601 is the primary format.
// Zone-less values are interpreted in loc, which defaults to UTC.
func ParseExpiration(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty expiration value")
	}
	for _, layout := range expirationLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}

// Normalize extracts an Environment from raw. Exactly one of the results is non-nil.
func Normalize(raw domain.RawRecord, tags config.Tags, loc *time.Location) (*domain.Environment, *domain.NormalizationWarning) {
	expValue, ok := lookupTag(raw.Tags, tags.Expiration, tags.CaseSensitive)
	if !ok {
		return nil, &domain.NormalizationWarning{
			ResourceID: raw.ID,
			Reason:     domain.WarningMissingExpiration,
			Tag:        tags.Expiration,
		}
	}

	expiresAt, err := ParseExpiration(expValue, loc)
	if err != nil {
		return nil, &domain.NormalizationWarning{
			ResourceID: raw.ID,
			Reason:     domain.WarningInvalidExpiration,
			Tag:        tags.Expiration,
			Value:      expValue,
			Detail:     err.Error(),
		}
	}

	env := &domain.Environment{
		Name:      environmentName(raw, tags),
		Owner:     UnknownOwner,
		ExpiresAt: expiresAt,
		SourceID:  raw.ID,
	}
	if project, ok := lookupTag(raw.Tags, tags.Project, tags.CaseSensitive); ok {
		env.Project = project
	}
	for _, key := range tags.Owner {
		if owner, ok := lookupTag(raw.Tags, key, tags.CaseSensitive); ok {
			env.Owner = owner
			break
		}
	}
	return env, nil
}

func environmentName(raw domain.RawRecord, tags config.Tags) string {
	if name, ok := lookupTag(raw.Tags, tags.Name, tags.CaseSensitive); ok {
		return name
	}
	id := strings.TrimRight(raw.ID, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}

// lookupTag returns a non-blank tag value. Case-insensitive matches are resolved
// in sorted key order so duplicates differing only in case stay deterministic.
func lookupTag(tags map[string]string, key string, caseSensitive bool) (string, bool) {
	if key == "" || len(tags) == 0 {
		return "", false
	}
	if v, ok := tags[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if caseSensitive {
		return "", false
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) && strings.TrimSpace(tags[k]) != "" {
			return strings.TrimSpace(tags[k]), true
		}
	}
	return "", false
}
