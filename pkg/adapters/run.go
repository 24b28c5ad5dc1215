package adapters

import (
	"github.com/de-tools/env-expiry/pkg/models/api"
	"github.com/de-tools/env-expiry/pkg/models/domain"
)

func MapSendResultDomainToApi(s *domain.SendResult) *api.SendResult {
	if s == nil {
		return nil
	}
	return &api.SendResult{
		Mode:       string(s.Mode),
		StatusCode: s.StatusCode,
		Bytes:      s.Bytes,
	}
}

func MapRunResultDomainToApi(res *domain.RunResult, runErr error) api.RunResult {
	out := api.RunResult{Buckets: []api.BucketCount{}}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	if res == nil {
		return out
	}
	out.Send = MapSendResultDomainToApi(res.Send)

	r := res.Report
	if r == nil {
		return out
	}
	out.GeneratedAt = r.GeneratedAt
	out.TotalCount = r.TotalCount
	out.Scanned = r.Scanned
	out.ParseErrors = r.ParseErrors
	out.MissingExpiration = r.MissingExpiration
	for _, b := range r.VisibleBuckets() {
		out.Buckets = append(out.Buckets, api.BucketCount{Bucket: b.String(), Count: r.Count(b)})
	}
	return out
}

func MapRunRecordDomainToApi(rec domain.RunRecord) api.RunRecord {
	out := api.RunRecord{
		Source:     rec.Source,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	if rec.Err != nil {
		out.Error = rec.Err.Error()
	}
	return out
}
