package adapters

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/api"
	"github.com/de-tools/env-expiry/pkg/models/domain"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04 MST"
	noProject       = "—"
)

var markers = map[domain.Bucket]string{
	domain.BucketExpired:   "❌",
	domain.BucketTomorrow:  "🚨",
	domain.BucketThreeDays: "⚠️",
	domain.BucketSevenDays: "⏰",
	domain.BucketHealthy:   "✅",
}

var titles = map[domain.Bucket]string{
	domain.BucketExpired:   "EXPIRED",
	domain.BucketTomorrow:  "TOMORROW",
	domain.BucketThreeDays: "3 DAYS",
	domain.BucketSevenDays: "7 DAYS",
	domain.BucketHealthy:   "HEALTHY",
}

// BucketTitle is the section heading used for b.
func BucketTitle(b domain.Bucket) string {
	return markers[b] + " " + titles[b]
}

// DayHint describes how far an expiration is from today in words.
func DayHint(days int) string {
	return dayHint(days)
}

type RenderOptions struct {
	// MaxEntriesPerBucket caps rendered lines per bucket, 0 means no cap.
	MaxEntriesPerBucket int
	// Location controls how dates are printed. Defaults to UTC.
	Location *time.Location
}

type messageView struct {
	Headline    string
	AllClear    bool
	TotalCount  int
	Counts      []countView
	Scanned     int
	ParseErrors int
	Missing     int
	Sections    []sectionView
	GeneratedAt string
}

type countView struct {
	Marker string
	Title  string
	Count  int
}

type sectionView struct {
	Marker  string
	Title   string
	Count   int
	Lines   []lineView
	Omitted int
}

type lineView struct {
	Marker  string
	Name    string
	Project string
	Owner   string
	Date    string
	Hint    string
}

const textTemplate = `{{if .AllClear -}}
✅ All deployment environments are healthy, no expiration warnings.
{{- else -}}
{{.Headline}}
Summary: {{.TotalCount}} environment(s) need attention
{{counts .Counts}}
{{- end}}
Scanned: {{.Scanned}} | Parse errors: {{.ParseErrors}} | Missing expiration tag: {{.Missing}}
{{range .Sections}}
{{.Marker}} {{.Title}} ({{.Count}})
{{range .Lines}}{{line .}}
{{end}}{{if .Omitted}}...and {{.Omitted}} more
{{end}}{{end}}
Generated: {{.GeneratedAt}}
`

var textTmpl = template.Must(template.New("message").Funcs(template.FuncMap{
	"counts": func(counts []countView) string {
		parts := make([]string, 0, len(counts))
		for _, c := range counts {
			parts = append(parts, fmt.Sprintf("%s %s: %d", c.Marker, c.Title, c.Count))
		}
		return strings.Join(parts, " | ")
	},
	"line": formatLine,
}).Parse(textTemplate))

func formatLine(l lineView) string {
	return fmt.Sprintf("%s %s | project: %s | owner: %s | expires: %s (%s)",
		l.Marker, l.Name, l.Project, l.Owner, l.Date, l.Hint)
}

func newMessageView(r *domain.Report, opts RenderOptions) messageView {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	headline := "⚠️ Deployment environment expiration alert"
	if r.Count(domain.BucketExpired) > 0 {
		headline = "🚨 Deployment environment expiration alert"
	}

	view := messageView{
		Headline:    headline,
		AllClear:    r.AllClear(),
		TotalCount:  r.TotalCount,
		Scanned:     r.Scanned,
		ParseErrors: r.ParseErrors,
		Missing:     r.MissingExpiration,
		GeneratedAt: r.GeneratedAt.In(loc).Format(timestampLayout),
	}

	for _, b := range r.VisibleBuckets() {
		entries := r.Buckets[b]
		view.Counts = append(view.Counts, countView{Marker: markers[b], Title: strings.ToLower(titles[b]), Count: len(entries)})
		if len(entries) == 0 {
			continue
		}

		section := sectionView{Marker: markers[b], Title: titles[b], Count: len(entries)}
		shown := entries
		if opts.MaxEntriesPerBucket > 0 && len(shown) > opts.MaxEntriesPerBucket {
			shown = shown[:opts.MaxEntriesPerBucket]
			section.Omitted = len(entries) - len(shown)
		}
		for _, e := range shown {
			section.Lines = append(section.Lines, newLineView(e, loc))
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

func newLineView(e domain.ClassifiedEnvironment, loc *time.Location) lineView {
	project := e.Project
	if project == "" {
		project = noProject
	}
	owner := e.Owner
	if owner == "" {
		owner = "unknown"
	}
	return lineView{
		Marker:  markers[e.Bucket],
		Name:    e.Name,
		Project: project,
		Owner:   owner,
		Date:    e.ExpiresAt.In(loc).Format(dateLayout),
		Hint:    dayHint(e.DaysLeft),
	}
}

func dayHint(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("expired %d day(s) ago", -days)
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// RenderText renders the plain text summary carried in the message `text` field.
func RenderText(r *domain.Report, opts RenderOptions) (string, error) {
	var sb strings.Builder
	if err := textTmpl.Execute(&sb, newMessageView(r, opts)); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return sb.String(), nil
}

// MapReportDomainToApi builds the full webhook message: plain text plus blocks.
func MapReportDomainToApi(r *domain.Report, opts RenderOptions) (api.Message, error) {
	text, err := RenderText(r, opts)
	if err != nil {
		return api.Message{}, err
	}
	return api.Message{
		Text:   text,
		Blocks: mapBlocks(newMessageView(r, opts)),
	}, nil
}

func mapBlocks(v messageView) []api.Block {
	stats := fmt.Sprintf("Scanned: %d | Parse errors: %d | Missing expiration tag: %d", v.Scanned, v.ParseErrors, v.Missing)
	footer := contextBlock(fmt.Sprintf("🤖 _Environment expiry monitor | %s_", v.GeneratedAt))

	if v.AllClear {
		return []api.Block{
			{Type: "section", Text: &api.TextObject{Type: "plain_text", Text: "✅ All deployment environments are healthy, no expiration warnings."}},
			contextBlock(stats),
			footer,
		}
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "*Summary:* %d environment(s) need attention\n", v.TotalCount)
	for _, c := range v.Counts {
		fmt.Fprintf(&summary, "\n%s %d %s", c.Marker, c.Count, c.Title)
	}

	blocks := []api.Block{
		{Type: "header", Text: &api.TextObject{Type: "plain_text", Text: v.Headline, Emoji: true}},
		{Type: "section", Text: &api.TextObject{Type: "mrkdwn", Text: summary.String()}},
		contextBlock(stats),
		{Type: "divider"},
	}

	for _, s := range v.Sections {
		var body strings.Builder
		fmt.Fprintf(&body, "*%s %s (%d)*", s.Marker, s.Title, s.Count)
		for _, l := range s.Lines {
			fmt.Fprintf(&body, "\n• `%s` | project: %s | owner: %s | expires: %s (%s)", l.Name, l.Project, l.Owner, l.Date, l.Hint)
		}
		blocks = append(blocks, api.Block{Type: "section", Text: &api.TextObject{Type: "mrkdwn", Text: body.String()}})
		if s.Omitted > 0 {
			blocks = append(blocks, contextBlock(fmt.Sprintf("_...and %d more environment(s)_", s.Omitted)))
		}
		blocks = append(blocks, api.Block{Type: "divider"})
	}

	return append(blocks, footer)
}

func contextBlock(text string) api.Block {
	return api.Block{Type: "context", Elements: []api.TextObject{{Type: "mrkdwn", Text: text}}}
}
