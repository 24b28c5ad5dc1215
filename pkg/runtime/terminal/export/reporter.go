package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
)

type TableConfig struct {
	NameWidth    int
	ProjectWidth int
	OwnerWidth   int
	ExpiresWidth int
	StatusWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:    32,
		ProjectWidth: 20,
		OwnerWidth:   28,
		ExpiresWidth: 10,
		StatusWidth:  22,
	}
}

// Reporter prints every classified environment of a report as a table, one section per bucket.
type Reporter struct {
	writer   io.Writer
	config   TableConfig
	location *time.Location
}

func NewReporter(writer io.Writer, location *time.Location) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if location == nil {
		location = time.UTC
	}
	return &Reporter{
		writer:   writer,
		config:   DefaultTableConfig(),
		location: location,
	}
}

type tableSection struct {
	Title   string
	Entries []domain.ClassifiedEnvironment
}

type tableView struct {
	GeneratedAt string
	TotalCount  int
	Scanned     int
	Sections    []tableSection
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, project, owner, expires, status string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, clip(name, c.config.NameWidth),
				c.config.ProjectWidth, clip(project, c.config.ProjectWidth),
				c.config.OwnerWidth, clip(owner, c.config.OwnerWidth),
				c.config.ExpiresWidth, clip(expires, c.config.ExpiresWidth),
				c.config.StatusWidth, clip(status, c.config.StatusWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ProjectWidth+2),
				strings.Repeat("-", c.config.OwnerWidth+2),
				strings.Repeat("-", c.config.ExpiresWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2))
		},
		"date": func(t time.Time) string {
			return t.In(c.location).Format("2006-01-02")
		},
		"hint": adapters.DayHint,
	}

	tmpl := `
Deployment environments ({{.Scanned}} scanned, {{.TotalCount}} need attention)
Generated: {{.GeneratedAt}}
{{range .Sections}}
=== {{.Title}} ({{len .Entries}}) ===
{{separator}}
{{formatRow "Name" "Project" "Owner" "Expires" "Status"}}
{{separator}}
{{range .Entries}}{{formatRow .Name .Project .Owner (date .ExpiresAt) (hint .DaysLeft)}}
{{end}}{{separator}}
{{end}}`

	t, err := template.New("table").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	view := tableView{
		GeneratedAt: report.GeneratedAt.In(c.location).Format("2006-01-02 15:04 MST"),
		TotalCount:  report.TotalCount,
		Scanned:     report.Scanned,
	}
	for _, b := range report.VisibleBuckets() {
		if entries := report.Buckets[b]; len(entries) > 0 {
			view.Sections = append(view.Sections, tableSection{Title: adapters.BucketTitle(b), Entries: entries})
		}
	}

	return t.Execute(c.writer, view)
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
