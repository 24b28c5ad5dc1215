package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/env-expiry/pkg/models/api"
)

// SummaryReporter prints the outcome of a single run in a short text form.
type SummaryReporter struct {
	writer io.Writer
}

func NewSummaryReporter(writer io.Writer) *SummaryReporter {
	if writer == nil {
		writer = os.Stderr
	}
	return &SummaryReporter{writer: writer}
}

func (c *SummaryReporter) Handle(result api.RunResult) error {
	tmpl := `
Run {{if .Error}}failed{{else}}completed{{end}}{{if not .GeneratedAt.IsZero}} at {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
Scanned: {{.Scanned}} | Need attention: {{.TotalCount}} | Parse errors: {{.ParseErrors}} | Missing expiration tag: {{.MissingExpiration}}{{end}}
{{range .Buckets}}  {{.Bucket}}: {{.Count}}
{{end}}{{with .Send}}Delivered via {{.Mode}}{{if .StatusCode}} (status {{.StatusCode}}){{end}}, {{.Bytes}} bytes
{{end}}{{with .Error}}Error: {{.}}
{{end}}`
	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, result)
}
