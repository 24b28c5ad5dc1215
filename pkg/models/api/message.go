package api

import "time"

// Message is the webhook payload. Text is always set; Blocks are optional rich formatting.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

type Block struct {
	Type     string       `json:"type"` // header, section, divider, context
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

type TextObject struct {
	Type  string `json:"type"` // plain_text, mrkdwn
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

type SendResult struct {
	Mode       string `json:"mode"`
	StatusCode int    `json:"status_code,omitempty"`
	Bytes      int    `json:"bytes"`
}

// RunResult is returned by the run-now endpoint.
type RunResult struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	TotalCount        int           `json:"total_count"`
	Scanned           int           `json:"scanned"`
	ParseErrors       int           `json:"parse_errors"`
	MissingExpiration int           `json:"missing_expiration"`
	Buckets           []BucketCount `json:"buckets"`
	Send              *SendResult   `json:"send,omitempty"`
	Error             string        `json:"error,omitempty"`
}

type RunRecord struct {
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}
