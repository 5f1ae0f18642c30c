package model

import "time"

// Operation names the pipeline a journal entry belongs to.
type Operation string

const (
	OperationSticker Operation = "sticker"
	OperationQuote   Operation = "quote"
)

// ConversionStatus is the outcome of one call.
type ConversionStatus string

const (
	StatusSucceeded ConversionStatus = "succeeded"
	StatusFailed    ConversionStatus = "failed"
)

// Conversion is one row of the conversion journal. It records that a call
// happened and how it went; the produced bytes are never stored.
//   - `db:"column_name"` is used by sqlx to scan database rows
//   - `json:"field_name"` is used for API responses
type Conversion struct {
	ID           string           `db:"id" json:"id"`
	Operation    Operation        `db:"operation" json:"operation"`
	SourceKind   string           `db:"source_kind" json:"source_kind"`
	Container    string           `db:"container" json:"container"`
	InputBytes   int64            `db:"input_bytes" json:"input_bytes"`
	OutputBytes  int64            `db:"output_bytes" json:"output_bytes"`
	Status       ConversionStatus `db:"status" json:"status"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	DurationMs   int64            `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
