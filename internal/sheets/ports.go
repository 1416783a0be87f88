// Package sheets defines the spreadsheet mirror port. Adapters live in the
// google and memory subpackages.
package sheets

import "context"

// RowAppender appends one row of cell values to the mirror sheet.
type RowAppender interface {
	AppendRow(ctx context.Context, row []string) (rowRef string, err error)
}

// HeaderWriter writes the column header when the sheet is still empty.
type HeaderWriter interface {
	EnsureHeader(ctx context.Context, header []string) error
}

// Mirror is the full adapter used by the worker.
type Mirror interface {
	RowAppender
	HeaderWriter
}
