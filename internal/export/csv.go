// Package export serializes expenses to the dashboard's CSV format.
//
// The format is deliberately simple: fields are joined with commas and never
// quoted. Commas in notes become semicolons; other fields are written as-is.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// ErrNothingToExport is returned for an empty expense set. Nothing is written.
var ErrNothingToExport = errors.New("no expenses to export")

// NothingToExportNotice is the user-facing message for ErrNothingToExport.
const NothingToExportNotice = "No expenses to export"

// Header is the fixed first row.
var Header = []string{
	"Date", "Description", "Merchant", "Category", "Amount",
	"Currency", "Payment Method", "Notes", "Tags", "Recurring",
}

// Row renders one expense in Header order.
func Row(e core.Expense) []string {
	recurring := "No"
	if e.IsRecurring {
		recurring = e.Frequency.Label()
	}
	return []string{
		e.Date.String(),
		e.Text,
		e.Merchant,
		string(e.Category),
		e.Amount.String(),
		e.Currency,
		string(e.PaymentMethod),
		strings.ReplaceAll(e.Note, ",", ";"),
		strings.Join(e.Tags, " "),
		recurring,
	}
}

// WriteCSV writes the header and one line per expense to w.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		return ErrNothingToExport
	}
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, Header); err != nil {
		return err
	}
	for _, e := range expenses {
		if err := writeLine(bw, Row(e)); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeLine(w *bufio.Writer, fields []string) error {
	if _, err := w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv line: %w", err)
	}
	return nil
}

// Filename names the export file after the period it covers.
func Filename(period string) string {
	if period == "" {
		return "expenses.csv"
	}
	return "expenses-" + period + ".csv"
}
