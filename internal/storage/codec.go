package storage

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// splitRow is the stored form of a split share.
type splitRow struct {
	Participant string `json:"participant"`
	AmountCents int64  `json:"amount_cents"`
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func encodeSplits(shares []core.SplitShare) (string, error) {
	rows := make([]splitRow, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, splitRow{Participant: s.Participant, AmountCents: s.Amount.Cents})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode splits: %w", err)
	}
	return string(b), nil
}

func decodeSplits(raw []byte) ([]core.SplitShare, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []splitRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode splits: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	shares := make([]core.SplitShare, len(rows))
	for i, r := range rows {
		shares[i] = core.SplitShare{Participant: r.Participant, Amount: core.Money{Cents: r.AmountCents}}
	}
	return shares, nil
}

// parseOptionalDate reads a stored date column where "" means unset.
func parseOptionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// now is replaced in tests that need deterministic creation times.
var now = func() time.Time { return time.Now().UTC() }
