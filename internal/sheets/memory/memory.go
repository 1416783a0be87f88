package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sindhu2707/expense-tracker/internal/sheets"
)

var _ sheets.Mirror = (*Store)(nil)

// Store keeps mirrored rows in memory. It is used when no spreadsheet is
// configured and in tests.
type Store struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

func New() *Store {
	return &Store{}
}

// AppendRow stores a copy of row and returns a synthetic row reference.
func (s *Store) AppendRow(_ context.Context, row []string) (string, error) {
	if len(row) == 0 {
		return "", errors.New("empty row")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), row...))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) EnsureHeader(_ context.Context, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header == nil {
		s.header = append([]string(nil), header...)
	}
	return nil
}

func (s *Store) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.header...)
}

// Rows returns a copy of every appended row in order.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
