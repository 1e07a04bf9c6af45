// Package memory is an in-process journal used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"mywallet/internal/sheets"
)

type Journal struct {
	mu   sync.Mutex
	rows []sheets.JournalRow
}

var _ sheets.Journal = (*Journal)(nil)

func New() *Journal {
	return &Journal{}
}

// Upsert stores the row and returns a synthetic row reference.
func (j *Journal) Upsert(_ context.Context, row sheets.JournalRow) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.rows {
		if j.rows[i].TransactionID == row.TransactionID {
			j.rows[i] = row
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	j.rows = append(j.rows, row)
	return fmt.Sprintf("mem:%d", len(j.rows)), nil
}

func (j *Journal) Remove(_ context.Context, transactionID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.rows {
		if j.rows[i].TransactionID == transactionID {
			j.rows = append(j.rows[:i], j.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the journal in insertion order.
func (j *Journal) Rows() []sheets.JournalRow {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalRow(nil), j.rows...)
}
