// Package sheets mirrors the ledger into a spreadsheet journal. The journal
// is a read-only copy for reporting; the gateway stays the source of truth.
package sheets

import (
	"context"
	"strconv"

	"mywallet/internal/core"
)

// JournalRow is one exported transaction, already resolved to display
// names.
type JournalRow struct {
	TransactionID int64
	Date          string
	Type          string
	Category      string
	Account       string
	Person        string
	Debit         string
	Credit        string
	Currency      string
	Remarks       string
}

// Header is the first row written to an empty journal.
var Header = []string{"ID", "Date", "Type", "Category", "Account", "Person", "Debit", "Credit", "Currency", "Remarks"}

// Values renders the row in Header order.
func (r JournalRow) Values() []string {
	return []string{
		strconv.FormatInt(r.TransactionID, 10),
		r.Date, r.Type, r.Category, r.Account, r.Person,
		r.Debit, r.Credit, r.Currency, r.Remarks,
	}
}

// Ports for outbound adapters.
type (
	// JournalWriter replaces the row for a transaction, appending when the
	// transaction has not been exported yet.
	JournalWriter interface {
		Upsert(ctx context.Context, row JournalRow) (rowRef string, err error)
	}

	// JournalDeleter removes the row of a deleted transaction. Removing an
	// unknown id is not an error.
	JournalDeleter interface {
		Remove(ctx context.Context, transactionID int64) error
	}

	Journal interface {
		JournalWriter
		JournalDeleter
	}
)

// Lookup resolves the names a journal row shows.
type Lookup interface {
	CategoryName(id int64) string
	AccountName(id int64) string
	PersonName(id int64) string
	Currency(accountID int64) string
	TypeOf(tx core.Transaction) (core.CategoryType, bool)
}

// RowFor builds the journal row of tx.
func RowFor(tx core.Transaction, names Lookup) JournalRow {
	row := JournalRow{
		TransactionID: tx.ID,
		Date:          tx.Date,
		Category:      names.CategoryName(tx.CategoryID),
		Account:       names.AccountName(tx.AccountID),
		Person:        names.PersonName(tx.PersonID),
		Debit:         core.FormatAmount(tx.Debit),
		Credit:        core.FormatAmount(tx.Credit),
		Currency:      names.Currency(tx.AccountID),
		Remarks:       tx.Remarks,
	}
	if t, ok := names.TypeOf(tx); ok {
		row.Type = t.Label()
	}
	return row
}
