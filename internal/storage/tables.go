package storage

import (
	"database/sql"

	"mywallet/internal/core"
)

type scanner interface {
	Scan(dest ...any) error
}

// tableSpec binds a wire record type to its table. args returns the column
// values in insert order without the id; updateSQL takes those plus the id.
type tableSpec[R any] struct {
	kind      string
	table     string
	selectSQL string
	insertSQL string
	updateSQL string
	scan      func(scanner) (R, error)
	args      func(R) []any
	id        func(R) int64
}

var accountSpec = tableSpec[core.RawAccount]{
	kind:      "account",
	table:     "accounts",
	selectSQL: `SELECT id, name, currency, opening_balance, balance, remarks FROM accounts`,
	insertSQL: `INSERT INTO accounts (name, currency, opening_balance, balance, remarks) VALUES (?, ?, ?, ?, ?)`,
	updateSQL: `UPDATE accounts SET name = ?, currency = ?, opening_balance = ?, balance = ?, remarks = ? WHERE id = ?`,
	scan: func(s scanner) (core.RawAccount, error) {
		var a core.RawAccount
		err := s.Scan(&a.ID, &a.Name, &a.Currency, &a.OpeningBalance, &a.Balance, &a.Remarks)
		return a, err
	},
	args: func(a core.RawAccount) []any {
		return []any{a.Name, a.Currency, a.OpeningBalance, a.Balance, a.Remarks}
	},
	id: func(a core.RawAccount) int64 { return a.ID },
}

var categorySpec = tableSpec[core.RawCategory]{
	kind:      "category",
	table:     "categories",
	selectSQL: `SELECT id, name, type, remarks FROM categories`,
	insertSQL: `INSERT INTO categories (name, type, remarks) VALUES (?, ?, ?)`,
	updateSQL: `UPDATE categories SET name = ?, type = ?, remarks = ? WHERE id = ?`,
	scan: func(s scanner) (core.RawCategory, error) {
		var c core.RawCategory
		err := s.Scan(&c.ID, &c.Name, &c.Type, &c.Remarks)
		return c, err
	},
	args: func(c core.RawCategory) []any {
		return []any{c.Name, c.Type, c.Remarks}
	},
	id: func(c core.RawCategory) int64 { return c.ID },
}

var personSpec = tableSpec[core.RawPerson]{
	kind:      "person",
	table:     "persons",
	selectSQL: `SELECT id, name, contact_no, email, remarks FROM persons`,
	insertSQL: `INSERT INTO persons (name, contact_no, email, remarks) VALUES (?, ?, ?, ?)`,
	updateSQL: `UPDATE persons SET name = ?, contact_no = ?, email = ?, remarks = ? WHERE id = ?`,
	scan: func(s scanner) (core.RawPerson, error) {
		var p core.RawPerson
		err := s.Scan(&p.ID, &p.Name, &p.ContactNo, &p.Email, &p.Remarks)
		return p, err
	},
	args: func(p core.RawPerson) []any {
		return []any{p.Name, p.ContactNo, p.Email, p.Remarks}
	},
	id: func(p core.RawPerson) int64 { return p.ID },
}

var transactionSpec = tableSpec[core.RawTransaction]{
	kind:  "transaction",
	table: "transactions",
	selectSQL: `SELECT id, trans_date, category_id, account_id, person_id, debit_amount, credit_amount, remarks, type
		FROM transactions`,
	insertSQL: `INSERT INTO transactions
		(trans_date, category_id, account_id, person_id, debit_amount, credit_amount, remarks, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	updateSQL: `UPDATE transactions SET
		trans_date = ?, category_id = ?, account_id = ?, person_id = ?,
		debit_amount = ?, credit_amount = ?, remarks = ?, type = ?
		WHERE id = ?`,
	scan: func(s scanner) (core.RawTransaction, error) {
		var (
			t      core.RawTransaction
			person sql.NullInt64
		)
		err := s.Scan(&t.ID, &t.TransDate, &t.CategoryID, &t.AccountID, &person,
			&t.DebitAmount, &t.CreditAmount, &t.Remarks, &t.Type)
		if person.Valid {
			t.PersonID = &person.Int64
		}
		return t, err
	},
	args: func(t core.RawTransaction) []any {
		var person sql.NullInt64
		if t.PersonID != nil {
			person = sql.NullInt64{Int64: *t.PersonID, Valid: true}
		}
		return []any{t.TransDate, t.CategoryID, t.AccountID, person,
			t.DebitAmount, t.CreditAmount, t.Remarks, t.Type}
	},
	id: func(t core.RawTransaction) int64 { return t.ID },
}
