// Package memory is an in-process gateway used for development and tests.
// It behaves like the remote service: ids are assigned on create, writes
// answer with an ActionResult and totals are computed on the fly.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"mywallet/internal/core"
	"mywallet/internal/gateway"
)

// Seed is the on-disk layout of a seed file.
type Seed struct {
	Accounts     []core.RawAccount     `json:"accounts"`
	Categories   []core.RawCategory    `json:"categories"`
	Persons      []core.RawPerson      `json:"persons"`
	Transactions []core.RawTransaction `json:"transactions"`
}

type Store struct {
	mu           sync.Mutex
	accounts     *table[core.RawAccount]
	categories   *table[core.RawCategory]
	persons      *table[core.RawPerson]
	transactions *table[core.RawTransaction]
}

var (
	_ gateway.Totals = (*Store)(nil)
	_ gateway.Pinger = (*Store)(nil)
)

func New(seed Seed) *Store {
	s := &Store{}
	s.accounts = newTable(&s.mu, "account", seed.Accounts,
		func(r core.RawAccount) int64 { return r.ID },
		func(r *core.RawAccount, id int64) { r.ID = id })
	s.categories = newTable(&s.mu, "category", seed.Categories,
		func(r core.RawCategory) int64 { return r.ID },
		func(r *core.RawCategory, id int64) { r.ID = id })
	s.persons = newTable(&s.mu, "person", seed.Persons,
		func(r core.RawPerson) int64 { return r.ID },
		func(r *core.RawPerson, id int64) { r.ID = id })
	s.transactions = newTable(&s.mu, "transaction", seed.Transactions,
		func(r core.RawTransaction) int64 { return r.ID },
		func(r *core.RawTransaction, id int64) { r.ID = id })
	return s
}

// NewFromFile loads a JSON seed. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(Seed{}), nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(Seed{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return New(seed), nil
}

func (s *Store) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Accounts:     s.accounts,
		Categories:   s.categories,
		Persons:      s.persons,
		Transactions: s.transactions,
		Totals:       s,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) AccountWiseTotal(context.Context) ([]core.RawAccountTotal, error) {
	s.mu.Lock()
	accounts := make([]core.Account, len(s.accounts.rows))
	for i, r := range s.accounts.rows {
		accounts[i] = core.NormalizeAccount(r)
	}
	txs := core.NormalizeAll(s.transactions.rows)
	s.mu.Unlock()

	totals := core.SummarizeAccounts(accounts, txs)
	out := make([]core.RawAccountTotal, len(totals))
	for i, t := range totals {
		out[i] = core.DenormalizeAccountTotal(t)
	}
	return out, nil
}

func (s *Store) CategoryWiseTotal(context.Context) ([]core.RawCategoryTotal, error) {
	s.mu.Lock()
	cats := core.NormalizeCategories(s.categories.rows)
	txs := core.NormalizeAll(s.transactions.rows)
	s.mu.Unlock()

	totals := core.SummarizeCategories(cats, txs)
	out := make([]core.RawCategoryTotal, len(totals))
	for i, t := range totals {
		out[i] = core.DenormalizeCategoryTotal(t)
	}
	return out, nil
}

// table holds one entity kind. All tables of a Store share its mutex.
type table[R any] struct {
	mu     *sync.Mutex
	kind   string
	rows   []R
	nextID int64
	id     func(R) int64
	setID  func(*R, int64)
}

func newTable[R any](mu *sync.Mutex, kind string, seed []R, id func(R) int64, setID func(*R, int64)) *table[R] {
	t := &table[R]{mu: mu, kind: kind, id: id, setID: setID}
	for _, r := range seed {
		t.nextID = max(t.nextID, id(r))
	}
	for _, r := range seed {
		if id(r) == 0 {
			t.nextID++
			setID(&r, t.nextID)
		}
		t.rows = append(t.rows, r)
	}
	return t
}

func (t *table[R]) GetAll(context.Context) ([]R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]R{}, t.rows...), nil
}

func (t *table[R]) GetByID(_ context.Context, id int64) (R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(id); i >= 0 {
		return t.rows[i], nil
	}
	var zero R
	return zero, gateway.NotFound(t.kind + ".getById")
}

func (t *table[R]) Create(_ context.Context, rec R) (gateway.ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.setID(&rec, t.nextID)
	t.rows = append(t.rows, rec)
	return t.result("saved", t.nextID), nil
}

func (t *table[R]) Update(_ context.Context, rec R) (gateway.ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(rec)
	i := t.index(id)
	if i < 0 {
		return gateway.ActionResult{}, gateway.NotFound(t.kind + ".update")
	}
	t.rows[i] = rec
	return t.result("updated", id), nil
}

func (t *table[R]) Delete(_ context.Context, id int64) (gateway.ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return gateway.ActionResult{}, gateway.NotFound(t.kind + ".delete")
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return t.result("deleted", id), nil
}

func (t *table[R]) index(id int64) int {
	for i, r := range t.rows {
		if t.id(r) == id {
			return i
		}
	}
	return -1
}

func (t *table[R]) result(verb string, id int64) gateway.ActionResult {
	data, _ := json.Marshal(map[string]int64{"id": id})
	return gateway.ActionResult{
		Success: true,
		Message: fmt.Sprintf("%s %s", t.kind, verb),
		Data:    data,
	}
}
