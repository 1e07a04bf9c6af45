package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/amqp"
	"mywallet/internal/core"
	"mywallet/internal/gateway"
	"mywallet/internal/gateway/memory"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// countingResource counts GetAll calls and can be told to fail.
type countingResource[R any] struct {
	gateway.Resource[R]
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingResource[R]) GetAll(ctx context.Context) ([]R, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.Resource.GetAll(ctx)
}

func seed() memory.Seed {
	return memory.Seed{
		Accounts: []core.RawAccount{
			{ID: 1, Name: "Cash", Currency: "EUR", OpeningBalance: decimal.NewFromInt(100)},
		},
		Categories: []core.RawCategory{
			{ID: 1, Name: "Food", Type: "EXP"},
			{ID: 2, Name: "Salary", Type: "INC"},
			{ID: 3, Name: "Legacy", Type: "OTHER"},
		},
		Persons: []core.RawPerson{{ID: 1, Name: "Ann"}},
		Transactions: []core.RawTransaction{
			{ID: 1, TransDate: "2024-01-05T00:00:00", CategoryID: 1, AccountID: 1, DebitAmount: core.Amount(decimal.NewFromInt(12))},
			{ID: 2, TransDate: "2024-01-31", CategoryID: 2, AccountID: 1, CreditAmount: core.Amount(decimal.NewFromInt(900)), Remarks: "January pay"},
			{ID: 3, TransDate: "2024-02-02", CategoryID: 1, AccountID: 1, PersonID: ptr(int64(1)),
				DebitAmount: core.Amount(decimal.NewFromInt(5)), CreditAmount: core.Amount(decimal.NewFromInt(7))},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func newTestServices(t *testing.T, opts Options) (*Services, gateway.Gateway) {
	t.Helper()
	gw := memory.New(seed()).Gateway()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return New(gw, opts), gw
}

func TestTransactionService_ListNormalizes(t *testing.T) {
	svc, _ := newTestServices(t, Options{})

	txs, err := svc.Transactions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "2024-01-05", txs[0].Date)
	assert.True(t, txs[2].Debit.Valid, "debit wins when both are present")
	assert.False(t, txs[2].Credit.Valid)
	assert.Equal(t, int64(1), txs[2].PersonID)
}

func TestTransactionService_Page(t *testing.T) {
	svc, _ := newTestServices(t, Options{})

	view := core.NewListView().WithFilter(core.FilterSpec{HasDebit: core.RequirePresent}).WithPageSize(5)
	rows, total, err := svc.Transactions.Page(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(3), rows[1].ID)
}

func TestTransactionService_SaveCreateAndUpdate(t *testing.T) {
	pub := &recordingPublisher{}
	svc, gw := newTestServices(t, Options{Publisher: pub})
	ctx := context.Background()

	tx := core.Transaction{Date: "2024-03-01", CategoryID: 2, AccountID: 1, Credit: core.Amount(decimal.NewFromInt(50))}
	res, err := svc.Transactions.Save(ctx, tx)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(4), res.ID)
	assert.Equal(t, "Transaction successfully saved", res.Message)

	raw, err := gw.Transactions.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "INC", raw.Type, "type flag comes from the category")
	assert.Nil(t, raw.PersonID)
	assert.False(t, raw.DebitAmount.Valid)

	tx.ID = 4
	tx.Remarks = "bonus"
	res, err = svc.Transactions.Save(ctx, tx)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Transaction successfully updated", res.Message)

	require.Len(t, pub.events, 2)
	assert.Equal(t, amqp.OpSaved, pub.events[0].Op)
	assert.Equal(t, int64(4), pub.events[1].TransactionID)
}

func TestTransactionService_SaveRejectsInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	svc, gw := newTestServices(t, Options{Publisher: pub})
	ctx := context.Background()

	_, err := svc.Transactions.Save(ctx, core.Transaction{Date: "2024-03-01", CategoryID: 1, AccountID: 1})
	assert.ErrorIs(t, err, core.ErrMissingAmount)

	_, err = svc.Transactions.Save(ctx, core.Transaction{CategoryID: 1, AccountID: 1, Debit: core.Amount(decimal.NewFromInt(1))})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	all, err := gw.Transactions.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "nothing reached the gateway")
	assert.Empty(t, pub.events)
}

func TestTransactionService_PublishFailureDoesNotFailSave(t *testing.T) {
	pub := &recordingPublisher{err: amqp.ErrCircuitOpen}
	svc, _ := newTestServices(t, Options{Publisher: pub})

	_, err := svc.Transactions.Save(context.Background(), core.Transaction{
		Date: "2024-03-01", CategoryID: 1, AccountID: 1, Debit: core.Amount(decimal.NewFromInt(3)),
	})
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestTransactionService_DeleteAndCopy(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestServices(t, Options{Publisher: pub})
	ctx := context.Background()

	cp, err := svc.Transactions.CopyOf(ctx, 2)
	require.NoError(t, err)
	assert.True(t, cp.IsNew())
	assert.Equal(t, "2024-03-15", cp.Date)
	assert.Equal(t, "January pay", cp.Remarks)
	assert.True(t, cp.Credit.Decimal.Equal(decimal.NewFromInt(900)))

	require.NoError(t, svc.Transactions.Delete(ctx, 2))
	_, err = svc.Transactions.Get(ctx, 2)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.OpDeleted, pub.events[0].Op)

	err = svc.Transactions.Delete(ctx, 2)
	assert.Equal(t, "Record not found", gateway.Message(err))
	_, err = svc.Transactions.CopyOf(ctx, 2)
	assert.Error(t, err)
}

func TestCollectionCache_InvalidatedOnWrite(t *testing.T) {
	store := memory.New(seed())
	gw := store.Gateway()
	counter := &countingResource[core.RawTransaction]{Resource: gw.Transactions}
	gw.Transactions = counter
	svc := New(gw, Options{CacheTTL: time.Minute, Now: fixedNow})
	ctx := context.Background()

	_, err := svc.Transactions.List(ctx)
	require.NoError(t, err)
	_, err = svc.Transactions.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.calls, "second read is served from cache")

	require.NoError(t, svc.Transactions.Delete(ctx, 1))
	txs, err := svc.Transactions.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls, "write drops the cached collection")
	assert.Len(t, txs, 2)
}

func TestCatalog_LoadIsolatesFailures(t *testing.T) {
	gw := memory.New(seed()).Gateway()
	boom := &gateway.Error{Op: "account.getAll", Kind: gateway.KindNetwork, Err: errors.New("refused")}
	gw.Accounts = &countingResource[core.RawAccount]{Resource: gw.Accounts, err: boom}
	svc := New(gw, Options{})

	cat := svc.Catalog.Load(context.Background())

	assert.ErrorIs(t, cat.AccountsErr, boom)
	assert.Empty(t, cat.Accounts)
	assert.NoError(t, cat.CategoriesErr)
	assert.Len(t, cat.Categories, 2, "unknown category types are dropped")
	assert.Len(t, cat.Persons, 1)
	assert.Len(t, cat.Errors(), 1)
	assert.Equal(t, "Cannot connect to the server", gateway.Message(cat.Errors()[0]))
}

func TestCatalog_Lookups(t *testing.T) {
	svc, _ := newTestServices(t, Options{})
	cat := svc.Catalog.Load(context.Background())

	assert.Equal(t, "Food", cat.CategoryName(1))
	assert.Equal(t, "Cash", cat.AccountName(1))
	assert.Equal(t, "EUR", cat.Currency(1))
	assert.Equal(t, "Ann", cat.PersonName(1))
	assert.Empty(t, cat.PersonName(0))

	typ, ok := cat.TypeOf(core.Transaction{CategoryID: 2})
	assert.True(t, ok)
	assert.Equal(t, core.Income, typ)

	groups := cat.GroupedCategories()
	require.Len(t, groups, 2)
	assert.Equal(t, "Income", groups[0].Label)
	assert.Equal(t, "Salary", groups[0].Categories[0].Name)
	assert.Equal(t, "Expense", groups[1].Label)
}

func TestEntityService_Save(t *testing.T) {
	svc, _ := newTestServices(t, Options{})
	ctx := context.Background()

	_, err := svc.Accounts.Save(ctx, core.Account{Name: "Bank"})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "currency", ve.Field)

	id, err := svc.Accounts.Save(ctx, core.Account{Name: "Bank", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	got, err := svc.Accounts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)

	_, err = svc.Persons.Save(ctx, core.Person{Name: "Bob", Email: "not-an-email"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.Categories.Save(ctx, core.Category{Name: "Gift", Type: "OTHER"})
	assert.ErrorIs(t, err, core.ErrInvalidValue)

	cid, err := svc.Categories.Save(ctx, core.Category{Name: "Gift", Type: core.Income})
	require.NoError(t, err)
	require.NoError(t, svc.Categories.Delete(ctx, cid))
	_, err = svc.Categories.Get(ctx, cid)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestEntityService_GetUnrepresentableCategory(t *testing.T) {
	svc, _ := newTestServices(t, Options{})
	_, err := svc.Categories.Get(context.Background(), 3)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestTotalsService_Load(t *testing.T) {
	svc, _ := newTestServices(t, Options{})
	totals := svc.Totals.Load(context.Background())

	require.NoError(t, totals.AccountsErr)
	require.Len(t, totals.Accounts, 1)
	// 100 opening + 900 credit - 12 - 5 debit
	assert.True(t, totals.Accounts[0].Balance.Equal(decimal.NewFromInt(983)), totals.Accounts[0].Balance.String())

	require.NoError(t, totals.CategoriesErr)
	require.Len(t, totals.Categories, 2)
	assert.Equal(t, "Salary", totals.Categories[0].CategoryName)
}
