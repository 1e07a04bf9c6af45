// Package services sits between the gateway and the presentation layers. It
// normalizes wire records into core entities, enforces local validation
// before any write, and keeps short-lived collection caches.
package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mywallet/internal/amqp"
	"mywallet/internal/cache"
	"mywallet/internal/core"
	"mywallet/internal/gateway"
)

// EventPublisher announces transaction changes to other processes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

type Options struct {
	// CacheTTL bounds how long a fetched collection is reused. Zero
	// disables caching.
	CacheTTL  time.Duration
	Publisher EventPublisher
	Logger    *slog.Logger
	Now       func() time.Time
	// Caches, when set, gets every collection cache registered for
	// periodic expiry.
	Caches *cache.Manager
}

// Services bundles everything the web and CLI layers need.
type Services struct {
	Catalog      *CatalogService
	Transactions *TransactionService
	Accounts     *EntityService[core.Account, core.RawAccount]
	Categories   *EntityService[core.Category, core.RawCategory]
	Persons      *EntityService[core.Person, core.RawPerson]
	Totals       *TotalsService
}

func New(gw gateway.Gateway, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	accounts := newCollection("account", gw.Accounts, opts.CacheTTL, opts.Caches)
	categories := newCollection("category", gw.Categories, opts.CacheTTL, opts.Caches)
	persons := newCollection("person", gw.Persons, opts.CacheTTL, opts.Caches)
	txs := newCollection("transaction", gw.Transactions, opts.CacheTTL, opts.Caches)

	return &Services{
		Catalog: &CatalogService{accounts: accounts, categories: categories, persons: persons},
		Transactions: &TransactionService{
			txs:        txs,
			categories: categories,
			publisher:  opts.Publisher,
			logger:     opts.Logger,
			now:        opts.Now,
		},
		Accounts: &EntityService[core.Account, core.RawAccount]{
			col:       accounts,
			normalize: mapAll(core.NormalizeAccount),
			raw:       core.DenormalizeAccount,
			validate:  core.Account.Validate,
			id:        func(a core.Account) int64 { return a.ID },
			logger:    opts.Logger,
		},
		Categories: &EntityService[core.Category, core.RawCategory]{
			col:       categories,
			normalize: core.NormalizeCategories,
			raw:       core.DenormalizeCategory,
			validate:  core.Category.Validate,
			id:        func(c core.Category) int64 { return c.ID },
			logger:    opts.Logger,
		},
		Persons: &EntityService[core.Person, core.RawPerson]{
			col:       persons,
			normalize: mapAll(core.NormalizePerson),
			raw:       core.DenormalizePerson,
			validate:  core.Person.Validate,
			id:        func(p core.Person) int64 { return p.ID },
			logger:    opts.Logger,
		},
		Totals: &TotalsService{totals: gw.Totals},
	}
}

func mapAll[R, E any](f func(R) E) func([]R) []E {
	return func(rows []R) []E {
		out := make([]E, len(rows))
		for i, r := range rows {
			out[i] = f(r)
		}
		return out
	}
}

// createdID reads the id a create returned in its data payload.
func createdID(res gateway.ActionResult) int64 {
	if len(res.Data) == 0 {
		return 0
	}
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(res.Data, &payload); err != nil {
		return 0
	}
	return payload.ID
}
