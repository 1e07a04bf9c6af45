// Package gateway defines the ports to the remote bookkeeping service, the
// authoritative store for every entity the client shows.
//
// Adapters live in subpackages (rest, memory) and in internal/storage for the
// local sqlite store. They all speak the raw wire shapes from internal/core;
// normalization into internal entities happens in the services layer.
package gateway

import (
	"context"
	"encoding/json"

	"mywallet/internal/core"
)

// Resource is the CRUD surface exposed for one entity kind.
type Resource[R any] interface {
	GetAll(ctx context.Context) ([]R, error)
	GetByID(ctx context.Context, id int64) (R, error)
	Create(ctx context.Context, rec R) (ActionResult, error)
	Update(ctx context.Context, rec R) (ActionResult, error)
	Delete(ctx context.Context, id int64) (ActionResult, error)
}

// Totals serves the aggregate views shown on the home page.
type Totals interface {
	AccountWiseTotal(ctx context.Context) ([]core.RawAccountTotal, error)
	CategoryWiseTotal(ctx context.Context) ([]core.RawCategoryTotal, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ActionResult is the envelope returned by every write.
type ActionResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Gateway bundles the per-kind resources of one backend.
type Gateway struct {
	Accounts     Resource[core.RawAccount]
	Categories   Resource[core.RawCategory]
	Persons      Resource[core.RawPerson]
	Transactions Resource[core.RawTransaction]
	Totals       Totals
}
