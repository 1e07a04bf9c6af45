package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mywallet/internal/amqp"
	"mywallet/internal/core"
	"mywallet/internal/gateway"
)

// SaveResult reports what Save did, for the notification shown afterwards.
type SaveResult struct {
	ID      int64
	Created bool
	Message string
}

// TransactionService loads ledger rows through the invariant engine and
// guards every write with ValidateForSubmit.
type TransactionService struct {
	txs        *collection[core.RawTransaction]
	categories *collection[core.RawCategory]
	publisher  EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// List returns every transaction, normalized.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.txs.all(ctx)
	if err != nil {
		return nil, err
	}
	return core.NormalizeAll(rows), nil
}

// Page applies the view's filter and returns the visible window plus the
// number of rows that matched.
func (s *TransactionService) Page(ctx context.Context, view core.ListView) ([]core.Transaction, int, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, total := view.Window(txs)
	return rows, total, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	raw, err := s.txs.res.GetByID(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.NormalizeOnLoad(raw), nil
}

// CopyOf prepares an unsaved duplicate of transaction id dated today.
func (s *TransactionService) CopyOf(ctx context.Context, id int64) (core.Transaction, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.ForCopy(src, core.Today(s.now())), nil
}

// Save validates tx, then creates or updates it. A validation failure never
// reaches the gateway.
func (s *TransactionService) Save(ctx context.Context, tx core.Transaction) (SaveResult, error) {
	tx, err := core.ValidateForSubmit(tx)
	if err != nil {
		return SaveResult{}, err
	}

	// The type flag is derived from the category; a failed category fetch
	// only leaves it unset.
	var categories []core.Category
	if rows, err := s.categories.all(ctx); err == nil {
		categories = core.NormalizeCategories(rows)
	} else {
		s.logger.WarnContext(ctx, "Saving transaction without category type", "error", err)
	}
	raw := core.DenormalizeForSave(tx, categories)

	var out SaveResult
	if tx.IsNew() {
		res, err := s.txs.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
			return s.txs.res.Create(ctx, raw)
		})
		if err != nil {
			return SaveResult{}, err
		}
		out = SaveResult{ID: createdID(res), Created: true, Message: "Transaction successfully saved"}
	} else {
		if _, err := s.txs.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
			return s.txs.res.Update(ctx, raw)
		}); err != nil {
			return SaveResult{}, err
		}
		out = SaveResult{ID: tx.ID, Message: "Transaction successfully updated"}
	}

	s.logger.InfoContext(ctx, "Transaction saved", "id", out.ID, "created", out.Created)
	s.publish(ctx, out.ID, amqp.OpSaved)
	return out, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.txs.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
		return s.txs.res.Delete(ctx, id)
	}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted", "id", id)
	s.publish(ctx, id, amqp.OpDeleted)
	return nil
}

// publish is best effort: the write already succeeded at the source of truth.
func (s *TransactionService) publish(ctx context.Context, id int64, op amqp.EventOp) {
	if s.publisher == nil || id == 0 {
		return
	}
	ev := amqp.NewTransactionEvent(id, op)
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		level := slog.LevelError
		if errors.Is(err, amqp.ErrCircuitOpen) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "Failed to publish transaction event",
			"id", id, "op", op, "error", err)
	}
}
