package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mywallet/internal/amqp"
	"mywallet/internal/core"
	"mywallet/internal/gateway"
	"mywallet/internal/services"
	"mywallet/internal/sheets"
)

// TransactionReader is the part of the transaction service the worker needs.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	List(ctx context.Context) ([]core.Transaction, error)
}

type CatalogLoader interface {
	Load(ctx context.Context) services.Catalog
}

// ExportWorker mirrors transaction changes into the spreadsheet journal.
// Event handling and full syncs run one at a time: a journal upsert reads
// the exported ids before it appends, so two concurrent exports of the same
// new transaction would both append.
type ExportWorker struct {
	mu      sync.Mutex
	txs     TransactionReader
	catalog CatalogLoader
	journal sheets.Journal
	logger  *slog.Logger
}

func NewExportWorker(txs TransactionReader, catalog CatalogLoader, journal sheets.Journal, logger *slog.Logger) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{txs: txs, catalog: catalog, journal: journal, logger: logger}
}

// HandleEvent processes one event from the queue. It always reads the
// current state from the gateway, so replayed or reordered events converge
// on the same journal.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.InfoContext(ctx, "Processing transaction event",
		"event_id", ev.EventID,
		"transaction_id", ev.TransactionID,
		"op", ev.Op)

	switch ev.Op {
	case amqp.OpDeleted:
		return w.remove(ctx, ev.TransactionID)
	case amqp.OpSaved:
		tx, err := w.txs.Get(ctx, ev.TransactionID)
		if errors.Is(err, gateway.ErrNotFound) {
			// Deleted after it was saved; the delete event may still be queued.
			return w.remove(ctx, ev.TransactionID)
		}
		if err != nil {
			return fmt.Errorf("get transaction %d: %w", ev.TransactionID, err)
		}
		return w.export(ctx, tx, w.catalog.Load(ctx))
	default:
		return fmt.Errorf("unknown event op %q", ev.Op)
	}
}

// StartupSync exports every transaction once. It recovers from events lost
// while the worker was down.
func (w *ExportWorker) StartupSync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	txs, err := w.txs.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions for startup sync: %w", err)
	}
	if len(txs) == 0 {
		w.logger.InfoContext(ctx, "No transactions found on startup")
		return nil
	}

	cat := w.catalog.Load(ctx)
	for _, err := range cat.Errors() {
		w.logger.WarnContext(ctx, "Exporting with incomplete reference data", "error", err)
	}

	successCount, errorCount := 0, 0
	for _, tx := range txs {
		if err := w.export(ctx, tx, cat); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", tx.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(txs),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, tx core.Transaction, cat services.Catalog) error {
	ref, err := w.journal.Upsert(ctx, sheets.RowFor(tx, cat))
	if err != nil {
		return fmt.Errorf("upsert journal row: %w", err)
	}
	w.logger.InfoContext(ctx, "Successfully exported transaction",
		"id", tx.ID,
		"sheets_ref", ref)
	return nil
}

func (w *ExportWorker) remove(ctx context.Context, id int64) error {
	if err := w.journal.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove journal row: %w", err)
	}
	w.logger.InfoContext(ctx, "Removed transaction from journal", "id", id)
	return nil
}
