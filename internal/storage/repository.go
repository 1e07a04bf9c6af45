// Package storage is a standalone gateway backed by a local sqlite file. It
// keeps records in the same wire shape the remote service uses, so the rest
// of the application cannot tell the two apart.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"mywallet/internal/core"
	"mywallet/internal/gateway"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ gateway.Totals = (*SQLiteRepository)(nil)
	_ gateway.Pinger = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Gateway exposes the repository as a full set of resources.
func (r *SQLiteRepository) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Accounts:     &table[core.RawAccount]{repo: r, spec: accountSpec},
		Categories:   &table[core.RawCategory]{repo: r, spec: categorySpec},
		Persons:      &table[core.RawPerson]{repo: r, spec: personSpec},
		Transactions: &table[core.RawTransaction]{repo: r, spec: transactionSpec},
		Totals:       r,
	}
}

func (r *SQLiteRepository) AccountWiseTotal(ctx context.Context) ([]core.RawAccountTotal, error) {
	raws, err := queryAll(ctx, r, accountSpec)
	if err != nil {
		return nil, err
	}
	accounts := make([]core.Account, len(raws))
	for i, a := range raws {
		accounts[i] = core.NormalizeAccount(a)
	}
	txs, err := queryAll(ctx, r, transactionSpec)
	if err != nil {
		return nil, err
	}

	totals := core.SummarizeAccounts(accounts, core.NormalizeAll(txs))
	out := make([]core.RawAccountTotal, len(totals))
	for i, t := range totals {
		out[i] = core.DenormalizeAccountTotal(t)
	}
	return out, nil
}

func (r *SQLiteRepository) CategoryWiseTotal(ctx context.Context) ([]core.RawCategoryTotal, error) {
	cats, err := queryAll(ctx, r, categorySpec)
	if err != nil {
		return nil, err
	}
	txs, err := queryAll(ctx, r, transactionSpec)
	if err != nil {
		return nil, err
	}

	totals := core.SummarizeCategories(core.NormalizeCategories(cats), core.NormalizeAll(txs))
	out := make([]core.RawCategoryTotal, len(totals))
	for i, t := range totals {
		out[i] = core.DenormalizeCategoryTotal(t)
	}
	return out, nil
}

// table adapts one entity kind to gateway.Resource.
type table[R any] struct {
	repo *SQLiteRepository
	spec tableSpec[R]
}

func (t *table[R]) GetAll(ctx context.Context) ([]R, error) {
	return queryAll(ctx, t.repo, t.spec)
}

func (t *table[R]) GetByID(ctx context.Context, id int64) (R, error) {
	var zero R
	row := t.repo.db.QueryRowContext(ctx, t.spec.selectSQL+" WHERE id = ?", id)
	rec, err := t.spec.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, gateway.NotFound(t.spec.kind + ".getById")
	}
	if err != nil {
		return zero, storeErr(t.spec.kind+".getById", err)
	}
	return rec, nil
}

func (t *table[R]) Create(ctx context.Context, rec R) (gateway.ActionResult, error) {
	op := t.spec.kind + ".create"
	res, err := t.repo.db.ExecContext(ctx, t.spec.insertSQL, t.spec.args(rec)...)
	if err != nil {
		return gateway.ActionResult{}, storeErr(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return gateway.ActionResult{}, storeErr(op, err)
	}
	t.repo.logger.InfoContext(ctx, "Record saved to SQLite", "kind", t.spec.kind, "id", id)
	return actionResult(t.spec.kind+" saved", id), nil
}

func (t *table[R]) Update(ctx context.Context, rec R) (gateway.ActionResult, error) {
	op := t.spec.kind + ".update"
	id := t.spec.id(rec)
	args := append(t.spec.args(rec), id)
	res, err := t.repo.db.ExecContext(ctx, t.spec.updateSQL, args...)
	if err != nil {
		return gateway.ActionResult{}, storeErr(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ActionResult{}, gateway.NotFound(op)
	}
	t.repo.logger.InfoContext(ctx, "Record updated in SQLite", "kind", t.spec.kind, "id", id)
	return actionResult(t.spec.kind+" updated", id), nil
}

func (t *table[R]) Delete(ctx context.Context, id int64) (gateway.ActionResult, error) {
	op := t.spec.kind + ".delete"
	res, err := t.repo.db.ExecContext(ctx, "DELETE FROM "+t.spec.table+" WHERE id = ?", id)
	if err != nil {
		return gateway.ActionResult{}, storeErr(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ActionResult{}, gateway.NotFound(op)
	}
	t.repo.logger.InfoContext(ctx, "Record deleted from SQLite", "kind", t.spec.kind, "id", id)
	return actionResult(t.spec.kind+" deleted", id), nil
}

func queryAll[R any](ctx context.Context, r *SQLiteRepository, spec tableSpec[R]) ([]R, error) {
	op := spec.kind + ".getAll"
	rows, err := r.db.QueryContext(ctx, spec.selectSQL+" ORDER BY id")
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	out := []R{}
	for rows.Next() {
		rec, err := spec.scan(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

// storeErr reports local database failures the way the remote client
// reports a 500 from the service.
func storeErr(op string, err error) error {
	return &gateway.Error{Op: op, Kind: gateway.KindStatus, StatusCode: http.StatusInternalServerError, Err: err}
}

func actionResult(msg string, id int64) gateway.ActionResult {
	data, _ := json.Marshal(map[string]int64{"id": id})
	return gateway.ActionResult{Success: true, Message: msg, Data: data}
}
