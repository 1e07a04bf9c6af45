package services

import (
	"context"
	"log/slog"

	"mywallet/internal/gateway"
)

// EntityService serves the account, category and person screens: list,
// fetch one, validated save and delete.
type EntityService[E, R any] struct {
	col       *collection[R]
	normalize func([]R) []E
	raw       func(E) R
	validate  func(E) error
	id        func(E) int64
	logger    *slog.Logger
}

func (s *EntityService[E, R]) List(ctx context.Context) ([]E, error) {
	rows, err := s.col.all(ctx)
	if err != nil {
		return nil, err
	}
	return s.normalize(rows), nil
}

func (s *EntityService[E, R]) Get(ctx context.Context, id int64) (E, error) {
	var zero E
	row, err := s.col.res.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	// Rows the client cannot represent (e.g. an unknown category type) are
	// treated as absent.
	got := s.normalize([]R{row})
	if len(got) == 0 {
		return zero, gateway.NotFound(s.col.kind + ".getById")
	}
	return got[0], nil
}

// Save validates e locally and then creates it (id 0) or updates it. The
// returned id is the one the gateway assigned on create.
func (s *EntityService[E, R]) Save(ctx context.Context, e E) (int64, error) {
	if err := s.validate(e); err != nil {
		return 0, err
	}
	rec := s.raw(e)
	id := s.id(e)

	if id == 0 {
		res, err := s.col.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
			return s.col.res.Create(ctx, rec)
		})
		if err != nil {
			return 0, err
		}
		id = createdID(res)
		s.logger.InfoContext(ctx, "Record created", "kind", s.col.kind, "id", id)
		return id, nil
	}

	if _, err := s.col.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
		return s.col.res.Update(ctx, rec)
	}); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Record updated", "kind", s.col.kind, "id", id)
	return id, nil
}

func (s *EntityService[E, R]) Delete(ctx context.Context, id int64) error {
	_, err := s.col.write(ctx, func(ctx context.Context) (gateway.ActionResult, error) {
		return s.col.res.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Record deleted", "kind", s.col.kind, "id", id)
	return nil
}
