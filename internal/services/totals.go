package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mywallet/internal/core"
	"mywallet/internal/gateway"
)

// Totals feeds the home page. Like Catalog, each half fails on its own.
type Totals struct {
	Accounts   []core.AccountTotal
	Categories []core.CategoryTotal

	AccountsErr   error
	CategoriesErr error
}

type TotalsService struct {
	totals gateway.Totals
}

func (s *TotalsService) Load(ctx context.Context) Totals {
	var (
		out Totals
		g   errgroup.Group
	)
	g.Go(func() error {
		rows, err := s.totals.AccountWiseTotal(ctx)
		out.Accounts, out.AccountsErr = mapAll(core.NormalizeAccountTotal)(rows), err
		return nil
	})
	g.Go(func() error {
		rows, err := s.totals.CategoryWiseTotal(ctx)
		out.Categories, out.CategoriesErr = mapAll(core.NormalizeCategoryTotal)(rows), err
		return nil
	})
	_ = g.Wait()
	return out
}
