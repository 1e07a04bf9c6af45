package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mywallet/internal/core"
)

// Catalog is the reference data a transaction screen needs. Each kind is
// fetched independently; a failed kind leaves its slice empty and its error
// set while the others are still usable.
type Catalog struct {
	Categories []core.Category
	Accounts   []core.Account
	Persons    []core.Person

	CategoriesErr error
	AccountsErr   error
	PersonsErr    error
}

// CategoryGroup is one section of the grouped category picker.
type CategoryGroup struct {
	Label      string
	Type       core.CategoryType
	Categories []core.Category
}

type CatalogService struct {
	accounts   *collection[core.RawAccount]
	categories *collection[core.RawCategory]
	persons    *collection[core.RawPerson]
}

// Load fetches categories, accounts and persons concurrently.
func (s *CatalogService) Load(ctx context.Context) Catalog {
	var (
		cat Catalog
		g   errgroup.Group
	)

	g.Go(func() error {
		rows, err := s.categories.all(ctx)
		cat.Categories, cat.CategoriesErr = core.NormalizeCategories(rows), err
		return nil
	})
	g.Go(func() error {
		rows, err := s.accounts.all(ctx)
		cat.Accounts, cat.AccountsErr = mapAll(core.NormalizeAccount)(rows), err
		return nil
	})
	g.Go(func() error {
		rows, err := s.persons.all(ctx)
		cat.Persons, cat.PersonsErr = mapAll(core.NormalizePerson)(rows), err
		return nil
	})

	_ = g.Wait()
	return cat
}

// Errors lists the failures of this load, categories first.
func (c Catalog) Errors() []error {
	var errs []error
	for _, err := range []error{c.CategoriesErr, c.AccountsErr, c.PersonsErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (c Catalog) CategoryName(id int64) string {
	for _, x := range c.Categories {
		if x.ID == id {
			return x.Name
		}
	}
	return ""
}

func (c Catalog) AccountName(id int64) string {
	for _, x := range c.Accounts {
		if x.ID == id {
			return x.Name
		}
	}
	return ""
}

func (c Catalog) PersonName(id int64) string {
	if id == 0 {
		return ""
	}
	for _, x := range c.Persons {
		if x.ID == id {
			return x.Name
		}
	}
	return ""
}

// Currency of the account, empty when unknown.
func (c Catalog) Currency(accountID int64) string {
	for _, x := range c.Accounts {
		if x.ID == accountID {
			return x.Currency
		}
	}
	return ""
}

// TypeOf derives the transaction's type from its category.
func (c Catalog) TypeOf(tx core.Transaction) (core.CategoryType, bool) {
	return core.TypeOf(tx, c.Categories)
}

// GroupedCategories splits categories into Income then Expense sections,
// keeping the gateway order inside each. Empty sections are omitted.
func (c Catalog) GroupedCategories() []CategoryGroup {
	var groups []CategoryGroup
	for _, t := range []core.CategoryType{core.Income, core.Expense} {
		g := CategoryGroup{Label: t.Label(), Type: t}
		for _, x := range c.Categories {
			if x.Type == t {
				g.Categories = append(g.Categories, x)
			}
		}
		if len(g.Categories) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}
