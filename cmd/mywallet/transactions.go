package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mywallet/internal/cli"
	"mywallet/internal/core"
	"mywallet/internal/gateway"
	applog "mywallet/internal/log"
	"mywallet/internal/services"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Browse ledger transactions",
	}
	cmd.AddCommand(listTransactionsCmd())
	return cmd
}

type listFlags struct {
	spec          core.FilterSpec
	debit, credit string
	page, size    int
}

func listTransactionsCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions matching a filter",
		Example: `  mywallet transactions list --from 2024-01-01 --to 2024-01-31
  mywallet tx list --credit yes --size 25 --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			app, err := cli.NewApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Warn("Cleanup failed", applog.FieldError, err)
				}
			}()

			view, err := f.view()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rows, total, err := app.Services.Transactions.Page(ctx, view)
			if err != nil {
				return fmt.Errorf("list transactions: %s", gateway.Message(err))
			}
			cat := app.Services.Catalog.Load(ctx)
			for _, e := range cat.Errors() {
				logger.Warn("Reference data unavailable", applog.FieldError, e)
			}
			return printTransactions(cmd.OutOrStdout(), rows, total, view, cat)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.spec.FromDate, "from", "", "first date, inclusive (YYYY-MM-DD)")
	fl.StringVar(&f.spec.ToDate, "to", "", "last date, inclusive (YYYY-MM-DD)")
	fl.Int64Var(&f.spec.CategoryID, "category", 0, "category id")
	fl.Int64Var(&f.spec.AccountID, "account", 0, "account id")
	fl.Int64Var(&f.spec.PersonID, "person", 0, "person id")
	fl.StringVar(&f.debit, "debit", "", "require (yes) or exclude (no) a debit amount")
	fl.StringVar(&f.credit, "credit", "", "require (yes) or exclude (no) a credit amount")
	fl.StringVar(&f.spec.Remarks, "remarks", "", "case-insensitive text the remarks must contain")
	fl.IntVar(&f.page, "page", 1, "page number, starting at 1")
	fl.IntVar(&f.size, "size", core.DefaultPageSize, fmt.Sprintf("rows per page %v", core.PageSizes))
	return cmd
}

func (f listFlags) view() (core.ListView, error) {
	spec := f.spec
	spec.HasDebit = core.ParseTriState(f.debit)
	spec.HasCredit = core.ParseTriState(f.credit)
	if f.page < 1 {
		return core.ListView{}, fmt.Errorf("invalid page %d: pages start at 1", f.page)
	}
	return core.NewListView().
		WithFilter(spec).
		WithPageSize(f.size).
		WithPage(f.page - 1), nil
}

func printTransactions(out io.Writer, rows []core.Transaction, total int, view core.ListView, cat services.Catalog) error {
	if total == 0 {
		_, err := fmt.Fprintln(out, "No transactions match.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDate\tType\tCategory\tAccount\tPerson\tDebit\tCredit\tRemarks\t")
	fmt.Fprintln(w, strings.Join([]string{"--", "----", "----", "--------", "-------", "------", "-----", "------", "-------"}, "\t")+"\t")
	for _, tx := range rows {
		typ := ""
		if t, ok := cat.TypeOf(tx); ok {
			typ = t.Label()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			tx.ID, tx.Date, typ,
			cat.CategoryName(tx.CategoryID),
			cat.AccountName(tx.AccountID),
			cat.PersonName(tx.PersonID),
			core.FormatAmount(tx.Debit),
			core.FormatAmount(tx.Credit),
			tx.Remarks)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\npage %d of %d, %d matching\n", view.Page+1, view.PageCount(total), total)
	return err
}
