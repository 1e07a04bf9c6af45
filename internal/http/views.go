package http

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"mywallet/internal/core"
	"mywallet/internal/services"
)

const navCookie = "nav"

// Notice codes carried across a post/redirect/get round trip.
var noticeMessages = map[string]string{
	"created":    "Successfully saved",
	"updated":    "Successfully updated",
	"deleted":    "Successfully deleted",
	"tx-created": "Transaction successfully saved",
	"tx-updated": "Transaction successfully updated",
	"tx-deleted": "Transaction deleted",
}

// pageData is what the layout needs on every page.
type pageData struct {
	Title     string
	Active    string
	NavHidden bool
	Notice    string
	Error     string
}

func (s *Server) newPage(r *http.Request, title, active string) pageData {
	p := pageData{Title: title, Active: active}
	if c, err := r.Cookie(navCookie); err == nil && c.Value == "hidden" {
		p.NavHidden = true
	}
	p.Notice = noticeMessages[r.URL.Query().Get("notice")]
	return p
}

type tile struct {
	Title       string
	Href        string
	Description string
}

var homeTiles = []tile{
	{"Transactions", "/transactions", "Record, filter and browse ledger entries"},
	{"Accounts", "/accounts", "Cash, bank and card accounts with opening balances"},
	{"Categories", "/categories", "Income and expense categories"},
	{"Persons", "/persons", "People a transaction can refer to"},
}

type homePage struct {
	pageData
	Tiles           []tile
	Totals          services.Totals
	AccountsError   string
	CategoriesError string
}

// entityPage renders the table and form of a reference-data screen.
type entityPage[E any] struct {
	pageData
	Kind      string
	Path      string
	Rows      []E
	Form      E
	Editing   bool
	Field     string
	FormError string
	ListError string
	Types     []core.CategoryType
}

// txForm echoes the transaction form. Amounts stay as typed so a rejected
// submission comes back unchanged.
type txForm struct {
	ID         int64
	Mode       string // new, edit or copy
	Date       string
	CategoryID int64
	AccountID  int64
	PersonID   int64
	Debit      string
	Credit     string
	Remarks    string
	Field      string
	Error      string
}

func newTxForm(today string) txForm {
	return txForm{Mode: "new", Date: today}
}

func txFormFrom(tx core.Transaction, mode string) txForm {
	return txForm{
		ID:         tx.ID,
		Mode:       mode,
		Date:       tx.Date,
		CategoryID: tx.CategoryID,
		AccountID:  tx.AccountID,
		PersonID:   tx.PersonID,
		Debit:      core.FormatAmount(tx.Debit),
		Credit:     core.FormatAmount(tx.Credit),
		Remarks:    tx.Remarks,
	}
}

func txFormFromValues(form url.Values) txForm {
	f := txForm{
		Mode:       "new",
		Date:       form.Get("date"),
		CategoryID: parseOptionalID(form.Get("categoryId")),
		AccountID:  parseOptionalID(form.Get("accountId")),
		PersonID:   parseOptionalID(form.Get("personId")),
		Debit:      form.Get("debit"),
		Credit:     form.Get("credit"),
		Remarks:    form.Get("remarks"),
	}
	if f.ID = parseOptionalID(form.Get("id")); f.ID != 0 {
		f.Mode = "edit"
	}
	return f
}

// Heading of the form panel.
func (f txForm) Heading() string {
	switch f.Mode {
	case "edit":
		return "Edit transaction"
	case "copy":
		return "Copy transaction"
	}
	return "New transaction"
}

// amountFields is the debit/credit pair re-rendered by /ui/amount.
type amountFields struct {
	Debit  string
	Credit string
	Field  string
	Error  string
}

func (f txForm) Amounts() amountFields {
	af := amountFields{Debit: f.Debit, Credit: f.Credit}
	if f.Field == "debit" || f.Field == "credit" || f.Field == "amount" {
		af.Field, af.Error = f.Field, f.Error
	}
	return af
}

// txRow is one line of the transaction table with references resolved.
type txRow struct {
	ID       int64
	Date     string
	Type     string
	Category string
	Account  string
	Person   string
	Debit    string
	Credit   string
	Currency string
	Remarks  string

	EditURL   string
	CopyURL   string
	DeleteURL string
}

func txRows(txs []core.Transaction, cat services.Catalog) []txRow {
	rows := make([]txRow, len(txs))
	for i, tx := range txs {
		row := txRow{
			ID:       tx.ID,
			Date:     tx.Date,
			Category: cat.CategoryName(tx.CategoryID),
			Account:  cat.AccountName(tx.AccountID),
			Person:   cat.PersonName(tx.PersonID),
			Debit:    core.FormatAmount(tx.Debit),
			Credit:   core.FormatAmount(tx.Credit),
			Currency: cat.Currency(tx.AccountID),
			Remarks:  tx.Remarks,
		}
		if t, ok := cat.TypeOf(tx); ok {
			row.Type = t.Label()
		}
		rows[i] = row
	}
	return rows
}

type hiddenField struct {
	Name  string
	Value string
}

type pager struct {
	Page    int // zero based
	Pages   int
	Size    int
	Total   int
	Sizes   []int
	PrevURL string
	NextURL string
	// Hidden carries the active filter through the page size form. That form
	// omits the page, so a size change lands on the first page.
	Hidden []hiddenField
}

func (p pager) Display() int { return p.Page + 1 }

func newPager(view core.ListView, total int) pager {
	p := pager{
		Page:  view.Page,
		Pages: view.PageCount(total),
		Size:  view.Size,
		Total: total,
		Sizes: core.PageSizes,
	}
	if view.Page > 0 {
		p.PrevURL = transactionsURL(view.WithPage(view.Page - 1))
	}
	if view.Page < p.Pages-1 {
		p.NextURL = transactionsURL(view.WithPage(view.Page + 1))
	}
	q := FilterQuery(view.Spec)
	for _, key := range slices.Sorted(maps.Keys(q)) {
		p.Hidden = append(p.Hidden, hiddenField{Name: key, Value: q.Get(key)})
	}
	return p
}

type transactionsPage struct {
	pageData
	Form          txForm
	Catalog       services.Catalog
	Groups        []services.CategoryGroup
	CatalogErrors []string
	Filter        core.FilterSpec
	Rows          []txRow
	ListError     string
	Pager         pager
	Today         string
	// Return is the encoded table state posted back by the save and delete
	// forms.
	Return  string
	ListURL string
}

func (p transactionsPage) Empty() bool { return len(p.Rows) == 0 }

func (p transactionsPage) Range() string {
	if p.Pager.Total == 0 || len(p.Rows) == 0 {
		return "0 of " + strconv.Itoa(p.Pager.Total)
	}
	first := p.Pager.Page*p.Pager.Size + 1
	last := first + len(p.Rows) - 1
	return strconv.Itoa(first) + "-" + strconv.Itoa(last) + " of " + strconv.Itoa(p.Pager.Total)
}
