package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	applog "mywallet/internal/log"
)

type apiTransaction struct {
	ID         int64               `json:"id"`
	Date       string              `json:"date"`
	Type       core.CategoryType   `json:"type,omitempty"`
	CategoryID int64               `json:"categoryId"`
	AccountID  int64               `json:"accountId"`
	PersonID   *int64              `json:"personId"`
	Debit      decimal.NullDecimal `json:"debit"`
	Credit     decimal.NullDecimal `json:"credit"`
	Remarks    string              `json:"remarks"`
}

type apiPage struct {
	Rows  []apiTransaction `json:"rows"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Pages int              `json:"pages"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func toAPI(tx core.Transaction, categories []core.Category) apiTransaction {
	out := apiTransaction{
		ID:         tx.ID,
		Date:       tx.Date,
		CategoryID: tx.CategoryID,
		AccountID:  tx.AccountID,
		Debit:      tx.Debit,
		Credit:     tx.Credit,
		Remarks:    tx.Remarks,
	}
	if tx.PersonID != 0 {
		id := tx.PersonID
		out.PersonID = &id
	}
	if t, ok := core.TypeOf(tx, categories); ok {
		out.Type = t
	}
	return out
}

func (s *Server) apiFail(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logFailure(r.Context(), op, err)
	writeJSON(w, errorStatus(err), apiError{Error: errorMessage(err), Field: errorField(err)})
}

// categoriesForTypes is best effort: without categories the type is omitted.
func (s *Server) categoriesForTypes(r *http.Request) []core.Category {
	cats, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.logFailure(r.Context(), applog.OpList, err)
	}
	return cats
}

// handleAPIListTransactions answers the same query string as the table.
func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	view := ParseListView(r.URL.Query())
	rows, total, err := s.svc.Transactions.Page(r.Context(), view)
	if err != nil {
		s.apiFail(w, r, applog.OpList, err)
		return
	}
	cats := s.categoriesForTypes(r)
	out := apiPage{
		Rows:  make([]apiTransaction, len(rows)),
		Total: total,
		Page:  view.Page,
		Size:  view.Size,
		Pages: view.PageCount(total),
	}
	for i, tx := range rows {
		out.Rows[i] = toAPI(tx, cats)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.apiPathID(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		s.apiFail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPI(tx, s.categoriesForTypes(r)))
}

// handleAPISaveTransaction accepts the form field names either
// form-encoded or as a JSON object.
func (s *Server) handleAPISaveTransaction(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid request format"})
		return
	}
	tx, err := ParseTransactionForm(body)
	if err != nil {
		s.apiFail(w, r, applog.OpValidate, err)
		return
	}
	res, err := s.svc.Transactions.Save(r.Context(), tx)
	if err != nil {
		op := applog.OpCreate
		if !tx.IsNew() {
			op = applog.OpUpdate
		}
		s.apiFail(w, r, op, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": res.ID, "created": res.Created, "message": res.Message})
}

func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.apiPathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), id); err != nil {
		s.apiFail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type apiTotals struct {
	Accounts        []core.AccountTotal  `json:"accounts"`
	Categories      []core.CategoryTotal `json:"categories"`
	AccountsError   string               `json:"accountsError,omitempty"`
	CategoriesError string               `json:"categoriesError,omitempty"`
}

func (s *Server) handleAPITotals(w http.ResponseWriter, r *http.Request) {
	t := s.svc.Totals.Load(r.Context())
	out := apiTotals{Accounts: t.Accounts, Categories: t.Categories}
	if t.AccountsErr != nil {
		out.AccountsError = errorMessage(t.AccountsErr)
	}
	if t.CategoriesErr != nil {
		out.CategoriesError = errorMessage(t.CategoriesErr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDField(chi.URLParam(r, "id"), "id")
	if err != nil || id == 0 {
		writeJSON(w, http.StatusNotFound, apiError{Error: "Record not found"})
		return 0, false
	}
	return id, true
}
