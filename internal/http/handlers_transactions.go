package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"mywallet/internal/core"
	applog "mywallet/internal/log"
	"mywallet/internal/services"
)

// transactionsView assembles the transaction screen. The catalog and the
// table page are fetched concurrently and fail independently.
func (s *Server) transactionsView(r *http.Request, view core.ListView, form txForm) transactionsPage {
	ctx := r.Context()
	var (
		cat   services.Catalog
		rows  []core.Transaction
		total int
		err   error
		g     errgroup.Group
	)
	g.Go(func() error {
		cat = s.svc.Catalog.Load(ctx)
		return nil
	})
	g.Go(func() error {
		rows, total, err = s.svc.Transactions.Page(ctx, view)
		return nil
	})
	_ = g.Wait()

	p := transactionsPage{
		pageData: s.newPage(r, "Transactions", "transactions"),
		Form:     form,
		Catalog:  cat,
		Groups:   cat.GroupedCategories(),
		Filter:   view.Spec,
		Rows:     txRows(rows, cat),
		Pager:    newPager(view, total),
		Today:    core.Today(s.now()),
		Return:   ListViewQuery(view).Encode(),
	}
	p.ListURL = transactionsURL(view)
	suffix := strings.TrimPrefix(p.ListURL, "/transactions")
	for i := range p.Rows {
		base := "/transactions/" + strconv.FormatInt(p.Rows[i].ID, 10)
		p.Rows[i].EditURL = base + "/edit" + suffix
		p.Rows[i].CopyURL = base + "/copy" + suffix
		p.Rows[i].DeleteURL = base + "/delete"
	}
	for _, e := range cat.Errors() {
		s.logFailure(ctx, applog.OpList, e)
		p.CatalogErrors = append(p.CatalogErrors, errorMessage(e))
	}
	if err != nil {
		s.logFailure(ctx, applog.OpList, err)
		p.ListError = errorMessage(err)
	}
	return p
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	view := ParseListView(r.URL.Query())
	p := s.transactionsView(r, view, newTxForm(core.Today(s.now())))
	s.render(w, r, http.StatusOK, "transactions", p, nil)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	view := ParseListView(r.URL.Query())
	s.render(w, r, http.StatusOK, "transactions", s.transactionsView(r, view, txFormFrom(tx, "edit")), nil)
}

// handleCopyTransaction opens the form on an unsaved duplicate dated today.
func (s *Server) handleCopyTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Transactions.CopyOf(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpCopy, err)
		return
	}
	view := ParseListView(r.URL.Query())
	s.render(w, r, http.StatusOK, "transactions", s.transactionsView(r, view, txFormFrom(tx, "copy")), nil)
}

// returnView recovers the table state the save and delete forms post back.
func returnView(form url.Values) core.ListView {
	q, err := url.ParseQuery(form.Get("return"))
	if err != nil {
		return core.NewListView()
	}
	return ParseListView(q)
}

func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	view := returnView(r.PostForm)

	tx, err := ParseTransactionForm(r.PostForm)
	var res services.SaveResult
	if err == nil {
		res, err = s.svc.Transactions.Save(r.Context(), tx)
	}
	if err != nil {
		op := applog.OpCreate
		if !tx.IsNew() {
			op = applog.OpUpdate
		}
		s.logFailure(r.Context(), op, err)

		form := txFormFromValues(r.PostForm)
		form.Field, form.Error = errorField(err), errorMessage(err)
		p := s.transactionsView(r, view, form)
		if form.Field == "" {
			p.Error = form.Error
		}
		s.render(w, r, errorStatus(err), "transactions", p,
			NewHTMXResponse().TriggerErrorNotification(form.Error))
		return
	}

	notice := "tx-updated"
	if res.Created {
		notice = "tx-created"
	}
	listURL := transactionsURL(view)
	if !isHTMX(r) {
		redirect(w, r, withNotice(listURL, notice))
		return
	}
	p := s.transactionsView(r, view, newTxForm(core.Today(s.now())))
	p.Notice = res.Message
	s.render(w, r, http.StatusOK, "transactions", p, NewHTMXResponse().
		TriggerRecordSaved("transaction", res.ID, res.Created).
		TriggerFormReset().
		TriggerSuccessNotification(res.Message).
		PushURL(listURL))
}

// handleDeleteTransaction removes a row and steps the table back one page
// when the row was the only one on the last page.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	view := returnView(r.PostForm)

	_, totalBefore, err := s.svc.Transactions.Page(r.Context(), view)
	if err == nil {
		err = s.svc.Transactions.Delete(r.Context(), id)
	}
	if err != nil {
		s.logFailure(r.Context(), applog.OpDelete, err)
		p := s.transactionsView(r, view, newTxForm(core.Today(s.now())))
		p.Error = errorMessage(err)
		s.render(w, r, errorStatus(err), "transactions", p,
			NewHTMXResponse().TriggerErrorNotification(p.Error))
		return
	}
	view = view.AfterDelete(totalBefore)

	listURL := transactionsURL(view)
	if !isHTMX(r) {
		redirect(w, r, withNotice(listURL, "tx-deleted"))
		return
	}
	p := s.transactionsView(r, view, newTxForm(core.Today(s.now())))
	p.Notice = noticeMessages["tx-deleted"]
	s.render(w, r, http.StatusOK, "transactions", p, NewHTMXResponse().
		TriggerRecordDeleted("transaction", id).
		TriggerSuccessNotification(p.Notice).
		PushURL(listURL))
}

func transactionsURL(view core.ListView) string {
	if q := ListViewQuery(view).Encode(); q != "" {
		return "/transactions?" + q
	}
	return "/transactions"
}
