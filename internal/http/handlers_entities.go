package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mywallet/internal/core"
	applog "mywallet/internal/log"
)

// entityStore is the part of services.EntityService the screens use.
type entityStore[E any] interface {
	List(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id int64) (E, error)
	Save(ctx context.Context, e E) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// entityRoutes serves one reference-data screen: a table plus a form that
// creates or edits a single record.
type entityRoutes[E any] struct {
	s     *Server
	kind  string // log and trigger name, e.g. "account"
	title string
	path  string
	page  string
	store entityStore[E]
	parse func(url.Values) (E, error)
	id    func(E) int64
	blank func() E
	types []core.CategoryType
}

func (s *Server) accountRoutes() *entityRoutes[core.Account] {
	return &entityRoutes[core.Account]{
		s: s, kind: "account", title: "Accounts", path: "/accounts", page: "accounts",
		store: s.svc.Accounts,
		parse: parseAccountForm,
		id:    func(a core.Account) int64 { return a.ID },
		blank: func() core.Account { return core.Account{Currency: "EUR"} },
	}
}

func (s *Server) categoryRoutes() *entityRoutes[core.Category] {
	return &entityRoutes[core.Category]{
		s: s, kind: "category", title: "Categories", path: "/categories", page: "categories",
		store: s.svc.Categories,
		parse: parseCategoryForm,
		id:    func(c core.Category) int64 { return c.ID },
		blank: func() core.Category { return core.Category{Type: core.Expense} },
		types: []core.CategoryType{core.Income, core.Expense},
	}
}

func (s *Server) personRoutes() *entityRoutes[core.Person] {
	return &entityRoutes[core.Person]{
		s: s, kind: "person", title: "Persons", path: "/persons", page: "persons",
		store: s.svc.Persons,
		parse: parsePersonForm,
		id:    func(p core.Person) int64 { return p.ID },
		blank: func() core.Person { return core.Person{} },
	}
}

func (h *entityRoutes[E]) mount(r chi.Router) {
	r.Route(h.path, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.save)
		r.Get("/{id}/edit", h.edit)
		r.Post("/{id}/delete", h.delete)
	})
}

// view loads the table; a failed load is shown in place of the rows.
func (h *entityRoutes[E]) view(r *http.Request, form E) entityPage[E] {
	p := entityPage[E]{
		pageData: h.s.newPage(r, h.title, h.page),
		Kind:     h.kind,
		Path:     h.path,
		Form:     form,
		Editing:  h.id(form) != 0,
		Types:    h.types,
	}
	rows, err := h.store.List(r.Context())
	if err != nil {
		h.s.logFailure(r.Context(), applog.OpList, err)
		p.ListError = errorMessage(err)
	}
	p.Rows = rows
	return p
}

func (h *entityRoutes[E]) list(w http.ResponseWriter, r *http.Request) {
	h.s.render(w, r, http.StatusOK, h.page, h.view(r, h.blank()), nil)
}

func (h *entityRoutes[E]) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.s.pathID(w, r)
	if !ok {
		return
	}
	e, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.s.fail(w, r, applog.OpRead, err)
		return
	}
	h.s.render(w, r, http.StatusOK, h.page, h.view(r, e), nil)
}

func (h *entityRoutes[E]) save(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	e, err := h.parse(r.PostForm)
	created := err == nil && h.id(e) == 0
	op, notice := applog.OpUpdate, "updated"
	if created {
		op, notice = applog.OpCreate, "created"
	}
	var id int64
	if err == nil {
		id, err = h.store.Save(r.Context(), e)
	}
	if err != nil {
		h.s.logFailure(r.Context(), op, err)
		p := h.view(r, e)
		p.Field, p.FormError = errorField(err), errorMessage(err)
		h.s.render(w, r, errorStatus(err), h.page, p,
			NewHTMXResponse().TriggerErrorNotification(p.FormError))
		return
	}

	h.s.structured.LogRecordWritten(r.Context(), op, h.kind, id)

	if !isHTMX(r) {
		redirect(w, r, withNotice(h.path, notice))
		return
	}
	p := h.view(r, h.blank())
	p.Notice = noticeMessages[notice]
	h.s.render(w, r, http.StatusOK, h.page, p, NewHTMXResponse().
		TriggerRecordSaved(h.kind, id, created).
		TriggerFormReset().
		TriggerSuccessNotification(p.Notice).
		PushURL(h.path))
}

func (h *entityRoutes[E]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.s.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.s.logFailure(r.Context(), applog.OpDelete, err)
		p := h.view(r, h.blank())
		p.Error = errorMessage(err)
		h.s.render(w, r, errorStatus(err), h.page, p,
			NewHTMXResponse().TriggerErrorNotification(p.Error))
		return
	}
	h.s.structured.LogRecordWritten(r.Context(), applog.OpDelete, h.kind, id)

	if !isHTMX(r) {
		redirect(w, r, withNotice(h.path, "deleted"))
		return
	}
	p := h.view(r, h.blank())
	p.Notice = noticeMessages["deleted"]
	h.s.render(w, r, http.StatusOK, h.page, p, NewHTMXResponse().
		TriggerRecordDeleted(h.kind, id).
		TriggerSuccessNotification(p.Notice).
		PushURL(h.path))
}

// pathID reads the {id} route parameter, answering 404 when it is not a
// positive integer.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.renderError(w, r, http.StatusNotFound, "Record not found")
		return 0, false
	}
	return id, true
}
