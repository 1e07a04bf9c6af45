// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// list view state from the query string, entity forms, and request bodies
// that may arrive either form-encoded or as JSON.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"mywallet/internal/core"
)

// Query keys of the transaction table.
const (
	qFrom     = "from"
	qTo       = "to"
	qCategory = "category"
	qAccount  = "account"
	qPerson   = "person"
	qDebit    = "debit"
	qCredit   = "credit"
	qRemarks  = "remarks"
	qPage     = "page"
	qSize     = "size"
)

// ParseListView rebuilds the table state from the query string. The filter
// and size are applied first, so a request without "page" lands on page 0.
// Sizes other than the offered ones fall back to the default.
func ParseListView(q url.Values) core.ListView {
	spec := core.FilterSpec{
		FromDate:   strings.TrimSpace(q.Get(qFrom)),
		ToDate:     strings.TrimSpace(q.Get(qTo)),
		CategoryID: parseOptionalID(q.Get(qCategory)),
		AccountID:  parseOptionalID(q.Get(qAccount)),
		PersonID:   parseOptionalID(q.Get(qPerson)),
		HasDebit:   core.ParseTriState(q.Get(qDebit)),
		HasCredit:  core.ParseTriState(q.Get(qCredit)),
		Remarks:    strings.TrimSpace(sanitizeInput(q.Get(qRemarks))),
	}
	view := core.NewListView().WithFilter(spec)

	if size, err := strconv.Atoi(q.Get(qSize)); err == nil && slices.Contains(core.PageSizes, size) {
		view = view.WithPageSize(size)
	}
	if page, err := strconv.Atoi(q.Get(qPage)); err == nil {
		view = view.WithPage(page)
	}
	return view
}

// FilterQuery encodes the filter part of a view, omitting unconstrained
// fields.
func FilterQuery(spec core.FilterSpec) url.Values {
	q := url.Values{}
	setIf := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	setIf(qFrom, spec.FromDate)
	setIf(qTo, spec.ToDate)
	setIf(qCategory, formatID(spec.CategoryID))
	setIf(qAccount, formatID(spec.AccountID))
	setIf(qPerson, formatID(spec.PersonID))
	setIf(qDebit, spec.HasDebit.String())
	setIf(qCredit, spec.HasCredit.String())
	setIf(qRemarks, spec.Remarks)
	return q
}

// ListViewQuery encodes the whole view, page and size included.
func ListViewQuery(v core.ListView) url.Values {
	q := FilterQuery(v.Spec)
	if v.Size != core.DefaultPageSize {
		q.Set(qSize, strconv.Itoa(v.Size))
	}
	if v.Page > 0 {
		q.Set(qPage, strconv.Itoa(v.Page))
	}
	return q
}

// ParseTransactionForm reads a transaction out of a submitted form. Field
// level problems (an amount that is not a number, an id that is not an
// integer) are reported here; the business rules are left to
// core.ValidateForSubmit.
func ParseTransactionForm(form valueGetter) (core.Transaction, error) {
	tx := core.Transaction{
		Date:    strings.TrimSpace(form.Get("date")),
		Remarks: sanitizeInput(form.Get("remarks")),
	}
	if d, ok := core.CanonicalDate(tx.Date); ok {
		tx.Date = d
	}

	var err error
	if tx.ID, err = parseIDField(form.Get("id"), "id"); err != nil {
		return tx, err
	}
	if tx.CategoryID, err = parseIDField(form.Get("categoryId"), "categoryId"); err != nil {
		return tx, err
	}
	if tx.AccountID, err = parseIDField(form.Get("accountId"), "accountId"); err != nil {
		return tx, err
	}
	if tx.PersonID, err = parseIDField(form.Get("personId"), "personId"); err != nil {
		return tx, err
	}

	debit, err := core.ParseAmount(form.Get("debit"))
	if err != nil {
		return tx, &core.ValidationError{Kind: core.InvalidValue, Field: "debit", Message: "Debit must be a non-negative number"}
	}
	credit, err := core.ParseAmount(form.Get("credit"))
	if err != nil {
		return tx, &core.ValidationError{Kind: core.InvalidValue, Field: "credit", Message: "Credit must be a non-negative number"}
	}
	tx.Debit, tx.Credit = debit, credit
	return tx, nil
}

func parseAccountForm(form url.Values) (core.Account, error) {
	a := core.Account{
		Name:     sanitizeInput(form.Get("name")),
		Currency: strings.ToUpper(sanitizeInput(form.Get("currency"))),
		Remarks:  sanitizeInput(form.Get("remarks")),
	}
	var err error
	if a.ID, err = parseIDField(form.Get("id"), "id"); err != nil {
		return a, err
	}
	opening, err := core.ParseAmount(form.Get("openingBalance"))
	if err != nil {
		return a, &core.ValidationError{Kind: core.InvalidValue, Field: "openingBalance", Message: "Opening balance must be a non-negative number"}
	}
	if opening.Valid {
		a.OpeningBalance = opening.Decimal
	}
	return a, nil
}

func parseCategoryForm(form url.Values) (core.Category, error) {
	c := core.Category{
		Name:    sanitizeInput(form.Get("name")),
		Remarks: sanitizeInput(form.Get("remarks")),
	}
	// An unknown type is left empty for Category.Validate to reject.
	c.Type, _ = core.ParseCategoryType(form.Get("type"))
	var err error
	c.ID, err = parseIDField(form.Get("id"), "id")
	return c, err
}

func parsePersonForm(form url.Values) (core.Person, error) {
	p := core.Person{
		Name:      sanitizeInput(form.Get("name")),
		ContactNo: sanitizeInput(form.Get("contactNo")),
		Email:     sanitizeInput(form.Get("email")),
		Remarks:   sanitizeInput(form.Get("remarks")),
	}
	var err error
	p.ID, err = parseIDField(form.Get("id"), "id")
	return p, err
}

func parseIDField(s, field string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, &core.ValidationError{Kind: core.InvalidValue, Field: field, Message: "Invalid selection"}
	}
	return id, nil
}

// parseOptionalID treats anything unparseable as "no constraint".
func parseOptionalID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

type valueGetter interface {
	Get(key string) string
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		data, err := decodeJSONObject(p.body)
		if err != nil {
			p.err = err
			return err
		}
		p.jsonData = data
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// decodeJSONObject keeps numbers as json.Number so amounts and ids reach
// their parsers with every digit the client sent.
func decodeJSONObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	data := make(map[string]any)
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return data, nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
