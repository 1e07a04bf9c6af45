package http

import (
	"net/http"
	"net/url"

	"mywallet/internal/core"
)

// handleAmount re-renders the debit/credit pair after one of them changed.
// A present amount in the edited field clears the other one; clearing a
// field leaves the other untouched.
func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	af := amountFields{Debit: q.Get("debit"), Credit: q.Get("credit")}

	debit, derr := core.ParseAmount(af.Debit)
	credit, cerr := core.ParseAmount(af.Credit)
	tx := core.Transaction{Debit: debit, Credit: credit}

	switch q.Get("field") {
	case "credit":
		if cerr != nil {
			af.Field, af.Error = "credit", "Credit must be a non-negative number"
			break
		}
		tx.SetCredit(credit)
		if credit.Valid {
			af.Debit = core.FormatAmount(tx.Debit)
		}
	default:
		if derr != nil {
			af.Field, af.Error = "debit", "Debit must be a non-negative number"
			break
		}
		tx.SetDebit(debit)
		if debit.Valid {
			af.Credit = core.FormatAmount(tx.Credit)
		}
	}
	s.renderPartial(w, r, "transactions", "amount_fields", af)
}

// handleNavToggle flips the navigation panel. The state lives in a cookie
// and only affects layout.
func (s *Server) handleNavToggle(w http.ResponseWriter, r *http.Request) {
	next := "hidden"
	if c, err := r.Cookie(navCookie); err == nil && c.Value == "hidden" {
		next = "shown"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     navCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if !isHTMX(r) {
		back := "/"
		// Only same-host referers are followed.
		if u, err := url.Parse(r.Header.Get("Referer")); err == nil && u.Path != "" && (u.Host == "" || u.Host == r.Host) {
			back = u.RequestURI()
		}
		redirect(w, r, back)
		return
	}
	s.renderPartial(w, r, "home", "nav", pageData{NavHidden: next == "hidden"})
}
