package http

import (
	"net/http"

	applog "mywallet/internal/log"
)

// handleHome shows the navigation tiles and both dashboards. A failing half
// of the totals only blanks its own table.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	totals := s.svc.Totals.Load(r.Context())

	p := homePage{
		pageData: s.newPage(r, "Overview", "home"),
		Tiles:    homeTiles,
		Totals:   totals,
	}
	if totals.AccountsErr != nil {
		p.AccountsError = errorMessage(totals.AccountsErr)
		s.logFailure(r.Context(), applog.OpList, totals.AccountsErr)
	}
	if totals.CategoriesErr != nil {
		p.CategoriesError = errorMessage(totals.CategoriesErr)
		s.logFailure(r.Context(), applog.OpList, totals.CategoriesErr)
	}
	s.render(w, r, http.StatusOK, "home", p, nil)
}
