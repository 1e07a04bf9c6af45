package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mywallet/internal/cache"
	"mywallet/internal/gateway"
	applog "mywallet/internal/log"
	"mywallet/internal/middleware/ratelimit"
	"mywallet/internal/middleware/security"
	"mywallet/internal/middleware/trace"
	"mywallet/internal/services"
	appweb "mywallet/web"
)

// Pages rendered from the embedded templates. Each is parsed together with
// the shared layout and partials.
var pages = []string{"home", "accounts", "categories", "persons", "transactions", "error"}

// Deps is everything the web client is built from.
type Deps struct {
	Services *services.Services
	// Pinger backs /readyz; nil reports the backend as not checked.
	Pinger         gateway.Pinger
	Caches         *cache.Manager
	Logger         *applog.Logger
	AllowedOrigins []string
	RateLimit      ratelimit.Config
	Now            func() time.Time
}

type Server struct {
	http.Server
	svc        *services.Services
	pinger     gateway.Pinger
	caches     *cache.Manager
	logger     *applog.Logger
	structured *applog.StructuredLogger
	templates  map[string]*template.Template

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	now     func() time.Time
	started time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Services == nil {
		return nil, fmt.Errorf("http server: services are required")
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RateLimit.RequestsPerSecond <= 0 {
		deps.RateLimit = ratelimit.DefaultConfig()
	}
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:        deps.Services,
		pinger:     deps.Pinger,
		caches:     deps.Caches,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		templates:  templates,
		detector:   security.NewDetector(),
		limiter:    ratelimit.NewLimiter(deps.RateLimit),
		now:        deps.Now,
		started:    deps.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, deps.Logger.WithComponent(applog.ComponentTrace))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(deps.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(appweb.TemplatesFS,
			"templates/layout.html", "templates/partials.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(applog.Middleware(s.logger))
	r.Use(s.tracer.Middleware)
	r.Use(applog.RequestIDMiddleware(trace.FromRequest))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.WritesOnly, s.onRateLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError("GET, POST").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/", s.handleHome)

	s.accountRoutes().mount(r)
	s.categoryRoutes().mount(r)
	s.personRoutes().mount(r)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleTransactions)
		r.Post("/", s.handleSaveTransaction)
		r.Get("/{id}/edit", s.handleEditTransaction)
		r.Get("/{id}/copy", s.handleCopyTransaction)
		r.Post("/{id}/delete", s.handleDeleteTransaction)
	})

	r.Route("/ui", func(r chi.Router) {
		r.Get("/amount", s.handleAmount)
		r.Post("/nav", s.handleNavToggle)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", trace.HeaderRequestID},
			ExposedHeaders: []string{trace.HeaderRequestID},
			MaxAge:         300,
		}))
		r.Get("/transactions", s.handleAPIListTransactions)
		r.Post("/transactions", s.handleAPISaveTransaction)
		r.Get("/transactions/{id}", s.handleAPIGetTransaction)
		r.Delete("/transactions/{id}", s.handleAPIDeleteTransaction)
		r.Get("/totals", s.handleAPITotals)
	})

	return r
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		TriggerErrorNotification("Too many requests, slow down").
		Write(w)
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response. htmx requests get only the content block.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any, b *HTMXResponseBuilder) {
	t, ok := s.templates[page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Unknown template", "page", page)
		InternalServerError("Internal server error").Write(w)
		return
	}
	name := "layout"
	if isHTMX(r) {
		name = "content"
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template render failed", err, applog.ErrorTypeInternal, applog.OpRender,
			applog.NewFields().With("page", page))
		InternalServerError("Internal server error").Write(w)
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.Status(status).BodyHTML(buf.String()).Write(w)
}

// renderPartial executes a single named template from the page's set.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, page, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Partial render failed", err, applog.ErrorTypeInternal, applog.OpRender,
			applog.NewFields().With("partial", name))
		InternalServerError("Internal server error").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

type errorPage struct {
	pageData
	Status int
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p := errorPage{pageData: s.newPage(r, "Error", ""), Status: status}
	p.Error = msg
	s.render(w, r, status, "error", p, NewHTMXResponse().TriggerErrorNotification(msg))
}

// fail logs a service error and renders it as a page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logFailure(r.Context(), op, err)
	s.renderError(w, r, errorStatus(err), errorMessage(err))
}

func (s *Server) logFailure(ctx context.Context, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusUnprocessableEntity || status == http.StatusNotFound {
		s.logger.WarnContext(ctx, "Request rejected",
			applog.NewFields().WithOperation(op).WithError(err).With(applog.FieldErrorType, errorType(err))...)
		return
	}
	s.structured.LogError(ctx, "Request failed", err, errorType(err), op, nil)
}

// redirect finishes a non-htmx form post.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func withNotice(path, notice string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "notice=" + notice
}

// Shutdown stops the background cleanups and then the HTTP server. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
