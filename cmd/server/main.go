package main

import (
	"bytes"
	"context"
	"database/sql"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/preciario/internal/config"
	"github.com/Simplici0/preciario/internal/db"
	"github.com/Simplici0/preciario/internal/migrations"
	"github.com/Simplici0/preciario/internal/seed"
	"github.com/Simplici0/preciario/internal/storage"
	"github.com/Simplici0/preciario/web"
)

const breakdownSweepInterval = 10 * time.Minute

type server struct {
	auth       *authService
	db         *sql.DB
	products   *storage.ProductRepo
	defaults   *storage.DefaultsRepo
	quotes     *storage.QuoteRepo
	breakdowns *breakdownRegistry
	static     fs.FS
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database, cfg.MigrationsDir); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		log.Fatalf("failed to read schema version: %v", err)
	}
	log.Printf("database schema at version %d", version)

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Defaults:      cfg.Defaults,
		Currency:      cfg.Currency,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed inserted %d records", stats.Inserts)
	}

	srv, err := newServer(database, cfg.SessionSecret)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}
	go srv.sweepBreakdowns(ctx, breakdownSweepInterval)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newServer(database *sql.DB, sessionSecret string) (*server, error) {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}

	return &server{
		auth:       newAuthService(database, sessionSecret),
		db:         database,
		products:   storage.NewProductRepo(database),
		defaults:   storage.NewDefaultsRepo(database),
		quotes:     storage.NewQuoteRepo(database),
		breakdowns: newBreakdownRegistry(breakdownIdleTTL),
		static:     static,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)
	r.Get("/admin/defaults", s.handleAdminDefaultsForm)
	r.Post("/admin/defaults", s.handleAdminDefaultsSubmit)
	r.Get("/admin/products", s.handleAdminProductsForm)
	r.Post("/admin/products", s.handleAdminProductsCreate)
	r.Post("/admin/products/{id}", s.handleAdminProductsUpdate)
	r.Get("/quotes", s.handleQuotesList)
	r.Get("/quotes/{id}", s.handleQuoteDetail)
	r.Get("/quotes/{id}/text", s.handleQuoteText)

	r.Route("/api/breakdowns", func(r chi.Router) {
		r.Post("/", s.handleBreakdownOpen)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.handleBreakdownGet)
			r.Delete("/", s.handleBreakdownDiscard)
			r.Post("/rows", s.handleBreakdownInsertRow)
			r.Delete("/rows/{rowID}", s.handleBreakdownRemoveRow)
			r.Post("/rows/{rowID}/percentage", s.handleBreakdownEditPercentage)
			r.Post("/rows/{rowID}/value", s.handleBreakdownEditValue)
			r.Post("/rows/{rowID}/label", s.handleBreakdownRename)
			r.Post("/calculate", s.handleBreakdownCalculate)
		})
	})

	return r
}

type homeViewData struct {
	baseViewData
	Currency string
	Products []storage.Product
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		http.Error(w, "failed to load products", http.StatusInternalServerError)
		return
	}
	defaults, err := s.defaults.Get(r.Context())
	if err != nil {
		http.Error(w, "failed to load pricing defaults", http.StatusInternalServerError)
		return
	}

	active := make([]storage.Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}

	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{Currency: defaults.Currency, Products: active})
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, http.StatusOK, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		log.Printf("login failed for %s: %v", email, err)
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.renderTemplate(w, http.StatusUnauthorized, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Credenciales inválidas. Intenta de nuevo."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.ParseFS(web.Templates,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("render %s: %v", page, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *server) sweepBreakdowns(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.breakdowns.sweep(); n > 0 {
				log.Printf("discarded %d idle breakdown sessions", n)
			}
		}
	}
}
