package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/storage"
)

type quotesViewData struct {
	baseViewData
	Query  string
	Quotes []storage.QuoteSummary
}

type quoteDetailViewData struct {
	baseViewData
	Quote storage.QuoteDetail
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.quotes.List(r.Context(), query)
	if err != nil {
		http.Error(w, "failed to load quotes", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "quotes.html", quotesViewData{
		Query:  query,
		Quotes: quotes,
	})
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	s.renderTemplate(w, http.StatusOK, "quote_detail.html", quoteDetailViewData{Quote: detail})
}

// handleQuoteText renders the stored quote as plain text, ready to paste into
// a message.
func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(formatQuoteText(detail)))
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (storage.QuoteDetail, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return storage.QuoteDetail{}, false
	}

	detail, err := s.quotes.Get(r.Context(), id)
	if errors.Is(err, storage.ErrQuoteNotFound) {
		http.NotFound(w, r)
		return storage.QuoteDetail{}, false
	}
	if err != nil {
		http.Error(w, "failed to load quote", http.StatusInternalServerError)
		return storage.QuoteDetail{}, false
	}
	return detail, true
}

func formatQuoteText(q storage.QuoteDetail) string {
	var b strings.Builder

	title := q.Title
	if title == "" {
		title = fmt.Sprintf("Cotización #%d", q.ID)
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Fecha: %s\n", q.CreatedAt)
	if q.ProductName != "" {
		fmt.Fprintf(&b, "Producto: %s\n", q.ProductName)
	}

	b.WriteString("\nDesglose:\n")
	for _, row := range q.Rows {
		if row.Role == pricing.RoleCost.String() {
			fmt.Fprintf(&b, "- %s: %s %s\n", row.Label, row.Value.StringFixed(2), q.Currency)
			continue
		}
		fmt.Fprintf(&b, "- %s (%s%%): %s %s\n", row.Label, row.Percentage.StringFixed(2), row.Value.StringFixed(2), q.Currency)
	}

	fmt.Fprintf(&b, "\nTotal: %s %s\n", q.Total.StringFixed(2), q.Currency)
	if q.Notes != "" {
		fmt.Fprintf(&b, "\nNotas: %s\n", q.Notes)
	}
	return b.String()
}
