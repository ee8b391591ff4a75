package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/storage"
)

type sheetView struct {
	ID       string    `json:"id"`
	Product  string    `json:"product"`
	Currency string    `json:"currency"`
	Rows     []rowView `json:"rows"`
	Total    float64   `json:"total"`
}

type rowView struct {
	ID         int         `json:"id"`
	Label      string      `json:"label"`
	Role       string      `json:"role"`
	Percentage pricing.Num `json:"percentage"`
	Value      pricing.Num `json:"value"`
	Base       float64     `json:"base"`
}

type openBreakdownRequest struct {
	ProductID int64 `json:"product_id"`
}

type editRequest struct {
	Raw    string `json:"raw"`
	Commit bool   `json:"commit"`
}

type renameRequest struct {
	Label string `json:"label"`
}

type calculateRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type calculateResponse struct {
	QuoteID int64   `json:"quote_id"`
	Total   float64 `json:"total"`
}

func newSheetView(e *breakdownEntry) sheetView {
	rows := e.sheet.Rows()
	view := sheetView{
		ID:       e.id,
		Product:  e.product.Name,
		Currency: e.currency,
		Rows:     make([]rowView, 0, len(rows)),
		Total:    e.sheet.Total(),
	}
	for _, row := range rows {
		base, _ := e.sheet.Base(row.ID)
		view.Rows = append(view.Rows, rowView{
			ID:         row.ID,
			Label:      row.Label,
			Role:       row.Role().String(),
			Percentage: row.Percentage,
			Value:      row.Value,
			Base:       base,
		})
	}
	return view
}

func (s *server) handleBreakdownOpen(w http.ResponseWriter, r *http.Request) {
	var req openBreakdownRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, ok, err := s.products.Get(r.Context(), req.ProductID)
	if err != nil {
		log.Printf("open breakdown: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, storage.ErrProductNotFound.Error())
		return
	}

	defaults, err := s.defaults.Get(r.Context())
	if err != nil {
		log.Printf("open breakdown: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load pricing defaults")
		return
	}

	e := s.breakdowns.open(product, defaults)
	e.mu.Lock()
	defer e.mu.Unlock()
	writeJSON(w, http.StatusCreated, newSheetView(e))
}

func (s *server) handleBreakdownGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()
	writeJSON(w, http.StatusOK, newSheetView(e))
}

func (s *server) handleBreakdownDiscard(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	e.closed = true
	s.breakdowns.close(e.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleBreakdownInsertRow(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	e.session.InsertRow()
	writeJSON(w, http.StatusCreated, newSheetView(e))
}

func (s *server) handleBreakdownRemoveRow(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	row, ok := lookupRow(w, r, e)
	if !ok {
		return
	}
	if row.Role() == pricing.RoleCost {
		writeJSONError(w, http.StatusConflict, "cost row cannot be removed")
		return
	}

	e.session.RemoveRow(row.ID)
	writeJSON(w, http.StatusOK, newSheetView(e))
}

func (s *server) handleBreakdownEditPercentage(w http.ResponseWriter, r *http.Request) {
	s.handleBreakdownEdit(w, r, (*pricing.Session).EditPercentage, (*pricing.Session).CommitPercentage)
}

func (s *server) handleBreakdownEditValue(w http.ResponseWriter, r *http.Request) {
	s.handleBreakdownEdit(w, r, (*pricing.Session).EditValue, (*pricing.Session).CommitValue)
}

type sessionEdit func(*pricing.Session, int, string)

// handleBreakdownEdit applies a live edit, or the commit variant when the
// client reports the field lost focus.
func (s *server) handleBreakdownEdit(w http.ResponseWriter, r *http.Request, edit, commit sessionEdit) {
	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	row, ok := lookupRow(w, r, e)
	if !ok {
		return
	}

	if req.Commit {
		commit(e.session, row.ID, req.Raw)
	} else {
		edit(e.session, row.ID, req.Raw)
	}
	writeJSON(w, http.StatusOK, newSheetView(e))
}

func (s *server) handleBreakdownRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	row, ok := lookupRow(w, r, e)
	if !ok {
		return
	}

	if err := e.session.Rename(row.ID, req.Label); err != nil {
		switch {
		case errors.Is(err, pricing.ErrRowNotFound):
			writeJSONError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, pricing.ErrCostLocked), errors.Is(err, pricing.ErrRoleTaken):
			writeJSONError(w, http.StatusConflict, err.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, newSheetView(e))
}

// handleBreakdownCalculate confirms the sheet, stores it as a quote and closes
// the dialog.
func (s *server) handleBreakdownCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, ok := s.lookupBreakdown(w, r)
	if !ok {
		return
	}
	defer e.mu.Unlock()

	calc, err := e.session.Calculate()
	if errors.Is(err, pricing.ErrNoValidRows) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = e.product.Name
	}
	quoteID, err := s.quotes.Create(r.Context(), storage.NewQuote{
		ProductID:   e.product.ID,
		Title:       title,
		Notes:       strings.TrimSpace(req.Notes),
		Currency:    e.currency,
		Calculation: calc,
	})
	if err != nil {
		log.Printf("store quote for breakdown %s: %v", e.id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store quote")
		return
	}

	e.closed = true
	s.breakdowns.close(e.id)
	log.Printf("breakdown %s stored as quote %d (total %s %s)", e.id, quoteID, pricing.FormatFixed2(calc.Total), e.currency)
	writeJSON(w, http.StatusCreated, calculateResponse{QuoteID: quoteID, Total: calc.Total})
}

// lookupBreakdown resolves {sid} and returns the entry with e.mu held. An
// entry closed while the request waited for the lock is reported as missing.
func (s *server) lookupBreakdown(w http.ResponseWriter, r *http.Request) (*breakdownEntry, bool) {
	e, ok := s.breakdowns.get(chi.URLParam(r, "sid"))
	if !ok || !e.lock() {
		writeJSONError(w, http.StatusNotFound, "breakdown not found")
		return nil, false
	}
	return e, true
}

// lookupRow resolves {rowID}. Callers must hold e.mu.
func lookupRow(w http.ResponseWriter, r *http.Request, e *breakdownEntry) (pricing.Row, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "rowID"))
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid row id")
		return pricing.Row{}, false
	}
	row, ok := e.sheet.Row(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, pricing.ErrRowNotFound.Error())
		return pricing.Row{}, false
	}
	return row, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("encode json response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
