package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/storage"
)

type defaultsViewData struct {
	baseViewData
	Defaults storage.PricingDefaults
}

type productsViewData struct {
	baseViewData
	Products []storage.Product
}

func (s *server) handleAdminDefaultsForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.defaults.Get(r.Context())
	if err != nil {
		http.Error(w, "failed to load pricing defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_defaults.html", defaultsViewData{Defaults: defaults})
}

func (s *server) handleAdminDefaultsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	defaults, validationErr := parseDefaultsForm(r)
	if validationErr != nil {
		s.renderTemplate(w, http.StatusBadRequest, "admin_defaults.html", defaultsViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Defaults:     defaults,
		})
		return
	}

	if err := s.defaults.Update(r.Context(), defaults); err != nil {
		http.Error(w, "failed to save pricing defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_defaults.html", defaultsViewData{
		baseViewData: baseViewData{SuccessMessage: "Porcentajes guardados correctamente."},
		Defaults:     defaults,
	})
}

func (s *server) handleAdminProductsForm(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		http.Error(w, "failed to load products", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_products.html", productsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Products: products,
	})
}

func (s *server) handleAdminProductsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	product, err := parseProductForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/products?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	product.Active = true

	if _, err := s.products.Create(r.Context(), product); err != nil {
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/products?success=Producto+creado+correctamente", http.StatusSeeOther)
}

func (s *server) handleAdminProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	product, err := parseProductForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/products?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	product.ID = id
	product.Active = r.FormValue("active") == "1"

	if err := s.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/products?success=Producto+actualizado+correctamente", http.StatusSeeOther)
}

func parseDefaultsForm(r *http.Request) (storage.PricingDefaults, error) {
	d := storage.PricingDefaults{Currency: strings.TrimSpace(r.FormValue("currency"))}

	var err error
	if d.Defaults.ProfitPercent, err = parsePercent(r.FormValue("profit_percent"), "profit_percent"); err != nil {
		return d, err
	}
	if d.Defaults.InvoicePercent, err = parsePercent(r.FormValue("invoice_percent"), "invoice_percent"); err != nil {
		return d, err
	}
	if d.Defaults.CommissionPercent, err = parsePercent(r.FormValue("commission_percent"), "commission_percent"); err != nil {
		return d, err
	}
	if d.Currency == "" {
		return d, fmt.Errorf("currency es requerido")
	}

	return d, nil
}

func parseProductForm(r *http.Request) (storage.Product, error) {
	p := storage.Product{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Notes: strings.TrimSpace(r.FormValue("notes")),
	}
	if p.Name == "" {
		return p, fmt.Errorf("name es requerido")
	}

	var err error
	p.Cost, err = parseNonNegativeFloat(r.FormValue("cost"), "cost")
	if err != nil {
		return p, err
	}
	p.Cost = pricing.Round2(p.Cost)

	return p, nil
}

// parseNonNegativeFloat accepts a decimal comma the way the breakdown inputs
// do.
func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser numérico", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s debe ser mayor o igual a 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s debe estar entre 0 y 100", field)
	}
	return value, nil
}
