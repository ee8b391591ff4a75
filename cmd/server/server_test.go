package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Simplici0/preciario/internal/db"
	"github.com/Simplici0/preciario/internal/migrations"
	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/seed"
	"github.com/Simplici0/preciario/internal/storage"
)

const (
	testAdminEmail    = "admin@preciario.bo"
	testAdminPassword = "secreto"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(ctx, database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    testAdminEmail,
		AdminPassword: testAdminPassword,
		Defaults:      pricing.DefaultPercentages(),
		Currency:      "Bs",
	}); err != nil {
		t.Fatalf("seed database: %v", err)
	}

	srv, err := newServer(database, "test-secret")
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return srv
}

func sessionCookie(t *testing.T, srv *server) *http.Cookie {
	t.Helper()

	rr := httptest.NewRecorder()
	srv.auth.setSessionCookie(rr, testAdminEmail)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func createProduct(t *testing.T, srv *server, name string, cost float64) int64 {
	t.Helper()

	id, err := srv.products.Create(context.Background(), storage.Product{Name: name, Cost: cost, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return id
}

func doJSON(t *testing.T, srv *server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, srv))

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func doForm(t *testing.T, srv *server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessionCookie(t, srv))

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func doGet(t *testing.T, srv *server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(sessionCookie(t, srv))

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func TestHomeListsActiveProducts(t *testing.T) {
	srv := newTestServer(t)
	createProduct(t, srv, "Mesa de roble", 100)

	rr := doGet(t, srv, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, expected := range []string{"Mesa de roble", "100.00 Bs", "data-open-breakdown"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestStaticAssetsAreServedWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/static/breakdown.js", nil)
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/api/breakdowns") {
		t.Fatalf("unexpected static body")
	}
}
