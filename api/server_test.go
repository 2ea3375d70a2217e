package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *Server {
	return New(DefaultConfig(), logging.Discard(), nil)
}

func TestNew(t *testing.T) {
	server := newServer()

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
	if server.rules == nil {
		t.Fatal("Expected an empty rule source")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("Expected 32MB upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestExtractEndpoint_MethodNotAllowed(t *testing.T) {
	server := newServer()

	req := httptest.NewRequest(http.MethodGet, "/extract", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestExtractEndpoint_NoFile(t *testing.T) {
	server := newServer()

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestExtractEndpoint_InvalidFile(t *testing.T) {
	server := newServer()

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, uploadRequest(t, "test.pdf", "not a valid pdf"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response["error"], "test.pdf")
}

func TestExtractEndpoint_TextOnlyInvalidFile(t *testing.T) {
	server := newServer()

	req := uploadRequest(t, "test.pdf", "mock content")
	req.URL.RawQuery = "text_only=true"
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseExtractOptions_FormValues(t *testing.T) {
	server := newServer()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("statement_only", "true")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ParseMultipartForm(32 << 20)

	opts := server.parseExtractOptions(req)

	if !opts.StatementOnly {
		t.Error("Expected StatementOnly to be true")
	}
	if opts.TransactionOnly || opts.TextOnly {
		t.Error("Expected other options to stay false")
	}
}

func TestParseExtractOptions_QueryParams(t *testing.T) {
	server := newServer()

	req := httptest.NewRequest(http.MethodPost, "/extract?transaction_only=true&text_only=true", nil)

	opts := server.parseExtractOptions(req)

	if !opts.TransactionOnly {
		t.Error("Expected TransactionOnly to be true")
	}
	if !opts.TextOnly {
		t.Error("Expected TextOnly to be true")
	}
}

func TestParseExtractOptions_DefaultTextOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTextOnly = true
	server := New(cfg, logging.Discard(), nil)

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	assert.True(t, server.parseExtractOptions(req).TextOnly)
}

func TestHandler(t *testing.T) {
	server := newServer()
	handler := server.Handler()

	if handler == nil {
		t.Fatal("Expected handler to be returned")
	}

	if handler != server.mux {
		t.Error("Expected handler to be the server's mux")
	}
}

func postJSON(t *testing.T, server *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestCategorizeEndpoint(t *testing.T) {
	rules := StaticRules{{Pattern: "ACME", CategoryName: "Professional Services", CategoryType: categorizer.BusinessExpense, Priority: 5, IsActive: true}}
	server := New(DefaultConfig(), logging.Discard(), rules)

	w := postJSON(t, server, "/categorize", `{"descriptions": ["ACME CONSULTING", "NETFLIX.COM", "IB TRANSFER TO 0123", "TAKEALOT.COM", "ZZZ"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []categorized
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 5)

	assert.Equal(t, "Professional Services", got[0].Category)
	assert.Equal(t, 1.0, got[0].Confidence)
	assert.Equal(t, "Entertainment (Personal)", got[1].Category)
	assert.True(t, got[2].InterAccount)
	assert.True(t, got[3].NeedsSplit)
	assert.Empty(t, got[4].Category)
	assert.Equal(t, 0.0, got[4].Confidence)
}

type failingRules struct{}

func (failingRules) ActiveRules(context.Context) ([]categorizer.Rule, error) {
	return nil, errors.New("database is down")
}

func TestCategorizeEndpoint_RuleSourceFails(t *testing.T) {
	server := New(DefaultConfig(), logging.Discard(), failingRules{})

	w := postJSON(t, server, "/categorize", `{"descriptions": ["X"]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCategorizeEndpoint_BadRequests(t *testing.T) {
	server := newServer()

	assert.Equal(t, http.StatusBadRequest, postJSON(t, server, "/categorize", `{"descriptions": `).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, server, "/categorize", `{"unknown": true}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/categorize", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestDuplicatesEndpoint(t *testing.T) {
	server := newServer()

	body := `{
		"transactions": [
			{"id": 1, "date": "2025-03-15T00:00:00Z", "description": "WOOLWORTHS CAPE TOWN", "amount": "-99.00", "account_number": "123"},
			{"id": 2, "date": "2025-03-15T00:00:00Z", "description": "WOOLWORTHS CAPE TOWN", "amount": "-99.00", "account_number": "123"},
			{"id": 3, "date": "2025-03-15T00:00:00Z", "description": "WOOLWORTHS", "amount": "-99.00"},
			{"id": 4, "date": "2025-03-16T00:00:00Z", "description": "WOOLWORTHS CAPE TOWN", "amount": "-99.00", "account_number": "123"}
		],
		"dismissed": [{"a": 3, "b": 1}]
	}`
	w := postJSON(t, server, "/duplicates", body)
	require.Equal(t, http.StatusOK, w.Code)

	var got duplicatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))

	require.Len(t, got.Candidates, 2)
	require.Len(t, got.Accepted, 1)
	assert.Equal(t, int64(1), got.Accepted[0].Original.ID)
	assert.Equal(t, int64(2), got.Accepted[0].Duplicate.ID)
	require.Len(t, got.Review, 0)
}

func TestDuplicatesEndpoint_Empty(t *testing.T) {
	server := newServer()

	w := postJSON(t, server, "/duplicates", `{"transactions": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"candidates": [], "accepted": [], "review": []}`, w.Body.String())
}

func TestTaxEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OfficeSqm = 22
	cfg.HouseSqm = 268
	server := New(cfg, logging.Discard(), nil)

	body := `{
		"period_start": "2025-03-01",
		"period_end": "2025-08-31",
		"age": 40,
		"tax_year": 2025,
		"entries": [
			{"date": "2025-03-05T00:00:00Z", "description": "CLIENT", "amount": "100000", "category": "Income", "category_type": "income", "vat_claimable": false},
			{"date": "2025-03-20T00:00:00Z", "description": "IB TRANSFER FROM SAVINGS", "amount": "50000", "category": "Income", "category_type": "income", "vat_claimable": false},
			{"date": "2025-04-03T00:00:00Z", "description": "BOND INTEREST", "amount": "-2680", "category": "Interest (Mortgage)", "category_type": "business_expense", "vat_claimable": false},
			{"date": "2025-09-03T00:00:00Z", "description": "OUTSIDE", "amount": "5000", "category": "Income", "category_type": "income", "vat_claimable": false}
		]
	}`
	w := postJSON(t, server, "/tax", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, float64(2025), got["tax_year"])
	assert.Equal(t, float64(5), got["period_months"])
	assert.Equal(t, "100000", got["period_income"], "own-account transfers are not income")
	assert.Equal(t, "220", got["period_expenses"])

	homeOffice := got["home_office"].(map[string]interface{})
	assert.Equal(t, "8.2", homeOffice["percentage"])
}

func TestTaxEndpoint_BadPeriod(t *testing.T) {
	server := newServer()

	w := postJSON(t, server, "/tax", `{"period_start": "2025-08-31", "period_end": "2025-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, server, "/tax", `{"period_start": "01/03/2025", "period_end": "2025-08-31"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
