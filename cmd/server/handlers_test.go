package main

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/heliotek/offerwerk/internal/cache"
	"github.com/heliotek/offerwerk/internal/catalog"
	"github.com/heliotek/offerwerk/internal/db"
	"github.com/heliotek/offerwerk/internal/migrations"
	"github.com/heliotek/offerwerk/internal/pricing"
	"github.com/heliotek/offerwerk/internal/rates"
	"github.com/heliotek/offerwerk/internal/seed"
)

func newTestServer(t *testing.T, apiKey string) *server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "server-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database); err != nil {
		t.Fatalf("run seed: %v", err)
	}

	log := zap.NewNop()
	catalogStore := catalog.NewStore(database)
	return &server{
		log:     log,
		catalog: catalogStore,
		rates:   rates.NewStore(database),
		engine:  pricing.NewEngine(catalogStore, nil, log),
		cache:   cache.New(),
		apiKey:  apiKey,
	}
}

func within(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthzIsAlwaysOpen(t *testing.T) {
	srv := newTestServer(t, "secret")
	rec := doJSON(t, srv.routes(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestAPIKeyGuardsCalculationRoutes(t *testing.T) {
	srv := newTestServer(t, "secret")
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/v1/components", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/v1/components", "wrong", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d", rec.Code)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/v1/components", "secret", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestEmptyAPIKeyLeavesRoutesOpen(t *testing.T) {
	srv := newTestServer(t, "")
	rec := doJSON(t, srv.routes(), http.MethodGet, "/api/v1/components", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListComponentsReturnsSeededCatalog(t *testing.T) {
	srv := newTestServer(t, "")
	rec := doJSON(t, srv.routes(), http.MethodGet, "/api/v1/components", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var components []catalog.Component
	if err := json.Unmarshal(rec.Body.Bytes(), &components); err != nil {
		t.Fatalf("decode components: %v", err)
	}
	if len(components) != 10 {
		t.Fatalf("expected 10 components, got %d", len(components))
	}
}

func TestCalculatePVEndToEnd(t *testing.T) {
	srv := newTestServer(t, "")

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/v1/calculate/pv", "", map[string]any{
		"items": []map[string]any{
			{"component_id": "pv-module-430", "quantity": 20},
		},
		"vat_category": "pv_zero",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Seeded data: purchase 144 × 20 = 2880, module margin +25% = 3600.
	within(t, "net total", resp.Breakdown.NetTotal, 3600)
	within(t, "zero-rated gross total", resp.Breakdown.GrossTotal, 3600)
	if got := resp.Keys["PV_NET_TOTAL"]; got != "3.600,00 €" {
		t.Fatalf("PV_NET_TOTAL = %q", got)
	}
	if got := resp.RawKeys["PV_GROSS_TOTAL"]; got != 3600 {
		t.Fatalf("raw PV_GROSS_TOTAL = %v", got)
	}
}

func TestCalculatePVAppliesModificationStages(t *testing.T) {
	srv := newTestServer(t, "")

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/v1/calculate/heatpump", "", map[string]any{
		"items": []map[string]any{
			{"component_id": "heatpump-12kw", "quantity": 1},
		},
		"modifications": []map[string]any{
			{"kind": "discount", "mode": "fixed", "value": 100, "label": "Treuerabatt"},
			{"kind": "discount", "mode": "percentage", "value": 5, "label": "Aktionsrabatt"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// 8900 purchase + 20% heat_pump margin = 10680; percentage stage first:
	// 10680 × 0.95 = 10146, then − 100 = 10046.
	within(t, "net total", resp.Breakdown.NetTotal, 10046)
	if len(resp.Breakdown.Ledger) != 2 {
		t.Fatalf("expected 2 ledger entries, got %+v", resp.Breakdown.Ledger)
	}
	if resp.Breakdown.Ledger[0].Label != "Aktionsrabatt" {
		t.Fatalf("percentage discount must run before fixed discount, ledger %+v", resp.Breakdown.Ledger)
	}
}

func TestCalculateUnknownComponentWarnsWithoutFailing(t *testing.T) {
	srv := newTestServer(t, "")

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/v1/calculate/pv", "", map[string]any{
		"items": []map[string]any{
			{"component_id": "pv-module-430", "quantity": 10},
			{"component_id": "vaporware-9000", "quantity": 1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Breakdown.Lines) != 1 {
		t.Fatalf("expected 1 priced line, got %d", len(resp.Breakdown.Lines))
	}
	if len(resp.Breakdown.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", resp.Breakdown.Warnings)
	}
}

func TestCalculateInvalidModificationIsBadRequest(t *testing.T) {
	srv := newTestServer(t, "")

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/v1/calculate/pv", "", map[string]any{
		"items": []map[string]any{
			{"component_id": "pv-module-430", "quantity": 1},
		},
		"modifications": []map[string]any{
			{"kind": "rebate", "mode": "percentage", "value": 5, "label": "kaputt"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected error detail in response")
	}
}

func TestCalculateMalformedBodyIsBadRequest(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate/pv", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCalculateCombinedEndToEnd(t *testing.T) {
	srv := newTestServer(t, "")

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/v1/calculate/combined", "", map[string]any{
		"pv": map[string]any{
			"items": []map[string]any{
				{"component_id": "pv-module-430", "quantity": 20},
			},
			"vat_category": "pv_zero",
		},
		"heat_pump": map[string]any{
			"items": []map[string]any{
				{"component_id": "heatpump-12kw", "quantity": 1},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp combinedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := resp.Breakdown.PV.NetTotal + resp.Breakdown.HeatPump.NetTotal
	if resp.Breakdown.Subtotal != want {
		t.Fatalf("combined subtotal = %v, want %v", resp.Breakdown.Subtotal, want)
	}
	for _, name := range []string{"PV_NET_TOTAL", "HP_NET_TOTAL", "COMBINED_GROSS_TOTAL"} {
		if _, ok := resp.Keys[name]; !ok {
			t.Fatalf("missing combined key %s", name)
		}
	}
}
