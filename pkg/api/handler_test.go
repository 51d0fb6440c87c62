package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/quarrylabs/databook/pkg/databook"
	"github.com/quarrylabs/databook/pkg/metric"
)

func ptr[T any](v T) *T { return &v }

func newTestRouter(t *testing.T, databookPath string) http.Handler {
	t.Helper()
	cat := metric.NewCatalog("")
	if err := cat.Load(); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := databook.NewStore(databookPath)
	res := databook.NewResolver(store, cat, nil, logger)
	return NewRouter(res, cat, store, logger)
}

// seededRouter serves a databook holding one curated Net Sales fact for 2023.
func seededRouter(t *testing.T) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "databook.sqlite")
	w, err := databook.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	usd := "USD"
	id, err := w.AddFact(databook.Fact{
		File: "Databook_One_SANITIZED.xlsx", Sheet: "P&L Statement",
		RowHeader: "Net Sales", ColHeader: "2023", Unit: &usd, Value: ptr(1000000.0),
	})
	if err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if err := w.Annotate(id, "Net Sales", ptr("2023")); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	return newTestRouter(t, path)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValueFetch_EndToEnd(t *testing.T) {
	h := seededRouter(t)

	rec := get(t, h, "/api/functions/value_fetch?values=Net+Sales&periods=2023")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Results []databook.ResolvedRow `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %+v, want exactly one", resp.Results)
	}
	got := resp.Results[0]
	if got.QueryValue != "Net Sales" || got.Period != "2023" || got.PeriodLabel != "2023" {
		t.Errorf("row = %+v", got)
	}
	if got.Value == nil || *got.Value != 1000000 {
		t.Errorf("value = %v, want 1000000", got.Value)
	}
}

func TestValueFetch_FuzzyAlias(t *testing.T) {
	h := seededRouter(t)

	// "revenue" fuzzy-resolves to the canonical Net Sales annotation.
	rec := get(t, h, "/api/functions/value_fetch?values=revenue&periods=2023")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Results []databook.ResolvedRow `json:"results"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Value == nil || *resp.Results[0].Value != 1000000 {
		t.Fatalf("results = %+v", resp.Results)
	}
}

func TestValueFetch_EmptyValues(t *testing.T) {
	// Store path does not exist: any store access would 500, so a 200 with
	// empty results proves the store was never touched.
	h := newTestRouter(t, filepath.Join(t.TempDir(), "missing.sqlite"))

	for _, target := range []string{
		"/api/functions/value_fetch",
		"/api/functions/value_fetch?values=",
	} {
		rec := get(t, h, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", target, rec.Code, rec.Body)
		}
		if got := rec.Body.String(); got != "{\"results\":[]}\n" {
			t.Errorf("%s: body = %q, want empty results", target, got)
		}
	}
}

func TestValueFetch_InvalidUnit(t *testing.T) {
	h := newTestRouter(t, filepath.Join(t.TempDir(), "missing.sqlite"))

	rec := get(t, h, "/api/functions/value_fetch?values=Net+Sales&unit=EUR")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error  string `json:"error"`
		Issues []struct {
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error == "" || len(resp.Issues) != 1 || resp.Issues[0].Path != "unit" {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestValueFetch_StoreUnreachable(t *testing.T) {
	h := newTestRouter(t, filepath.Join(t.TempDir(), "missing.sqlite"))

	rec := get(t, h, "/api/functions/value_fetch?values=Net+Sales")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Errorf("body = %s, want error message", rec.Body)
	}
}

func TestValueFetch_SourceAcceptedButInert(t *testing.T) {
	h := seededRouter(t)

	// A source hint passes validation and does not change resolution.
	target := "/api/functions/value_fetch?values=Net+Sales&periods=2023&source=" +
		url.QueryEscape("P&L Statement")
	rec := get(t, h, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Results []databook.ResolvedRow `json:"results"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Errorf("results = %+v, want one row", resp.Results)
	}
}

func TestRollDice(t *testing.T) {
	h := newTestRouter(t, filepath.Join(t.TempDir(), "missing.sqlite"))

	for i := 0; i < 50; i++ {
		rec := get(t, h, "/api/functions/roll_dice?sides=4")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Result int `json:"result"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Result < 1 || resp.Result > 4 {
			t.Fatalf("result = %d, want 1..4", resp.Result)
		}
	}

	// Garbage and non-positive sides fall back to six.
	for _, target := range []string{
		"/api/functions/roll_dice",
		"/api/functions/roll_dice?sides=0",
		"/api/functions/roll_dice?sides=banana",
	} {
		rec := get(t, h, target)
		var resp struct {
			Result int `json:"result"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Result < 1 || resp.Result > 6 {
			t.Errorf("%s: result = %d, want 1..6", target, resp.Result)
		}
	}
}

func TestMetricsAndHealth(t *testing.T) {
	h := seededRouter(t)

	rec := get(t, h, "/v1/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	var metricsResp struct {
		Threshold float64         `json:"threshold"`
		Metrics   []metric.Metric `json:"metrics"`
	}
	json.Unmarshal(rec.Body.Bytes(), &metricsResp)
	if metricsResp.Threshold != metric.DefaultThreshold || len(metricsResp.Metrics) == 0 {
		t.Errorf("metrics body = %s", rec.Body)
	}

	rec = get(t, h, "/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health struct {
		Status   string `json:"status"`
		Metrics  int    `json:"metrics"`
		Databook bool   `json:"databook"`
	}
	json.Unmarshal(rec.Body.Bytes(), &health)
	if health.Status != "ok" || health.Metrics == 0 || !health.Databook {
		t.Errorf("health body = %s", rec.Body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := seededRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/functions/value_fetch", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
