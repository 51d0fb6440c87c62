package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quarrylabs/databook/pkg/databook"
	"github.com/quarrylabs/databook/pkg/kit"
	"github.com/quarrylabs/databook/pkg/metric"
)

// NewRouter returns an http.Handler with the databook function routes.
func NewRouter(res *databook.Resolver, cat *metric.Catalog, store *databook.Store, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		valueFetch: kit.Chain(kit.Recover(), kit.Logging(logger, "value_fetch"))(valueFetchEndpoint(res)),
		rollDice:   kit.Chain(kit.Recover(), kit.Logging(logger, "roll_dice"))(rollDiceEndpoint()),
		metrics:    listMetricsEndpoint(cat),
		cat:        cat,
		store:      store,
		logger:     logger,
	}

	mux.HandleFunc("GET /api/functions/value_fetch", h.handleValueFetch)
	mux.HandleFunc("GET /api/functions/roll_dice", h.handleRollDice)
	mux.HandleFunc("GET /v1/metrics", h.handleMetrics)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	valueFetch kit.Endpoint
	rollDice   kit.Endpoint
	metrics    kit.Endpoint
	cat        *metric.Catalog
	store      *databook.Store
	logger     *slog.Logger
}

// issue is one parameter validation failure.
type issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// --- value fetch ---

func parseValueFetch(r *http.Request) (*databook.Request, []issue) {
	q := r.URL.Query()
	req := &databook.Request{
		Values:  q["values"],
		Periods: q["periods"],
		Source:  q.Get("source"),
		Unit:    q.Get("unit"),
	}

	var issues []issue
	if req.Unit != "" && req.Unit != databook.UnitUSD && req.Unit != databook.UnitPercent {
		issues = append(issues, issue{Path: "unit", Message: `must be "USD" or "%"`})
	}
	return req, issues
}

func (h *handler) handleValueFetch(w http.ResponseWriter, r *http.Request) {
	req, issues := parseValueFetch(r)
	if len(issues) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid parameters",
			"issues": issues,
		})
		return
	}

	resp, err := h.valueFetch(r.Context(), req)
	if err != nil {
		h.logger.Error("value_fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "error fetching value")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- roll dice ---

func (h *handler) handleRollDice(w http.ResponseWriter, r *http.Request) {
	sides := 6
	if raw := r.URL.Query().Get("sides"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			sides = n
		}
	}

	resp, err := h.rollDice(r.Context(), &diceRequest{Sides: sides})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error generating dice roll")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- metrics listing ---

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.metrics(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status   string `json:"status"`
	Metrics  int    `json:"metrics"`
	Databook bool   `json:"databook"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Metrics:  h.cat.Count(),
		Databook: h.store.Available(),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for the browser-based chat UI.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
