package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/heliotek/offerwerk/internal/cache"
	"github.com/heliotek/offerwerk/internal/catalog"
	"github.com/heliotek/offerwerk/internal/keys"
	"github.com/heliotek/offerwerk/internal/pricing"
	"github.com/heliotek/offerwerk/internal/rates"
)

type server struct {
	log     *zap.Logger
	catalog *catalog.Store
	rates   *rates.Store
	engine  *pricing.Engine
	cache   *cache.Cache
	apiKey  string
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Get("/components", s.handleListComponents)
		r.Post("/calculate/pv", s.handleCalculatePV)
		r.Post("/calculate/heatpump", s.handleCalculateHeatPump)
		r.Post("/calculate/combined", s.handleCalculateCombined)
	})
	return r
}

// calculationResponse pairs a breakdown with its dynamic key namespace.
// Keys holds display-formatted values for the document renderer, RawKeys
// the numeric values for programmatic consumers.
type calculationResponse struct {
	Breakdown *pricing.Breakdown `json:"breakdown"`
	Keys      map[string]string  `json:"keys"`
	RawKeys   map[string]float64 `json:"raw_keys"`
}

type combinedResponse struct {
	Breakdown *pricing.CombinedBreakdown `json:"breakdown"`
	Keys      map[string]string          `json:"keys"`
	RawKeys   map[string]float64         `json:"raw_keys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := s.catalog.List(r.Context())
	if err != nil {
		s.log.Error("failed to list components", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load catalog"})
		return
	}
	writeJSON(w, http.StatusOK, components)
}

func (s *server) handleCalculatePV(w http.ResponseWriter, r *http.Request) {
	s.handleCalculateSystem(w, r, pricing.SystemPV, keys.PrefixPV)
}

func (s *server) handleCalculateHeatPump(w http.ResponseWriter, r *http.Request) {
	s.handleCalculateSystem(w, r, pricing.SystemHeatPump, keys.PrefixHeatPump)
}

func (s *server) handleCalculateSystem(w http.ResponseWriter, r *http.Request, kind pricing.SystemKind, prefix string) {
	var req pricing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.System = kind

	snap, err := s.rates.Snapshot(r.Context())
	if err != nil {
		s.log.Error("failed to load configuration snapshot", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load pricing configuration"})
		return
	}

	fingerprint, err := cache.Fingerprint(req, snap.Version)
	if err != nil {
		s.log.Error("failed to fingerprint request", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	result, err := s.cache.Do(fingerprint, snap.Version, func() (any, error) {
		breakdown, err := s.engine.Calculate(r.Context(), req, snap)
		if err != nil {
			return nil, err
		}
		registry := keys.NewRegistry()
		if err := keys.FromBreakdown(registry, prefix, breakdown); err != nil {
			return nil, err
		}
		return calculationResponse{
			Breakdown: breakdown,
			Keys:      registry.Formatted(),
			RawKeys:   registry.Raw(),
		}, nil
	})
	if err != nil {
		s.writeCalculationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleCalculateCombined(w http.ResponseWriter, r *http.Request) {
	var req pricing.CombinedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	snap, err := s.rates.Snapshot(r.Context())
	if err != nil {
		s.log.Error("failed to load configuration snapshot", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load pricing configuration"})
		return
	}

	fingerprint, err := cache.Fingerprint(req, snap.Version)
	if err != nil {
		s.log.Error("failed to fingerprint request", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	result, err := s.cache.Do(fingerprint, snap.Version, func() (any, error) {
		breakdown, err := s.engine.CalculateCombined(r.Context(), req, snap)
		if err != nil {
			return nil, err
		}
		registry, err := keys.FromCombined(breakdown)
		if err != nil {
			return nil, err
		}
		return combinedResponse{
			Breakdown: breakdown,
			Keys:      registry.Formatted(),
			RawKeys:   registry.Raw(),
		}, nil
	})
	if err != nil {
		s.writeCalculationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) writeCalculationError(w http.ResponseWriter, err error) {
	var confErr *pricing.ConfigurationError
	if errors.As(err, &confErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: confErr.Error()})
		return
	}

	var conflict *keys.ConflictError
	if errors.As(err, &conflict) {
		// A key conflict is a naming-scheme defect, not a client error.
		s.log.Error("dynamic key conflict", zap.Error(conflict))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: conflict.Error()})
		return
	}

	s.log.Error("calculation failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "calculation failed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
