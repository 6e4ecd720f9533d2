package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/DongHyun925/RulePilot/internal/brain"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/s2_signals"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// Engine 엔진 공개 연산 (brain.Orchestrator)
type Engine interface {
	ComputeMonthSignal(ctx context.Context, ticker string) (*contracts.MonthSignal, error)
	RunReport(ctx context.Context, req brain.SimulationRequest, includeCrisis bool) (*brain.Report, error)
	RunCrisisStressTest(ctx context.Context, weights contracts.PortfolioWeights, benchmark string) ([]contracts.CrisisScenarioResult, error)
	LatestClose(ctx context.Context, ticker string) (*brain.Quote, error)
}

// EngineHandler handles signal / simulation / crisis / quote endpoints
// ⭐ SSOT: 엔진 API 핸들러는 이 구조체에서만
type EngineHandler struct {
	engine   Engine
	validate *validator.Validate
	logger   *logger.Logger
}

// NewEngineHandler creates a new engine handler
func NewEngineHandler(engine Engine, log *logger.Logger) *EngineHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EngineHandler{
		engine:   engine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log.WithComponent("api"),
	}
}

// SimulateRequest POST /api/simulate body
type SimulateRequest struct {
	Weights       map[string]float64 `json:"weights" validate:"required,min=1"`
	HorizonMonths int                `json:"horizon_months" default:"12" validate:"min=1,max=600"`
	NumPaths      int                `json:"num_paths" default:"100" validate:"min=1,max=10000"`
	IncludeCrisis bool               `json:"include_crisis"`
}

// CrisisRequest POST /api/crisis body
type CrisisRequest struct {
	Weights   map[string]float64 `json:"weights" validate:"required,min=1"`
	Benchmark string             `json:"benchmark" validate:"omitempty,max=16"`
}

// SignalResponse month signal with its plain-language explanation
type SignalResponse struct {
	Signal      *contracts.MonthSignal `json:"signal"`
	Headline    string                 `json:"headline"`
	Explanation string                 `json:"explanation"`
}

// GetSignal returns the monthly equity/safe split
// GET /api/signal/{ticker}  (GET /api/signal → configured ticker)
func (h *EngineHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	sig, err := h.engine.ComputeMonthSignal(r.Context(), ticker)
	if err != nil {
		h.fail(w, "signal", err)
		return
	}

	respondData(w, SignalResponse{
		Signal:      sig,
		Headline:    s2_signals.Headline(*sig),
		Explanation: s2_signals.Explain(sig.ReasonCodes),
	})
}

// Simulate runs backtest + Monte Carlo (optionally the crisis test)
// POST /api/simulate
func (h *EngineHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.engine.RunReport(r.Context(), brain.SimulationRequest{
		Weights:       contracts.NewPortfolioWeights(req.Weights),
		HorizonMonths: req.HorizonMonths,
		NumPaths:      req.NumPaths,
	}, req.IncludeCrisis)
	if err != nil {
		h.fail(w, "simulate", err)
		return
	}

	respondData(w, report)
}

// Crisis replays the historical crisis windows
// POST /api/crisis
func (h *EngineHandler) Crisis(w http.ResponseWriter, r *http.Request) {
	var req CrisisRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.engine.RunCrisisStressTest(r.Context(), contracts.NewPortfolioWeights(req.Weights), req.Benchmark)
	if err != nil {
		h.fail(w, "crisis", err)
		return
	}

	respondData(w, rows)
}

// GetQuote returns the latest close
// GET /api/quote/{ticker}
func (h *EngineHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.engine.LatestClose(r.Context(), mux.Vars(r)["ticker"])
	if err != nil {
		h.fail(w, "quote", err)
		return
	}
	respondData(w, q)
}

// decode applies defaults, then the JSON body, then validation.
func (h *EngineHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := defaults.Set(dst); err != nil {
		return err
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

func (h *EngineHandler) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	entry := h.logger.WithError(err).WithFields(map[string]interface{}{
		"operation": op,
		"status":    status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Engine operation failed")
	} else {
		entry.Warn("Engine operation rejected")
	}
	respondError(w, status, err.Error())
}
