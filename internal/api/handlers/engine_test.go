package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/brain"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/risk"
)

type fakeEngine struct {
	signalErr  error
	reportErr  error
	crisisErr  error
	gotTicker  string
	gotReq     brain.SimulationRequest
	gotCrisis  bool
	gotBench   string
	gotWeights contracts.PortfolioWeights
}

func (f *fakeEngine) ComputeMonthSignal(_ context.Context, ticker string) (*contracts.MonthSignal, error) {
	f.gotTicker = ticker
	if f.signalErr != nil {
		return nil, f.signalErr
	}
	if ticker == "" {
		ticker = "QQQ"
	}
	return &contracts.MonthSignal{
		Ticker:       ticker,
		AsOf:         time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		EquityWeight: 0.82,
		SafeWeight:   0.18,
		ReasonCodes:  []contracts.ReasonCode{contracts.ReasonTrendUp},
		TrendScore:   1,
	}, nil
}

func (f *fakeEngine) RunReport(_ context.Context, req brain.SimulationRequest, includeCrisis bool) (*brain.Report, error) {
	f.gotReq, f.gotCrisis = req, includeCrisis
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return &brain.Report{Simulation: &contracts.SimulationResult{}}, nil
}

func (f *fakeEngine) RunCrisisStressTest(_ context.Context, weights contracts.PortfolioWeights, benchmark string) ([]contracts.CrisisScenarioResult, error) {
	f.gotWeights, f.gotBench = weights, benchmark
	if f.crisisErr != nil {
		return nil, f.crisisErr
	}
	return []contracts.CrisisScenarioResult{{Name: "COVID", Status: contracts.CrisisOK, Benchmark: benchmark}}, nil
}

func (f *fakeEngine) LatestClose(_ context.Context, ticker string) (*brain.Quote, error) {
	if ticker == "NOPE" {
		return nil, contracts.NewNoDataError(ticker, "5d", nil)
	}
	return &brain.Quote{Ticker: ticker, Close: 10, FXRate: 1350, Converted: 13500}, nil
}

func newTestRouter(engine Engine) *mux.Router {
	h := NewEngineHandler(engine, nil)
	r := mux.NewRouter()
	r.HandleFunc("/api/signal", h.GetSignal).Methods("GET")
	r.HandleFunc("/api/signal/{ticker}", h.GetSignal).Methods("GET")
	r.HandleFunc("/api/simulate", h.Simulate).Methods("POST")
	r.HandleFunc("/api/crisis", h.Crisis).Methods("POST")
	r.HandleFunc("/api/quote/{ticker}", h.GetQuote).Methods("GET")
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestGetSignal(t *testing.T) {
	engine := &fakeEngine{}
	rec, body := do(t, newTestRouter(engine), "GET", "/api/signal/SPY", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "SPY", engine.gotTicker)

	data := body["data"].(map[string]interface{})
	signal := data["signal"].(map[string]interface{})
	assert.InDelta(t, 0.82, signal["equity_weight"], 1e-12)
	assert.NotEmpty(t, data["headline"])
	assert.NotEmpty(t, data["explanation"])
}

func TestGetSignal_DefaultTicker(t *testing.T) {
	engine := &fakeEngine{}
	rec, _ := do(t, newTestRouter(engine), "GET", "/api/signal", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", engine.gotTicker)
}

func TestGetSignal_NoData(t *testing.T) {
	engine := &fakeEngine{signalErr: contracts.NewNoDataError("ZZZZ", "2y", nil)}
	rec, body := do(t, newTestRouter(engine), "GET", "/api/signal/ZZZZ", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "ZZZZ")
}

func TestSimulate_AppliesDefaults(t *testing.T) {
	engine := &fakeEngine{}
	rec, _ := do(t, newTestRouter(engine), "POST", "/api/simulate", `{"weights":{"qqq":0.6,"TLT":0.4}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, engine.gotReq.HorizonMonths)
	assert.Equal(t, 100, engine.gotReq.NumPaths)
	assert.False(t, engine.gotCrisis)
	assert.InDelta(t, 0.6, engine.gotReq.Weights.Weight("QQQ"), 1e-12)
}

func TestSimulate_Overrides(t *testing.T) {
	engine := &fakeEngine{}
	rec, _ := do(t, newTestRouter(engine), "POST", "/api/simulate",
		`{"weights":{"QQQ":1},"horizon_months":24,"num_paths":500,"include_crisis":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24, engine.gotReq.HorizonMonths)
	assert.Equal(t, 500, engine.gotReq.NumPaths)
	assert.True(t, engine.gotCrisis)
}

func TestSimulate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"weights":`},
		{"missing weights", `{"horizon_months":12}`},
		{"empty weights", `{"weights":{}}`},
		{"horizon too large", `{"weights":{"QQQ":1},"horizon_months":601}`},
		{"zero paths", `{"weights":{"QQQ":1},"num_paths":0}`},
		{"unknown field", `{"weights":{"QQQ":1},"seed":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			rec, body := do(t, newTestRouter(engine), "POST", "/api/simulate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestSimulate_EngineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty portfolio", &contracts.EmptyPortfolioError{Tickers: []string{"A", "B"}}, http.StatusUnprocessableEntity},
		{"joined empty portfolio", errors.Join(&contracts.EmptyPortfolioError{}, contracts.NewNoDataError("A", "10y", nil)), http.StatusUnprocessableEntity},
		{"invalid weights", fmt.Errorf("normalize: %w", contracts.ErrInvalidWeights), http.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: horizon", risk.ErrInvalidInput), http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{reportErr: tt.err}
			rec, _ := do(t, newTestRouter(engine), "POST", "/api/simulate", `{"weights":{"A":1}}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCrisis(t *testing.T) {
	engine := &fakeEngine{}
	rec, body := do(t, newTestRouter(engine), "POST", "/api/crisis", `{"weights":{"QQQ":0.5,"TLT":0.5},"benchmark":"SPY"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SPY", engine.gotBench)
	assert.Equal(t, 2, engine.gotWeights.Len())

	rows := body["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "OK", rows[0].(map[string]interface{})["status"])
}

func TestCrisis_InvalidWeights(t *testing.T) {
	engine := &fakeEngine{crisisErr: contracts.ErrInvalidWeights}
	rec, _ := do(t, newTestRouter(engine), "POST", "/api/crisis", `{"weights":{"QQQ":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuote(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeEngine{}), "GET", "/api/quote/QQQ", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.InDelta(t, 13500.0, data["converted"], 1e-9)

	rec, _ = do(t, newTestRouter(&fakeEngine{}), "GET", "/api/quote/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
