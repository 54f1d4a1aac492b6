package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/metrics"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
	"github.com/Veraticus/oib/internal/storage"
)

type testServer struct {
	handler http.Handler
	store   *storage.MemoryCounter
}

func newTestServer(t *testing.T, opts ...HandlerOption) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := storage.NewMemoryCounter()
	eng := engine.New(store, engine.WithSeed(1), engine.WithMetrics(metrics.New(reg)))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(eng, logger, opts...)
	return &testServer{
		handler: NewRouter(h, RouterConfig{Logger: logger, Gatherer: reg}),
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		oib       string
		reason    string
		steps     int
		valid     bool
		hasDigits bool
	}{
		{name: "valid", oib: "69435151530", valid: true, steps: 10, hasDigits: true},
		{name: "grouped", oib: "69 435 151 530", valid: true, steps: 10, hasDigits: true},
		{name: "mismatch", oib: "69435151531", reason: "CHECKSUM_MISMATCH", steps: 10, hasDigits: true},
		{name: "short", oib: "123", reason: "WRONG_LENGTH"},
		{name: "letters", oib: "abc", reason: "NON_DIGIT"},
		{name: "empty", oib: "", reason: "EMPTY"},
		{name: "repeated", oib: "11111111111", reason: "REPEATED_DIGIT", steps: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/validate", OIBRequest{OIB: tt.oib})
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[ValidateResponse](t, rec)
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.reason, resp.Reason)
			assert.Len(t, resp.Steps, tt.steps)
			assert.NotNil(t, resp.Steps)
			assert.NotEmpty(t, resp.Message)
			if tt.hasDigits {
				require.NotNil(t, resp.Expected)
				require.NotNil(t, resp.Provided)
			} else {
				assert.Nil(t, resp.Expected)
			}
		})
	}

	stats, err := s.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(tests)-1), stats.Validated, "empty input is not counted")
}

func TestValidateLocalizedMessage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/validate?lang=hr", OIBRequest{OIB: "69435151531"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ValidateResponse](t, rec)
	assert.Equal(t, "OIB nije valjan - kontrolna znamenka ne odgovara", resp.Message)
	assert.Equal(t, "Kontrolna znamenka trebala bi biti 0, a unesena je 1", resp.Hint)
	assert.Equal(t, 0, *resp.Expected)
	assert.Equal(t, 1, *resp.Provided)
}

func TestMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/validate", "/v1/trace", "/v1/check-digit"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, path, `{"oib": `)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, CodeInvalidJSON, resp.Error)
		})
	}

	rec := s.do(t, http.MethodPost, "/v1/validate", `{"oib": "69435151530", "extra": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTraceEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/trace", OIBRequest{OIB: "69435151530"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[TraceResponse](t, rec)
	require.Len(t, resp.Steps, oib.PayloadLength)
	assert.Equal(t, oib.Step{Index: 1, Digit: 6, BeforeAdd: 10, AfterAdd: 16, AfterMod10: 6, AfterDouble: 12, AfterMod11: 1}, resp.Steps[0])
	require.NotNil(t, resp.CheckDigit)
	assert.Equal(t, 0, *resp.CheckDigit)

	rec = s.do(t, http.MethodPost, "/v1/trace", OIBRequest{OIB: "123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"steps": []}`, rec.Body.String())

	stats, err := s.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total())
}

func TestCheckDigitEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/check-digit", CheckDigitRequest{Payload: "69 435 151 53"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CheckDigitResponse](t, rec)
	assert.Equal(t, 0, resp.CheckDigit)
	assert.Equal(t, "69435151530", resp.OIB)

	rec = s.do(t, http.MethodPost, "/v1/check-digit", CheckDigitRequest{Payload: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidPayload, decode[ErrorResponse](t, rec).Error)
}

func TestGenerateEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[GenerateResponse](t, rec)
	require.Len(t, resp.OIBs, 1)
	assert.True(t, oib.IsValid(resp.OIBs[0]))

	rec = s.do(t, http.MethodGet, "/v1/generate?count=25&unique=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[GenerateResponse](t, rec)
	require.Len(t, resp.OIBs, 25)
	seen := map[string]bool{}
	for _, id := range resp.OIBs {
		assert.True(t, oib.IsValid(id), id)
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}

	stats, err := s.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(26), stats.Generated)
}

func TestGenerateRejectsBadParameters(t *testing.T) {
	s := newTestServer(t, WithMaxBatch(10))

	tests := []struct {
		query string
		code  string
	}{
		{"count=0", CodeInvalidCount},
		{"count=-3", CodeInvalidCount},
		{"count=11", CodeInvalidCount},
		{"count=lots", CodeInvalidCount},
		{"unique=maybe", CodeInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/v1/generate?"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/v1/validate", OIBRequest{OIB: "69435151530"})
	s.do(t, http.MethodGet, "/v1/generate?count=3", nil)

	rec := s.do(t, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[StatsResponse](t, rec)
	assert.Equal(t, int64(3), resp.Generated)
	assert.Equal(t, int64(1), resp.Validated)
	assert.Equal(t, int64(4), resp.Total)
	assert.NotNil(t, resp.UpdatedAt)

	since := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec = s.do(t, http.MethodGet, "/v1/stats?since="+since, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[StatsResponse](t, rec)
	assert.Equal(t, int64(0), resp.Total)
	assert.NotNil(t, resp.Since)

	rec = s.do(t, http.MethodGet, "/v1/stats?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type noHistoryEngine struct {
	Engine
}

func (noHistoryEngine) StatsSince(context.Context, time.Time) (*model.Stats, error) {
	return nil, engine.ErrHistoryUnsupported
}

func (noHistoryEngine) Stats(context.Context) (*model.Stats, error) {
	return nil, errors.New("redis: connection refused")
}

func TestStatsErrors(t *testing.T) {
	h := New(noHistoryEngine{Engine: engine.New(nil)}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := NewRouter(h, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats?since=2026-01-01T00:00:00Z", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeStorageUnavailable, decode[ErrorResponse](t, rec).Error)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	assert.Equal(t, "x", RequestIDFrom(WithRequestID(context.Background(), "x")))
}

type healthFunc func(context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	h := New(engine.New(nil), nil)

	healthy := NewRouter(h, RouterConfig{Health: healthFunc(func(context.Context) error { return nil })})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	unhealthy := NewRouter(h, RouterConfig{Health: healthFunc(func(context.Context) error {
		return errors.New("redis down")
	})})
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/v1/validate", OIBRequest{OIB: "69435151531"})

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `oib_validations_total{reason="CHECKSUM_MISMATCH",result="invalid"} 1`)
	assert.Contains(t, body, "oib_operation_duration_seconds")
}

func TestRecovererReturns500(t *testing.T) {
	h := New(panicEngine{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := NewRouter(h, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trace", strings.NewReader(`{"oib":"1"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panicEngine struct {
	Engine
}

func (panicEngine) Trace(string) []oib.Step {
	panic("boom")
}
