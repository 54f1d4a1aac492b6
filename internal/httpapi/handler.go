// Package httpapi exposes validation, generation and usage statistics over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/Veraticus/oib/internal/common"
	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
)

// DefaultMaxBatch is the largest count accepted by GET /v1/generate.
const DefaultMaxBatch = 1000

// Engine defines the operations the API serves.
type Engine interface {
	Validate(ctx context.Context, input string) engine.Result
	Trace(input string) []oib.Step
	CheckDigit(payload string) (int, error)
	GenerateBatch(ctx context.Context, opts engine.BatchOptions) ([]string, error)
	Stats(ctx context.Context) (*model.Stats, error)
	StatsSince(ctx context.Context, since time.Time) (*model.Stats, error)
}

// Handler wires the API endpoints to the engine.
type Handler struct {
	engine   Engine
	logger   *slog.Logger
	lang     language.Tag
	maxBatch int
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMaxBatch overrides the generate count limit.
func WithMaxBatch(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBatch = n
		}
	}
}

// WithLanguage sets the message language used when a request expresses no
// preference.
func WithLanguage(tag language.Tag) HandlerOption {
	return func(h *Handler) {
		h.lang = tag
	}
}

// New constructs a handler with its dependencies.
func New(eng Engine, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		engine:   eng,
		logger:   logger,
		lang:     i18n.Default(),
		maxBatch: DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the API endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", h.HandleValidate)
		r.Post("/trace", h.HandleTrace)
		r.Post("/check-digit", h.HandleCheckDigit)
		r.Get("/generate", h.HandleGenerate)
		r.Get("/stats", h.HandleStats)
	})
}

// OIBRequest is the body of validate and trace requests.
type OIBRequest struct {
	OIB string `json:"oib"`
}

// ValidateResponse describes a validation outcome.
type ValidateResponse struct {
	Input      string     `json:"input,omitempty"`
	Expected   *int       `json:"expected,omitempty"`
	Provided   *int       `json:"provided,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Normalized string     `json:"normalized"`
	Message    string     `json:"message"`
	Hint       string     `json:"hint,omitempty"`
	Steps      []oib.Step `json:"steps"`
	Length     int        `json:"length"`
	Valid      bool       `json:"valid"`
}

// NewValidateResponse builds the JSON view of a validation result. The CLI
// uses the same shape for --json output.
func NewValidateResponse(res engine.Result, loc *i18n.Localizer) ValidateResponse {
	out := res.Outcome
	resp := ValidateResponse{
		Valid:      out.Valid,
		Reason:     string(out.Reason),
		Normalized: out.Normalized,
		Length:     out.Length,
		Message:    loc.Headline(out),
		Hint:       loc.Hint(out),
		Steps:      res.Steps,
	}
	if resp.Steps == nil {
		resp.Steps = []oib.Step{}
	}
	if out.HasDigits {
		expected, provided := out.Expected, out.Provided
		resp.Expected = &expected
		resp.Provided = &provided
	}
	return resp
}

// HandleValidate handles POST /v1/validate. Malformed identifiers are data,
// not errors: they come back as 200 with valid=false.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OIBRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := h.engine.Validate(ctx, req.OIB)
	out := res.Outcome
	resp := NewValidateResponse(res, i18n.ForTag(i18n.ResolveTag(r, h.lang)))

	h.logger.DebugContext(ctx, "oib validated",
		"request_id", RequestIDFrom(ctx),
		"valid", out.Valid,
		"reason", out.Reason.String(),
	)
	writeJSON(w, http.StatusOK, resp)
}

// TraceResponse lists the calculation steps.
type TraceResponse struct {
	CheckDigit *int       `json:"check_digit,omitempty"`
	Steps      []oib.Step `json:"steps"`
}

// HandleTrace handles POST /v1/trace. Malformed input yields an empty list.
func (h *Handler) HandleTrace(w http.ResponseWriter, r *http.Request) {
	var req OIBRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp := TraceResponse{Steps: h.engine.Trace(req.OIB)}
	if resp.Steps == nil {
		resp.Steps = []oib.Step{}
	}
	if d, ok := oib.CheckDigitFromTrace(resp.Steps); ok {
		resp.CheckDigit = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

// CheckDigitRequest is the body of a check digit request.
type CheckDigitRequest struct {
	Payload string `json:"payload"`
}

// CheckDigitResponse carries the computed digit and the completed identifier.
type CheckDigitResponse struct {
	OIB        string `json:"oib"`
	CheckDigit int    `json:"check_digit"`
}

// HandleCheckDigit handles POST /v1/check-digit.
func (h *Handler) HandleCheckDigit(w http.ResponseWriter, r *http.Request) {
	var req CheckDigitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.engine.CheckDigit(req.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidPayload, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CheckDigitResponse{
		CheckDigit: d,
		OIB:        oib.Strip(req.Payload) + strconv.Itoa(d),
	})
}

// GenerateResponse lists generated identifiers.
type GenerateResponse struct {
	OIBs []string `json:"oibs"`
}

// HandleGenerate handles GET /v1/generate?count=N&unique=bool.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	q := r.URL.Query()

	count := 1
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.maxBatch {
			writeError(w, http.StatusBadRequest, CodeInvalidCount,
				fmt.Sprintf("count must be an integer between 1 and %d", h.maxBatch))
			return
		}
		count = n
	}

	unique := false
	if raw := q.Get("unique"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidParameter, "unique must be a boolean")
			return
		}
		unique = b
	}

	ids, err := h.engine.GenerateBatch(ctx, engine.BatchOptions{Count: count, Unique: unique})
	if err != nil {
		h.logger.ErrorContext(ctx, "generation failed",
			"request_id", RequestIDFrom(ctx),
			"count", count,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeGenerationFailed, "generation failed")
		return
	}

	h.logger.InfoContext(ctx, "oibs generated",
		"request_id", RequestIDFrom(ctx),
		"count", len(ids),
		"unique", unique,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, GenerateResponse{OIBs: ids})
}

// StatsResponse carries the usage counters.
type StatsResponse struct {
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Since     *time.Time `json:"since,omitempty"`
	Generated int64      `json:"generated"`
	Validated int64      `json:"validated"`
	Total     int64      `json:"total"`
}

// HandleStats handles GET /v1/stats, optionally windowed by ?since=RFC3339.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		stats *model.Stats
		since *time.Time
		err   error
	)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidParameter, "since must be an RFC 3339 timestamp")
			return
		}
		since = &t
		stats, err = h.engine.StatsSince(ctx, t)
	} else {
		stats, err = h.engine.Stats(ctx)
	}

	if err != nil {
		if errors.Is(err, engine.ErrHistoryUnsupported) {
			writeError(w, http.StatusNotImplemented, CodeHistoryUnsupported, err.Error())
			return
		}
		common.LogError(err, "Failed to load stats", common.Fields{"request_id": RequestIDFrom(ctx)})
		writeError(w, http.StatusServiceUnavailable, CodeStorageUnavailable, "usage statistics unavailable")
		return
	}

	resp := StatsResponse{
		Generated: stats.Generated,
		Validated: stats.Validated,
		Total:     stats.Total(),
		Since:     since,
	}
	if !stats.UpdatedAt.IsZero() {
		updated := stats.UpdatedAt
		resp.UpdatedAt = &updated
	}
	writeJSON(w, http.StatusOK, resp)
}
