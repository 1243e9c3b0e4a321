package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"PatientPulse/internal/domain/models"
	icache "PatientPulse/internal/service/cache"
	apimetrics "PatientPulse/internal/service/metrics"
	"PatientPulse/internal/services/features"
	"PatientPulse/internal/usecase"
	xhttp "PatientPulse/pkg/http"
	"PatientPulse/pkg/http/middleware"
	xlogger "PatientPulse/pkg/logger"
	xutil "PatientPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

const defaultCacheTTL = time.Hour

// ForecastEchoHandler serves the dashboard endpoints over the prediction service.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.PredictionService
	cache   icache.BytesCache
	ttl     time.Duration
	limiter middleware.Allower
	stream  echo.HandlerFunc
}

type HandlerOption func(*ForecastEchoHandler)

// WithCache enables response caching of /predict. ttl <= 0 means one hour.
func WithCache(c icache.BytesCache, ttl time.Duration) HandlerOption {
	return func(h *ForecastEchoHandler) {
		h.cache = c
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithRateLimit guards /predict and /observations.
func WithRateLimit(a middleware.Allower) HandlerOption {
	return func(h *ForecastEchoHandler) { h.limiter = a }
}

// WithStream mounts a live forecast feed at /ws/forecasts.
func WithStream(serve echo.HandlerFunc) HandlerOption {
	return func(h *ForecastEchoHandler) { h.stream = serve }
}

func NewForecastEchoHandler(logger *xlogger.Logger, svc *usecase.PredictionService, opts ...HandlerOption) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	h := &ForecastEchoHandler{logger: logger, svc: svc, ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	limited := []echo.MiddlewareFunc{}
	if h.limiter != nil {
		limited = append(limited, middleware.RateLimit(h.limiter))
	}
	e.GET("/", h.Predict, limited...)
	e.GET("/predict", h.Predict, limited...)
	e.POST("/predict", h.Predict, limited...)
	e.POST("/observations", h.Ingest, limited...)
	e.GET("/analytics", h.Analytics)
	e.GET("/health", h.Health)
	e.GET("/thresholds", h.Thresholds)
	if h.stream != nil {
		e.GET("/ws/forecasts", h.stream)
	}
}

func observe(endpoint string, start time.Time) {
	apimetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// Predict returns the next-hour forecast. An unavailable forecast is still a
// 200 with current=null so the dashboard can render it.
func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	start := time.Now()
	defer observe("predict", start)
	ctx := c.Request().Context()

	key := icache.ForecastKey(h.svc.HistoryTail(), features.NextHour(h.svc.Now()))
	if b, ok := h.cached(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	snap := h.svc.Snapshot(ctx)
	resp := models.PredictResponse{
		NextHour:    xutil.FormatHour(snap.TargetTime),
		ModelStatus: snap.ModelLoaded,
		Threshold:   snap.Thresholds,
	}
	if !snap.Available {
		resp.Reason = snap.Reason
		return xhttp.JSONResponse(c, resp)
	}
	value, tier := snap.Forecast.Value, snap.Forecast.Tier
	resp.Current = &value
	resp.Alert = &tier

	b, err := json.Marshal(resp)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("predict").Inc()
		h.logger.Error("encode prediction", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.store(ctx, key, b)
	return c.JSONBlob(http.StatusOK, b)
}

func (h *ForecastEchoHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(ctx, key)
	switch {
	case err != nil:
		apimetrics.CacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("prediction cache get", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	case !ok:
		apimetrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	apimetrics.CacheLookups.WithLabelValues("hit").Inc()
	return b, true
}

func (h *ForecastEchoHandler) store(ctx context.Context, key string, b []byte) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetBytes(ctx, key, b, h.ttl); err != nil {
		h.logger.Warn("prediction cache set", xlogger.String("key", key), xlogger.Error(err))
	}
}

// Analytics returns the last `hours` observations (all of them when hours is
// omitted) with their tiers and the next-hour point.
func (h *ForecastEchoHandler) Analytics(c echo.Context) error {
	start := time.Now()
	defer observe("analytics", start)
	req := &models.AnalyticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	history := h.svc.ClassifyHistory(ctx)
	if len(history) == 0 {
		apimetrics.APIErrors.WithLabelValues("analytics").Inc()
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("No data available"))
	}
	if req.Hours > 0 && len(history) > req.Hours {
		history = history[len(history)-req.Hours:]
	}

	resp := models.AnalyticsResponse{
		Timestamps: make([]string, len(history)),
		Actual:     make([]int, len(history)),
		Alerts:     make([]models.AlertTier, len(history)),
		Thresholds: h.svc.Thresholds(),
	}
	for i, co := range history {
		resp.Timestamps[i] = xutil.FormatChart(co.Timestamp)
		resp.Actual[i] = co.Patients
		resp.Alerts[i] = co.Tier
	}

	snap := h.svc.Snapshot(ctx)
	resp.NextHour.Timestamp = xutil.FormatChart(snap.TargetTime)
	if snap.Available {
		value, tier := snap.Forecast.Value, snap.Forecast.Tier
		resp.NextHour.Prediction = &value
		resp.NextHour.Alert = &tier
	}
	return xhttp.JSONResponse(c, resp)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	hs := h.svc.Health(c.Request().Context())
	return xhttp.JSONResponse(c, models.HealthResponse{
		Status:              "healthy",
		ModelLoaded:         hs.ModelLoaded,
		HistoryAvailable:    hs.HistoryAvailable,
		HistoryLength:       hs.HistoryLength,
		CurrentTime:         hs.CurrentTime.Format(time.RFC3339),
		AlertThresholds:     hs.Thresholds,
		PredictionFrequency: "hourly",
		Archive:             hs.Archive,
	})
}

func (h *ForecastEchoHandler) Thresholds(c echo.Context) error {
	return xhttp.JSONResponse(c, h.svc.Thresholds())
}

// Ingest appends one observation. Stale timestamps are a 409.
func (h *ForecastEchoHandler) Ingest(c echo.Context) error {
	start := time.Now()
	defer observe("observations", start)
	req := &models.IngestObservationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ts, ok := xutil.ParseTime(req.Timestamp)
	if !ok {
		return xhttp.AppErrorResponse(c,
			xhttp.BadRequestErrorf("unrecognised timestamp %q", req.Timestamp).WithParam("field", "timestamp"))
	}

	obs := models.Observation{Timestamp: ts, Patients: req.Patients}
	ctx := c.Request().Context()
	if err := h.svc.Ingest(ctx, obs); err != nil {
		apimetrics.APIErrors.WithLabelValues("observations").Inc()
		return xhttp.AppErrorResponse(c, ingestError(err))
	}
	h.logger.Debug("observation ingested",
		xlogger.Time("ts", ts),
		xlogger.Int("patients", req.Patients),
	)
	return xhttp.CreatedResponse(c, models.IngestResponse{
		Observation:   obs,
		Alert:         h.svc.Classify(obs.Patients),
		HistoryLength: h.svc.HistoryLength(),
	})
}

func ingestError(err error) error {
	var ooo *models.OutOfOrderError
	switch {
	case errors.As(err, &ooo):
		return xhttp.ConflictError(ooo.Error()).WithParam("tail", ooo.Tail.Format(time.RFC3339)).WithError(err)
	case errors.Is(err, models.ErrInvalidObservation):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("ingest failed").WithError(err)
	}
}
