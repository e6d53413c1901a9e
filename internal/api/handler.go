// Package api exposes evaluation results and alert ingestion over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"AlertSentinel/internal/collector"
	"AlertSentinel/internal/metrics"
	"AlertSentinel/internal/model"
	"AlertSentinel/internal/state"
	"AlertSentinel/internal/store"
	"AlertSentinel/internal/strategy"
	"AlertSentinel/internal/window"
)

// Handler serves the sentinel's JSON API.
type Handler struct {
	Engine    *strategy.Engine
	Collector *collector.Collector
	Store     store.Store
	Tracker   *state.Tracker
	Metrics   *metrics.Recorder
	Now       func() time.Time
}

// NewHandler creates a Handler using the wall clock.
func NewHandler(eng *strategy.Engine, col *collector.Collector, st store.Store, tr *state.Tracker, rec *metrics.Recorder) *Handler {
	return &Handler{Engine: eng, Collector: col, Store: st, Tracker: tr, Metrics: rec, Now: time.Now}
}

// RegisterRoutes mounts the health check and the /api group on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/scores", h.Scores)
	g.GET("/last-action", h.LastAction)
	g.GET("/alerts/groups", h.AlertGroups)
	g.GET("/alerts/expiry", h.AlertExpiry)
	g.POST("/alerts", h.IngestAlert)
	g.GET("/strategies", h.ListStrategies)
	g.POST("/strategies", h.SaveStrategy)
	g.GET("/timeframes", h.GetTimeframes)
	g.PUT("/timeframes", h.PutTimeframes)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Scores returns the latest evaluation result.
func (h *Handler) Scores(c echo.Context) error {
	res, ok := h.Tracker.Latest()
	if !ok {
		return notFoundResponse(c, "no evaluation yet")
	}
	return successResponse(c, res)
}

// LastAction returns the latest resolved action, or 204 when none triggered.
func (h *Handler) LastAction(c echo.Context) error {
	res, ok := h.Tracker.Latest()
	if !ok {
		return notFoundResponse(c, "no evaluation yet")
	}
	if res.LastAction == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return successResponse(c, res.LastAction)
}

// AlertGroups lists live alerts grouped by ticker, or by ticker and timeframe.
func (h *Handler) AlertGroups(c echo.Context) error {
	req := &GroupsRequest{}
	if verrs := readAndValidateRequest(c, req); verrs != nil {
		return badRequestResponse(c, verrs)
	}
	snap, err := h.Collector.Collect(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("collect for alert groups")
		return internalErrorResponse(c)
	}
	groups := h.Engine.Groups(snap, h.Now(), req.By == "timeframe")
	if groups == nil {
		groups = []model.TickerGroup{}
	}
	return successResponse(c, groups)
}

// AlertExpiry lists recent alerts with their lifecycle state and countdown.
func (h *Handler) AlertExpiry(c echo.Context) error {
	snap, err := h.Collector.Collect(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("collect for alert expiry")
		return internalErrorResponse(c)
	}
	now := h.Now()
	f := window.NewFilter(snap.Timeframes)
	out := make([]AlertExpiry, 0, len(snap.Alerts))
	for _, a := range snap.Alerts {
		out = append(out, AlertExpiry{
			Alert:     a,
			State:     string(f.Classify(a, now)),
			ExpiresIn: f.TimeUntilExpiry(a, now),
		})
	}
	return successResponse(c, out)
}

// IngestAlert stores a webhook alert, stamping an ID and receive time when absent.
func (h *Handler) IngestAlert(c echo.Context) error {
	req := &AlertRequest{}
	if verrs := readAndValidateRequest(c, req); verrs != nil {
		return badRequestResponse(c, verrs)
	}
	a := req.toAlert()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.RawTime() == "" {
		a.Timestamp = h.Now().UTC().Format(time.RFC3339)
	}
	if err := h.Store.SaveAlert(c.Request().Context(), a); err != nil {
		h.Metrics.RecordError("ingest")
		log.Error().Err(err).Str("ticker", a.Ticker).Msg("save alert")
		return internalErrorResponse(c)
	}
	h.Metrics.RecordIngested()
	log.Debug().Str("ticker", a.Ticker).Str("indicator", a.Indicator).Str("trigger", a.Trigger).Msg("alert ingested")
	return createdResponse(c, a)
}

// ListStrategies returns strategies in authored order.
func (h *Handler) ListStrategies(c echo.Context) error {
	list, err := h.Store.Strategies(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("list strategies")
		return internalErrorResponse(c)
	}
	if list == nil {
		list = []model.Strategy{}
	}
	return successResponse(c, list)
}

// SaveStrategy creates or updates a strategy.
func (h *Handler) SaveStrategy(c echo.Context) error {
	req := &StrategyRequest{}
	if verrs := readAndValidateRequest(c, req); verrs != nil {
		return badRequestResponse(c, verrs)
	}
	saved, err := h.Store.SaveStrategy(c.Request().Context(), req.toStrategy())
	if err != nil {
		log.Error().Err(err).Str("strategy", req.Name).Msg("save strategy")
		return internalErrorResponse(c)
	}
	return createdResponse(c, saved)
}

// GetTimeframes returns the stored retention windows, falling back to the static config.
func (h *Handler) GetTimeframes(c echo.Context) error {
	cfg, err := h.Store.TimeframeConfig(c.Request().Context())
	switch {
	case err == nil:
		return successResponse(c, cfg)
	case errors.Is(err, store.ErrNotFound):
		if h.Collector.Timeframes != nil {
			return successResponse(c, h.Collector.Timeframes)
		}
		return notFoundResponse(c, "no retention windows configured")
	default:
		log.Error().Err(err).Msg("load timeframe config")
		return internalErrorResponse(c)
	}
}

// PutTimeframes replaces the stored retention windows.
func (h *Handler) PutTimeframes(c echo.Context) error {
	req := &model.TimeframeConfig{}
	if verrs := readAndValidateRequest(c, req); verrs != nil {
		return badRequestResponse(c, verrs)
	}
	if err := h.Store.SaveTimeframeConfig(c.Request().Context(), *req); err != nil {
		log.Error().Err(err).Msg("save timeframe config")
		return internalErrorResponse(c)
	}
	return successResponse(c, req)
}
