package api

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/analytics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/usecase"
	xhttp "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/http"
	xlogger "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// refreshTimeout bounds a reload triggered over HTTP.
const refreshTimeout = 15 * time.Minute

// DashboardEchoHandler serves the loaded data set over HTTP.
type DashboardEchoHandler struct {
	logger     *xlogger.Logger
	dm         *usecase.DataManager
	refreshing atomic.Bool
	refreshed  chan struct{} // signalled after each background refresh; nil when unused
}

func NewDashboardEchoHandler(logger *xlogger.Logger, dm *usecase.DataManager) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{logger: logger, dm: dm}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/assets", h.Assets)
	g.GET("/series", h.Series)
	g.GET("/raw", h.Raw)
	g.GET("/correlation", h.Correlation)
	g.GET("/change", h.Change)
	g.POST("/refresh", h.Refresh)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	if _, err := h.dm.Snapshot(); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("data not loaded yet"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) Status(c echo.Context) error {
	res := models.StatusResponse{CoinStatus: h.dm.Status()}
	if ds, err := h.dm.Snapshot(); err == nil {
		res.RunID = ds.RunID
		res.LoadedAt = ds.LoadedAt.UTC().Format(time.RFC3339)
		res.Corrections = h.dm.Corrections()
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Assets(c echo.Context) error {
	ds, _ := h.dm.Snapshot()
	reg := h.dm.Registry()
	out := make([]models.AssetView, 0, len(reg))
	for _, a := range reg {
		v := models.AssetView{AssetDescriptor: a}
		if ds != nil {
			_, v.Loaded = ds.Value[a.Symbol]
			_, v.Corrected = ds.Corrections[a.Symbol]
		}
		out = append(out, v)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := req.TransformConfig()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("", err.Error()))
	}

	res, err := h.dm.Transform(cfg)
	if err != nil {
		h.logger.Error("series usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	ds, _ := h.dm.Snapshot()
	out := models.SeriesResponse{
		Order:  res.Order,
		Series: make(map[string][]models.Point, len(res.Series)),
		Meta:   make(map[string]models.Meta, len(res.Order)),
	}
	for _, sym := range res.Order {
		out.Series[sym] = res.Series[sym].Points()
		if sym == models.DomSymbol {
			out.Meta[sym] = models.Meta{Category: models.DomCategory, Group: models.DomGroup}
		} else if ds != nil {
			out.Meta[sym] = ds.Meta[sym]
		}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardEchoHandler) Raw(c echo.Context) error {
	req := &models.RawRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ds, err := h.dm.Snapshot()
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	v, ok := ds.Value[req.Symbol]
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("symbol %s is not loaded", req.Symbol).WithError(usecase.ErrUnknownSymbol))
	}
	out := models.RawResponse{Symbol: req.Symbol, MarketCap: v.Points(), Price: ds.Price[req.Symbol].Points()}
	if ev, ok := ds.Corrections[req.Symbol]; ok {
		out.Correction = &ev
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardEchoHandler) Correlation(c echo.Context) error {
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := req.TransformConfig()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("", err.Error()))
	}
	mode, err := models.ParseCorrMode(req.Mode)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("mode", err.Error()))
	}

	res, err := h.dm.Correlation(cfg, req.A, req.B, mode)
	if errors.Is(err, analytics.ErrCorrelationOff) {
		return xhttp.SuccessResponse(c, analytics.CorrelationResult{Mode: mode.String()})
	}
	if err != nil {
		h.logger.Warn("correlation usecase error", xlogger.String("a", req.A), xlogger.String("b", req.B), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Change(c echo.Context) error {
	req := &models.ChangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	days := req.Days
	if days == 0 {
		days = analytics.Timeframes[req.Timeframe]
	}

	res, err := h.dm.Change(req.Symbol, days, req.Metric)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// Refresh starts a background reload. A reload already in flight is not
// started twice.
func (h *DashboardEchoHandler) Refresh(c echo.Context) error {
	if !h.refreshing.CompareAndSwap(false, true) {
		return xhttp.AcceptedResponse(c, map[string]string{"status": "already_running"})
	}
	go func() {
		defer h.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if _, err := h.dm.Load(ctx); err != nil {
			h.logger.Warn("refresh failed", xlogger.Error(err))
		}
		if h.refreshed != nil {
			h.refreshed <- struct{}{}
		}
	}()
	return xhttp.AcceptedResponse(c, map[string]string{"status": "started"})
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrNotLoaded), errors.Is(err, usecase.ErrNoData):
		return xhttp.UnavailableError("data not loaded yet").WithError(err)
	case errors.Is(err, usecase.ErrUnknownSymbol), errors.Is(err, analytics.ErrSymbolNotShown):
		return xhttp.NotFoundErrorf("%v", err).WithError(err)
	case errors.Is(err, analytics.ErrInsufficientOverlap), errors.Is(err, usecase.ErrNoChange):
		return xhttp.UnprocessableErrorf("%v", err).WithError(err)
	case errors.Is(err, usecase.ErrUnknownMetric),
		errors.Is(err, models.ErrUnknownSmoothing),
		errors.Is(err, models.ErrUnknownView),
		errors.Is(err, models.ErrUnknownGroup),
		errors.Is(err, models.ErrUnknownCorrMode):
		return xhttp.BadRequestError("", err.Error()).WithError(err)
	default:
		return xhttp.InternalErrorf("internal error").WithError(err)
	}
}
