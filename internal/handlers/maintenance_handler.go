package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/digitalblog/backoffice/internal/audit"
	"github.com/digitalblog/backoffice/internal/middleware"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/labstack/echo/v4"
)

// auditReader is implemented by journals that can be read back.
type auditReader interface {
	Recent(ctx context.Context, view string, limit int64) ([]audit.Entry, error)
}

// MaintenanceHandler exposes counter upkeep and the admin journal.
type MaintenanceHandler struct {
	counters repositories.CounterRepository
	recorder audit.Recorder
}

func NewMaintenanceHandler(counters repositories.CounterRepository, recorder audit.Recorder) *MaintenanceHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &MaintenanceHandler{counters: counters, recorder: recorder}
}

func (h *MaintenanceHandler) RegisterMaintenanceRoutes(g *echo.Group) {
	g.POST("/maintenance/recount", h.Recount)
	g.GET("/maintenance/drift", h.Drift)
	g.GET("/maintenance/audit", h.Audit)
}

// Recount rewrites the cached counters from the join tables
func (h *MaintenanceHandler) Recount(c echo.Context) error {
	ctx := c.Request().Context()
	changed, err := h.counters.Recount(ctx)
	if err != nil {
		return httpError(err)
	}

	detail := make(map[string]interface{}, len(changed))
	for counter, n := range changed {
		detail[string(counter)] = n
	}
	caller := middleware.CallerFrom(c)
	err = h.recorder.Record(ctx, audit.Entry{
		ActorID:    caller.UserID,
		ActorEmail: caller.Email,
		Action:     audit.ActionRecount,
		View:       "maintenance",
		At:         time.Now().UTC(),
		Detail:     detail,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", audit.ActionRecount, "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": changed})
}

// Drift lists counters that disagree with their join tables
func (h *MaintenanceHandler) Drift(c echo.Context) error {
	drifts, err := h.counters.Drift(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if drifts == nil {
		drifts = []repositories.Drift{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": drifts})
}

// Audit returns the latest journal entries, optionally of one view
func (h *MaintenanceHandler) Audit(c echo.Context) error {
	reader, ok := h.recorder.(auditReader)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "audit journal not configured")
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	entries, err := reader.Recent(c.Request().Context(), c.QueryParam("view"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": entries})
}
