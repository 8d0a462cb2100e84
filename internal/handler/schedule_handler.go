package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/dto"
	"github.com/Ross1116/sitespace-app-sub000/internal/reschedule"
	"github.com/Ross1116/sitespace-app-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

type ScheduleHandler struct {
	svc       service.ScheduleService
	startHour int
	endHour   int
}

func NewScheduleHandler(svc service.ScheduleService, startHour, endHour int) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, startHour: startHour, endHour: endHour}
}

func (h *ScheduleHandler) RegisterRoutes(e *echo.Echo) {
	schedule := e.Group("/api/v1/schedule")
	schedule.GET("/day", h.DayView)
	schedule.POST("/refresh", h.Refresh)
	schedule.POST("/events/:id/reschedule", h.Reschedule)
	schedule.POST("/drafts", h.InsertDrafts)
}

func (h *ScheduleHandler) DayView(c echo.Context) error {
	day, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	columns, err := h.svc.DayView(day)
	if err != nil {
		if errors.Is(err, service.ErrNoDayLoaded) || errors.Is(err, service.ErrDayNotLoaded) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.DayViewResponse{
		Date:      day.Format("2006-01-02"),
		StartHour: h.startHour,
		EndHour:   h.endHour,
		Columns:   columns,
	})
}

func (h *ScheduleHandler) Refresh(c echo.Context) error {
	project := c.QueryParam("project")
	if project == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project is required")
	}
	day, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	if err := h.svc.RefreshDay(c.Request().Context(), project, day); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ScheduleHandler) Reschedule(c echo.Context) error {
	eventID := c.Param("id")

	var req dto.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AssetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "asset_id is required")
	}

	proposal, err := h.svc.Reschedule(c.Request().Context(), req.AssetID, eventID, req.DeltaPx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssetNotFound),
			errors.Is(err, reschedule.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, reschedule.ErrCrossDay),
			errors.Is(err, reschedule.ErrOutsideHours):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, reschedule.ErrMaintenanceBlocked),
			errors.Is(err, reschedule.ErrAssetBlocked),
			errors.Is(err, reschedule.ErrCommitInFlight),
			errors.Is(err, reschedule.ErrNotIdle),
			errors.Is(err, service.ErrCollapsedTile):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			// Commit failures: local state is already rolled back, the
			// backend's message is surfaced as-is.
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToRescheduleResponse(proposal))
}

func (h *ScheduleHandler) InsertDrafts(c echo.Context) error {
	var req dto.DraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Drafts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one draft is required")
	}

	placed := h.svc.InsertDrafts(req.Drafts)
	return c.JSON(http.StatusCreated, dto.DraftResponse{Placed: placed})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
