package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/digitalblog/backoffice/internal/admin"
	"github.com/digitalblog/backoffice/internal/middleware"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/labstack/echo/v4"
)

// query parameters of the list endpoints that are not column filters
var reservedParams = map[string]bool{"page": true, "q": true, "sort": true, "desc": true}

// AdminHandler serves the back-office views.
type AdminHandler struct {
	service       *admin.Service
	notifications repositories.NotificationRepository
}

func NewAdminHandler(service *admin.Service, notifications repositories.NotificationRepository) *AdminHandler {
	return &AdminHandler{service: service, notifications: notifications}
}

// RegisterAdminRoutes registers the view routes on the gated admin group.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("", h.Index)
	g.GET("/", h.Index)
	g.GET("/notification/:key/payload", h.NotificationPayload)
	g.GET("/:view", h.List)
	g.GET("/:view/export.csv", h.Export)
	g.GET("/:view/:key", h.Get)
	g.POST("/:view", h.Create)
	g.PATCH("/:view/:key", h.Update)
	g.DELETE("/:view/:key", h.Delete)
}

// Index describes the back-office: its name, the menu and the extra links.
func (h *AdminHandler) Index(c echo.Context) error {
	reg := h.service.Registry()
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"name":  reg.Name,
			"menu":  reg.Menu(),
			"links": reg.Links,
		},
	})
}

func listQuery(c echo.Context) admin.ListQuery {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	desc, _ := strconv.ParseBool(c.QueryParam("desc"))

	q := admin.ListQuery{
		Page:    page,
		Search:  c.QueryParam("q"),
		Sort:    c.QueryParam("sort"),
		Desc:    desc,
		Filters: map[string]string{},
	}
	for name, values := range c.QueryParams() {
		if reservedParams[name] || len(values) == 0 {
			continue
		}
		q.Filters[name] = values[0]
	}
	return q
}

// List returns one page of a view
func (h *AdminHandler) List(c echo.Context) error {
	page, err := h.service.List(c.Request().Context(), c.Param("view"), listQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    page.Items,
		"meta": echo.Map{
			"view":            page.View,
			"currentPage":     page.Page,
			"totalPages":      page.TotalPages,
			"totalItems":      page.Total,
			"itemsPerPage":    page.PageSize,
			"hasNextPage":     page.Page < page.TotalPages,
			"hasPreviousPage": page.Page > 1,
		},
	})
}

// Export streams the filtered rows of a view as CSV
func (h *AdminHandler) Export(c echo.Context) error {
	slug := c.Param("view")
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+slug+`.csv"`)

	if err := h.service.Export(c.Request().Context(), slug, listQuery(c), res); err != nil {
		if res.Committed {
			slog.Error("export interrupted", "view", slug, "error", err)
			return nil
		}
		res.Header().Del(echo.HeaderContentDisposition)
		return httpError(err)
	}
	return nil
}

func (h *AdminHandler) Get(c echo.Context) error {
	row, err := h.service.Get(c.Request().Context(), c.Param("view"), c.Param("key"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": row})
}

func (h *AdminHandler) Create(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	row, err := h.service.Create(c.Request().Context(), middleware.CallerFrom(c), c.Param("view"), body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": row})
}

func (h *AdminHandler) Update(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	row, err := h.service.Update(c.Request().Context(), middleware.CallerFrom(c), c.Param("view"), c.Param("key"), body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": row})
}

func (h *AdminHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), middleware.CallerFrom(c), c.Param("view"), c.Param("key")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// NotificationPayload returns the payload of a notification as stored; a
// payload that is not valid JSON is reported as 422.
func (h *AdminHandler) NotificationPayload(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("key"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification id")
	}
	data, err := h.notifications.GetPayload(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}
