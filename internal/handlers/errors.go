package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/digitalblog/backoffice/internal/admin"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// httpError maps service errors onto HTTP statuses.
func httpError(err error) error {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, admin.ErrUnknownView), repositories.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case repositories.IsIntegrityViolation(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrPayloadDecode):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, admin.ErrInvalidInput), errors.Is(err, repositories.ErrInvalidKey), errors.As(err, &validationErrs):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
