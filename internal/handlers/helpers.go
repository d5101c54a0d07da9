package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/services"
)

// getUserIDFromContext returns the authenticated user id, or 0 for an
// anonymous request
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	return 0
}

// serviceError maps the interaction error taxonomy to HTTP responses.
// Storage failures are logged in full and returned as a generic 500.
func serviceError(err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMessage)
	case errors.Is(err, services.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	case errors.Is(err, services.ErrDuplicateInteraction):
		return echo.NewHTTPError(http.StatusConflict, "Interação já registrada")
	default:
		log.Printf("storage failure: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// internalError logs the underlying failure and hides it from the client
func internalError(err error) error {
	log.Printf("storage failure: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Erro interno do servidor")
}
