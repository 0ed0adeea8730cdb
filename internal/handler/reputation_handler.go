package handler

import (
	"net/http"

	"supplier-portal/internal/service"

	"github.com/labstack/echo/v4"
)

// SessionHeader identifies the caller's reputation session
const SessionHeader = "X-Session-ID"

// LookupRequest is a company reputation query
type LookupRequest struct {
	Query string `json:"query" validate:"required"`
}

// ReputationHandler serves company reputation lookups
type ReputationHandler struct {
	desk *service.ReputationDesk
}

// NewReputationHandler creates a reputation handler
func NewReputationHandler(desk *service.ReputationDesk) *ReputationHandler {
	return &ReputationHandler{desk: desk}
}

// Lookup runs a lookup for the caller's session
func (h *ReputationHandler) Lookup(c echo.Context) error {
	var req LookupRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	report, err := h.desk.Lookup(c.Request().Context(), sessionID(c), req.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Current returns the session's latest settled lookup
func (h *ReputationHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, h.desk.Current(sessionID(c)))
}

func sessionID(c echo.Context) string {
	if id := c.Request().Header.Get(SessionHeader); id != "" {
		return id
	}
	return service.DefaultSession
}
