package handler

import (
	"net/http"

	"supplier-portal/internal/service"

	"github.com/labstack/echo/v4"
)

// SupplierHandler serves the public ranking views
type SupplierHandler struct {
	suppliers *service.SupplierService
	issues    *service.IssueService
}

// NewSupplierHandler creates a supplier handler
func NewSupplierHandler(suppliers *service.SupplierService, issues *service.IssueService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers, issues: issues}
}

// List returns the ranking filtered by ?q= and ?segment=
func (h *SupplierHandler) List(c echo.Context) error {
	rows, err := h.suppliers.Ranking(c.Request().Context(), service.RankingFilter{
		Query:   c.QueryParam("q"),
		Segment: c.QueryParam("segment"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"suppliers": rows,
		"count":     len(rows),
	})
}

// Segments returns the segment filter options
func (h *SupplierHandler) Segments(c echo.Context) error {
	segments, err := h.suppliers.Segments(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"segments": segments})
}

// Get returns one supplier with its classification
func (h *SupplierHandler) Get(c echo.Context) error {
	detail, err := h.suppliers.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Issues returns the ledger entries related to a supplier
func (h *SupplierHandler) Issues(c echo.Context) error {
	issues, err := h.issues.ForSupplier(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"issues": issues})
}
