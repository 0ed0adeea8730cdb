package handler

import (
	"net/http"

	"supplier-portal/internal/service"
	"supplier-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EvaluationHandler serves order lookup, rating and issue reporting
type EvaluationHandler struct {
	evaluations *service.EvaluationService
	issues      *service.IssueService
}

// NewEvaluationHandler creates an evaluation handler
func NewEvaluationHandler(evaluations *service.EvaluationService, issues *service.IssueService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, issues: issues}
}

// LookupOrder resolves an OC or FLUIG identifier to its supplier
func (h *EvaluationHandler) LookupOrder(c echo.Context) error {
	log := logger.FromContext(c)
	ref := c.Param("ref")

	match, err := h.evaluations.LookupOrder(c.Request().Context(), ref)
	if err != nil {
		log.Info("Order lookup missed", zap.String("reference", ref))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, match)
}

// Submit records a star rating for the supplier behind an order
func (h *EvaluationHandler) Submit(c echo.Context) error {
	var req service.EvaluationInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.evaluations.Submit(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// ReportIssue appends a problem report for an order
func (h *EvaluationHandler) ReportIssue(c echo.Context) error {
	var req service.IssueReport
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	record, err := h.issues.Report(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	logger.FromContext(c).Info("Issue recorded", zap.String("issue_id", record.ID))
	return c.JSON(http.StatusCreated, record)
}
