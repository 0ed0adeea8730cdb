package handler

import (
	"net/http"

	"supplier-portal/internal/middleware"
	"supplier-portal/internal/model"
	"supplier-portal/internal/service"
	"supplier-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WarningRequest carries the reason for a new warning
type WarningRequest struct {
	Reason string `json:"reason"`
}

// ImportRequest is a batch of new suppliers
type ImportRequest struct {
	Suppliers []*model.Supplier `json:"suppliers" validate:"required,min=1"`
}

// StatusRequest moves an issue forward
type StatusRequest struct {
	Status model.IssueStatus `json:"status" validate:"required"`
}

// ManagementHandler serves the restricted management area
type ManagementHandler struct {
	suppliers  *service.SupplierService
	penalties  *service.PenaltyService
	issues     *service.IssueService
	complaints *service.ComplaintService
	analyzer   *service.RiskAnalyzer
}

// NewManagementHandler creates a management handler
func NewManagementHandler(
	suppliers *service.SupplierService,
	penalties *service.PenaltyService,
	issues *service.IssueService,
	complaints *service.ComplaintService,
	analyzer *service.RiskAnalyzer,
) *ManagementHandler {
	return &ManagementHandler{
		suppliers:  suppliers,
		penalties:  penalties,
		issues:     issues,
		complaints: complaints,
		analyzer:   analyzer,
	}
}

// Dashboard returns the management counters
func (h *ManagementHandler) Dashboard(c echo.Context) error {
	d, err := h.suppliers.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// SearchSuppliers searches by name or tax id
func (h *ManagementHandler) SearchSuppliers(c echo.Context) error {
	found, err := h.suppliers.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"suppliers": found, "count": len(found)})
}

// ImportSuppliers adds a batch of suppliers
func (h *ManagementHandler) ImportSuppliers(c echo.Context) error {
	var req ImportRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	imported, err := h.suppliers.Import(c.Request().Context(), req.Suppliers)
	if err != nil {
		return respondError(c, err)
	}

	logger.FromContext(c).Info("Suppliers imported",
		zap.Int("count", len(imported)),
		zap.String("manager", middleware.ManagerFromContext(c)))
	return c.JSON(http.StatusCreated, echo.Map{"suppliers": imported, "count": len(imported)})
}

// ApplyWarning adds a strike to a supplier
func (h *ManagementHandler) ApplyWarning(c echo.Context) error {
	var req WarningRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	detail, err := h.penalties.ApplyWarning(c.Request().Context(), c.Param("id"), req.Reason, middleware.ManagerFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ResetWarnings clears a supplier's strikes
func (h *ManagementHandler) ResetWarnings(c echo.Context) error {
	detail, err := h.penalties.ResetWarnings(c.Request().Context(), c.Param("id"), middleware.ManagerFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// WarningLog returns a supplier's strikes
func (h *ManagementHandler) WarningLog(c echo.Context) error {
	log, err := h.penalties.WarningLog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"warning_logs": log})
}

// Analyze generates a new compliance risk opinion
func (h *ManagementHandler) Analyze(c echo.Context) error {
	analysis, err := h.analyzer.Analyze(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

// LatestAnalysis returns the stored compliance risk opinion
func (h *ManagementHandler) LatestAnalysis(c echo.Context) error {
	analysis, err := h.analyzer.Latest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

// ListIssues returns the ledger filtered by order_id, segment, status and supplier_id
func (h *ManagementHandler) ListIssues(c echo.Context) error {
	issues, err := h.issues.List(c.Request().Context(), service.IssueQuery{
		OrderID:    c.QueryParam("order_id"),
		Segment:    c.QueryParam("segment"),
		Status:     model.IssueStatus(c.QueryParam("status")),
		SupplierID: c.QueryParam("supplier_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"issues": issues, "count": len(issues)})
}

// AdvanceIssue moves an issue forward in its lifecycle
func (h *ManagementHandler) AdvanceIssue(c echo.Context) error {
	var req StatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	record, err := h.issues.AdvanceStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

// ListComplaints returns complaints filtered by ?status=
func (h *ManagementHandler) ListComplaints(c echo.Context) error {
	complaints, err := h.complaints.List(c.Request().Context(), model.ComplaintStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"complaints": complaints, "count": len(complaints)})
}

// RespondComplaint answers a pending complaint
func (h *ManagementHandler) RespondComplaint(c echo.Context) error {
	var req service.ComplaintReply
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	complaint, err := h.complaints.Respond(c.Request().Context(), c.Param("id"), req, middleware.ManagerFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, complaint)
}
