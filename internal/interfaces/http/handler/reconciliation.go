package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	recapp "github.com/printchain/backend/internal/application/reconciliation"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/infrastructure/export"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"github.com/printchain/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ReconciliationHandler exposes the purchase order and invoice audit
type ReconciliationHandler struct {
	BaseHandler
	audits *recapp.AuditService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(audits *recapp.AuditService) *ReconciliationHandler {
	return &ReconciliationHandler{audits: audits}
}

// RepairResult reports one repair. Log is absent when the pair was already
// in sync.
type RepairResult struct {
	Repaired bool                    `json:"repaired"`
	Log      *recapp.SyncLogResponse `json:"log,omitempty"`
}

// Audit godoc
// @ID           auditReconciliation
// @Summary      Compare purchase orders with their settlement invoices
// @Description  Read only. format=csv|xlsx|table downloads the report as a file.
// @Tags         reconciliation
// @Produce      json
// @Param        format query string false "json (default), csv, xlsx or table"
// @Param        job_id query []string false "Job IDs" collectionFormat(multi)
// @Param        job_no query []string false "Job numbers" collectionFormat(multi)
// @Param        from query string false "Purchase orders created at or after (RFC3339 or YYYY-MM-DD)"
// @Param        before query string false "Purchase orders created before (RFC3339 or YYYY-MM-DD)"
// @Success      200 {object} APIResponse[recapp.AuditReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reconciliation/audit [get]
func (h *ReconciliationHandler) Audit(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	var exportFormat export.Format
	if format != "json" {
		f, err := export.ParseFormat(format)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		exportFormat = f
	}

	report, err := h.audits.Audit(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if format == "json" {
		h.Success(c, recapp.ToAuditReportResponse(report))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, exportFormat, report); err != nil {
		logger.GetGinLogger(c).Error("Audit export failed", zap.String("format", format), zap.Error(err))
		h.InternalError(c, "Failed to render audit report")
		return
	}
	filename := fmt.Sprintf("audit-%s.%s", report.GeneratedAt.Format("20060102-150405"), exportFormat.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exportFormat.ContentType(), buf.Bytes())
}

// AuditAndRepair godoc
// @ID           auditAndRepairReconciliation
// @Summary      Audit and repair every mismatched invoice in scope
// @Tags         reconciliation
// @Success      200 {object} APIResponse[recapp.AuditReportResponse]
// @Router       /reconciliation/audit [post]
func (h *ReconciliationHandler) AuditAndRepair(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	report, err := h.audits.AuditAndRepair(c.Request.Context(), scope, getActor(c, ""), reconciliation.TriggerManualAudit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recapp.ToAuditReportResponse(report))
}

// Repair godoc
// @ID           repairReconciliation
// @Summary      Set one settlement invoice to its purchase order's vendor amount
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        request body recapp.RepairRequest true "Invoice and purchase order"
// @Success      200 {object} APIResponse[RepairResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /reconciliation/repair [post]
func (h *ReconciliationHandler) Repair(c *gin.Context) {
	var req recapp.RepairRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actor := req.Actor
	if actor == "" {
		actor = getActor(c, "")
	}
	entry, err := h.audits.Repair(c.Request.Context(), reconciliation.Mismatch{
		InvoiceID:       req.InvoiceID,
		PurchaseOrderID: req.PurchaseOrderID,
	}, actor, reconciliation.TriggerManualAudit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if entry == nil {
		h.Success(c, RepairResult{})
		return
	}
	log := recapp.ToSyncLogResponse(entry)
	h.Success(c, RepairResult{Repaired: true, Log: &log})
}

// Logs godoc
// @ID           listSyncLogs
// @Summary      List sync log entries, newest first
// @Tags         reconciliation
// @Param        subjectId query string false "Invoice or purchase order ID"
// @Param        trigger query string false "PO_UPDATE, MANUAL_AUDIT or SCHEDULED_AUDIT"
// @Param        since query string false "RFC3339 or YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]recapp.SyncLogResponse]
// @Router       /reconciliation/logs [get]
func (h *ReconciliationHandler) Logs(c *gin.Context) {
	filter := recapp.SyncLogListFilter{
		Trigger:  strings.ToUpper(c.Query("trigger")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if filter.Trigger != "" && !reconciliation.Trigger(filter.Trigger).IsValid() {
		h.BadRequest(c, "Invalid trigger")
		return
	}
	subject := c.Query("subjectId")
	if subject == "" {
		subject = c.Query("subject_id")
	}
	if subject != "" {
		id, err := uuid.Parse(subject)
		if err != nil {
			h.BadRequest(c, "Invalid subject ID")
			return
		}
		filter.SubjectID = &id
	}
	if since := c.Query("since"); since != "" {
		t, err := parseQueryTime(since)
		if err != nil {
			h.BadRequest(c, "Invalid since")
			return
		}
		filter.Since = &t
	}

	result, err := h.audits.Logs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ReconciliationHandler) scope(c *gin.Context) (reconciliation.Scope, bool) {
	var scope reconciliation.Scope
	for _, raw := range c.QueryArray("job_id") {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid job ID")
			return scope, false
		}
		scope.JobIDs = append(scope.JobIDs, id)
	}
	scope.JobNos = append(c.QueryArray("job_no"), c.QueryArray("jobNo")...)

	for key, dst := range map[string]**time.Time{"from": &scope.From, "before": &scope.Before} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := parseQueryTime(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+key+" time")
			return scope, false
		}
		*dst = &t
	}
	return scope, true
}

func parseQueryTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
