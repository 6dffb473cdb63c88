package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/application/pricing"
	"github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/interfaces/http/dto"
)

// JobHandler handles job pricing and the purchase order cascade
type JobHandler struct {
	BaseHandler
	jobs    *pricing.JobService
	cascade *trade.CascadeService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobs *pricing.JobService, cascade *trade.CascadeService) *JobHandler {
	return &JobHandler{jobs: jobs, cascade: cascade}
}

// Quote godoc
// @ID           quotePricing
// @Summary      Price a job without storing it
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body pricing.QuoteRequest true "Size, quantity and mode"
// @Success      200 {object} APIResponse[pricing.AllocationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /pricing/quote [post]
func (h *JobHandler) Quote(c *gin.Context) {
	var req pricing.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.jobs.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Create godoc
// @ID           createJob
// @Summary      Create and price a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        request body pricing.CreateJobRequest true "Job"
// @Success      201 {object} APIResponse[pricing.JobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req pricing.CreateJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	j, err := h.jobs.CreateJob(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, j)
}

// Get returns a job by id or job number
// @ID           getJob
// @Tags         jobs
// @Param        id path string true "Job ID or job number"
// @Success      200 {object} APIResponse[pricing.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	var (
		j   *pricing.JobResponse
		err error
	)
	if id, perr := uuid.Parse(c.Param("id")); perr == nil {
		j, err = h.jobs.GetJob(c.Request.Context(), id)
	} else {
		j, err = h.jobs.GetJobByNo(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, j)
}

// List pages through jobs
// @ID           listJobs
// @Tags         jobs
// @Param        approval query string false "NOT_REQUIRED, PENDING or APPROVED"
// @Param        customer_id query string false "Customer ID"
// @Param        allocation_mode query string false "Allocation mode"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} APIResponse[[]pricing.JobResponse]
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var filter pricing.JobListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	result, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

type approveBody struct {
	ApprovedBy string `json:"approved_by" binding:"max=100"`
}

// Approve godoc
// @ID           approveJob
// @Summary      Approve an undercharged job
// @Description  approved_by defaults to the X-Actor header
// @Tags         jobs
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[pricing.JobResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /jobs/{id}/approve [post]
func (h *JobHandler) Approve(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "job")
	if !ok {
		return
	}
	var body approveBody
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &body) {
		return
	}
	approvedBy := body.ApprovedBy
	if approvedBy == "" {
		approvedBy = getActor(c, "")
	}
	if approvedBy == "" {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "approved_by", Message: "This field is required"}})
		return
	}

	j, err := h.jobs.ApproveJob(c.Request.Context(), id, pricing.ApproveJobRequest{ApprovedBy: approvedBy})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, j)
}

// Reprice recomputes a job's financials while it has no purchase orders
// @ID           repriceJob
// @Tags         jobs
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[pricing.JobResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /jobs/{id}/reprice [post]
func (h *JobHandler) Reprice(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "job")
	if !ok {
		return
	}
	var req pricing.RepriceJobRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	j, err := h.jobs.RepriceJob(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, j)
}

// Cascade godoc
// @ID           cascadeJob
// @Summary      Issue the job's purchase order chain
// @Description  Idempotent. Answers 201 when at least one leg was created.
// @Tags         jobs
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[trade.CascadeResult]
// @Success      201 {object} APIResponse[trade.CascadeResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /jobs/{id}/cascade [post]
func (h *JobHandler) Cascade(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "job")
	if !ok {
		return
	}
	result, err := h.cascade.EnsureCascade(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.CreatedCount() > 0 {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// PurchaseOrders lists the purchase orders of a job
// @ID           listJobPurchaseOrders
// @Tags         jobs
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[[]trade.PurchaseOrderResponse]
// @Router       /jobs/{id}/purchase-orders [get]
func (h *JobHandler) PurchaseOrders(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "job")
	if !ok {
		return
	}
	orders, err := h.cascade.ListForJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
