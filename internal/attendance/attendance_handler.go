package attendance

import (
	"net/http"
	"time"

	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) CheckIn(c *gin.Context) {
	employeeID := c.GetString("employee_id")

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), employeeID, time.Now().UTC(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	employeeID := c.GetString("employee_id")

	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), employeeID, time.Now().UTC(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	approverID := c.GetString("employee_id")
	id := c.Param("id")

	if err := h.service.Approve(c.Request.Context(), approverID, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"approved": true}, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	approverID := c.GetString("employee_id")
	id := c.Param("id")

	if err := h.service.Reject(c.Request.Context(), approverID, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rejected": true}, nil)
}

func (h *Handler) GetMine(c *gin.Context) {
	employeeID := c.GetString("employee_id")

	resp, err := h.service.GetAllByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	summary, err := h.service.MonthlySummary(c.Request.Context(), q.EmployeeID, q.Month, q.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, MonthlySummaryResponse{
		EmployeeID:    q.EmployeeID,
		Month:         q.Month,
		Year:          q.Year,
		DaysPresent:   summary.DaysPresent,
		OvertimeHours: summary.OvertimeHours,
	}, nil)
}
