package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturemarket/lecturemarket-backend/internal/common"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/service"
	"github.com/lecturemarket/lecturemarket-backend/internal/scheduler"
)

// TaskLister 스케줄러 작업 조회
type TaskLister interface {
	GetTasks() []scheduler.TaskInfo
}

// BatchHandler 관리자 배치 핸들러
type BatchHandler struct {
	stats service.StatsService
	tasks TaskLister
}

// NewBatchHandler 생성자. tasks는 nil 가능 (스케줄러 비활성)
func NewBatchHandler(stats service.StatsService, tasks TaskLister) *BatchHandler {
	return &BatchHandler{stats: stats, tasks: tasks}
}

// RunPaymentStats POST /admin/batch/payment-stats?date=YYYY-MM-DD
// date 기준 전날 통계를 계산. 생략 시 오늘 기준.
func (h *BatchHandler) RunPaymentStats(c *gin.Context) {
	result, err := h.stats.ComputeStats(c.Request.Context(), c.Query("date"), service.TriggerAdmin)
	if err != nil {
		writeServiceError(c, err, "Failed to compute payment stats")
		return
	}

	common.SuccessResponse(c, result, nil)
}

// ListPaymentStats GET /admin/batch/payment-stats?from=&to=
func (h *BatchHandler) ListPaymentStats(c *gin.Context) {
	var req domain.StatsListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ErrorResponseWithCode(c, http.StatusBadRequest, "INVALID_DATE", "from/to must be YYYY-MM-DD", false)
		return
	}

	list, err := h.stats.ListStats(c.Request.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(c, err, "Failed to list payment stats")
		return
	}

	common.SuccessResponse(c, list, &common.Meta{Total: int64(len(list))})
}

// ListTasks GET /admin/batch/tasks
func (h *BatchHandler) ListTasks(c *gin.Context) {
	tasks := []scheduler.TaskInfo{}
	if h.tasks != nil {
		tasks = h.tasks.GetTasks()
	}
	common.SuccessResponse(c, tasks, nil)
}
