package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturemarket/lecturemarket-backend/internal/common"
	"github.com/lecturemarket/lecturemarket-backend/internal/middleware"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/service"
	"github.com/lecturemarket/lecturemarket-backend/pkg/logger"
)

// maxWebhookBody 웹훅 본문 최대 크기
const maxWebhookBody = 1 << 20

// PaymentHandler 결제 HTTP 핸들러
type PaymentHandler struct {
	payments service.PaymentService
	webhooks service.WebhookService
}

// NewPaymentHandler 생성자
func NewPaymentHandler(payments service.PaymentService, webhooks service.WebhookService) *PaymentHandler {
	return &PaymentHandler{payments: payments, webhooks: webhooks}
}

// VerifyPayment POST /payments/verify
// 결제창 완료 후 클라이언트가 호출. 성공 시 {success, orderId}
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req domain.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "paymentId is required", err)
		return
	}

	resp, err := h.payments.VerifyPayment(requestContext(c), userID, req.PaymentID)
	if err != nil {
		writeServiceError(c, err, "Failed to verify payment")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleWebhook POST /payments/webhook
// 인증 토큰 없음. 서명으로만 검증.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	if _, err := h.webhooks.HandleWebhook(requestContext(c), body, c.Request.Header); err != nil {
		writeServiceError(c, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetOrder GET /payments/orders/:id
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	order, err := h.payments.GetOrder(requestContext(c), userID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Failed to get order")
		return
	}

	common.SuccessResponse(c, order, nil)
}

// GetPayment GET /payments/:paymentId
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	payment, err := h.payments.GetPayment(requestContext(c), userID, c.Param("paymentId"))
	if err != nil {
		writeServiceError(c, err, "Failed to get payment")
		return
	}

	common.SuccessResponse(c, payment, nil)
}

// requestContext 요청 ID를 실은 서비스 호출용 context
func requestContext(c *gin.Context) context.Context {
	return logger.ContextWithRequestID(c.Request.Context(), middleware.GetRequestID(c))
}
