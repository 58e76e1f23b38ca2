package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturemarket/lecturemarket-backend/internal/common"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/service"
)

// errorMapping 서비스 에러 → HTTP 응답
type errorMapping struct {
	err       error
	status    int
	code      string
	message   string
	retryable bool
}

var paymentErrors = []errorMapping{
	{service.ErrGatewayUnreachable, http.StatusBadGateway, "GATEWAY_UNREACHABLE", "결제사 응답을 받지 못했습니다. 잠시 후 다시 시도해 주세요", true},
	{service.ErrPaymentNotCompleted, http.StatusBadRequest, "PAYMENT_NOT_COMPLETED", "결제가 완료되지 않았습니다", false},
	{service.ErrMissingOrderContext, http.StatusBadRequest, "MISSING_ORDER_CONTEXT", "결제에 주문 정보가 없습니다. 고객센터에 문의해 주세요", false},
	{service.ErrUnknownCourse, http.StatusBadRequest, "UNKNOWN_COURSE", "판매 중이 아닌 강의가 포함되어 있습니다. 고객센터에 문의해 주세요", false},
	{service.ErrAmountMismatch, http.StatusBadRequest, "AMOUNT_MISMATCH", "결제 금액이 강의 가격과 일치하지 않습니다. 고객센터에 문의해 주세요", false},
	{service.ErrSettlementFailed, http.StatusInternalServerError, "SETTLEMENT_FAILED", "주문 처리 중 오류가 발생했습니다. 다시 시도해 주세요", true},
	{service.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid webhook signature", false},
	{service.ErrReconcileFailed, http.StatusInternalServerError, "RECONCILE_FAILED", "Webhook processing failed", true},
	{service.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", false},
	{service.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found", false},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Forbidden", false},
	{service.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD", false},
}

// writeServiceError 매핑되지 않은 에러는 500
func writeServiceError(c *gin.Context, err error, fallback string) {
	for _, m := range paymentErrors {
		if errors.Is(err, m.err) {
			common.ErrorResponseWithCode(c, m.status, m.code, m.message, m.retryable)
			return
		}
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
}
