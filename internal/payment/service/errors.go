package service

import (
	"errors"
)

// 결제 처리 에러 정의 (게이트웨이/DB 에러는 이 값들로 변환되어 나간다)
var (
	ErrGatewayUnreachable  = errors.New("payment gateway unreachable")
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	ErrMissingOrderContext = errors.New("payment has no order context")
	ErrUnknownCourse       = errors.New("payment references unknown course")
	ErrAmountMismatch      = errors.New("payment amount does not match course prices")
	ErrSettlementFailed    = errors.New("order settlement failed")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrReconcileFailed     = errors.New("webhook reconciliation failed")
)

// 조회 에러 정의
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrForbidden       = errors.New("you are not the owner of this order")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
)
