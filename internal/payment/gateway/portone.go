package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
)

// PortOneConfig PortOne V2 설정
type PortOneConfig struct {
	APIBaseURL string
	APISecret  string
	StoreID    string
	Timeout    time.Duration
}

// PortOneClient PortOne V2 REST API 클라이언트
type PortOneClient struct {
	config     *PortOneConfig
	httpClient *http.Client
}

// NewPortOneClient 생성자
func NewPortOneClient(config *PortOneConfig) *PortOneClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PortOneClient{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPayment 결제 단건 조회
func (c *PortOneClient) GetPayment(ctx context.Context, paymentID string) (*PaymentIntent, error) {
	start := time.Now()
	intent, err := c.getPayment(ctx, paymentID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestDuration.WithLabelValues("get_payment", outcome).Observe(time.Since(start).Seconds())
	return intent, err
}

func (c *PortOneClient) getPayment(ctx context.Context, paymentID string) (*PaymentIntent, error) {
	endpoint := strings.TrimRight(c.config.APIBaseURL, "/") + "/payments/" + url.PathEscape(paymentID)
	if c.config.StoreID != "" {
		endpoint += "?storeId=" + url.QueryEscape(c.config.StoreID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "PortOne "+c.config.APISecret)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp PortOneErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Type != "" {
			return nil, fmt.Errorf("%w: status %d: %s - %s", ErrUpstream, resp.StatusCode, errResp.Type, errResp.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payment PortOnePaymentResponse
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	return payment.toIntent(paymentID, respBody), nil
}

// PortOnePaymentResponse 결제 조회 응답
type PortOnePaymentResponse struct {
	Status      string          `json:"status"`
	ID          string          `json:"id"`
	Amount      portOneAmount   `json:"amount"`
	Currency    string          `json:"currency"`
	Method      *portOneMethod  `json:"method"`
	Channel     *portOneChannel `json:"channel"`
	CustomData  string          `json:"customData"`
	PaidAt      *time.Time      `json:"paidAt"`
	CancelledAt *time.Time      `json:"cancelledAt"`
}

type portOneAmount struct {
	Total int64 `json:"total"`
	Paid  int64 `json:"paid"`
}

type portOneMethod struct {
	Type string `json:"type"`
}

type portOneChannel struct {
	PGProvider string `json:"pgProvider"`
}

// PortOneErrorResponse 에러 응답
type PortOneErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (r *PortOnePaymentResponse) toIntent(paymentID string, raw []byte) *PaymentIntent {
	intent := &PaymentIntent{
		PaymentID:   paymentID,
		Status:      domain.PaymentStatus(strings.ToUpper(r.Status)),
		Amount:      r.Amount.Total,
		Currency:    r.Currency,
		CustomData:  r.CustomData,
		PaidAt:      r.PaidAt,
		CancelledAt: r.CancelledAt,
		Raw:         raw,
	}
	if r.ID != "" {
		intent.PaymentID = r.ID
	}
	if r.Method != nil {
		intent.Method = r.Method.Type
	}
	if r.Channel != nil {
		intent.PGProvider = r.Channel.PGProvider
	}
	return intent
}
