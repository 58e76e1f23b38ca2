package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	headerWebhookID        = "webhook-id"
	headerWebhookTimestamp = "webhook-timestamp"
	headerWebhookSignature = "webhook-signature"

	secretPrefix = "whsec_"
)

// SignatureVerifier Standard Webhooks 서명 검증기 (PortOne V2 웹훅 형식)
type SignatureVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier 생성자. whsec_ 접두사가 붙은 시크릿은 base64 디코딩한 값을 키로 쓴다.
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{
		key:       decodeSecret(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

func decodeSecret(secret string) []byte {
	if strings.HasPrefix(secret, secretPrefix) {
		if key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix)); err == nil {
			return key
		}
	}
	return []byte(secret)
}

// Verify 헤더 서명 확인 후 본문 파싱
func (v *SignatureVerifier) Verify(body []byte, headers http.Header) (*WebhookEvent, error) {
	id := headers.Get(headerWebhookID)
	ts := headers.Get(headerWebhookTimestamp)
	sigHeader := headers.Get(headerWebhookSignature)
	if id == "" || ts == "" || sigHeader == "" {
		return nil, fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
	}
	sentAt := time.Unix(unix, 0)
	if v.tolerance > 0 {
		if d := v.now().Sub(sentAt); d > v.tolerance || d < -v.tolerance {
			return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
		}
	}

	expected := v.sign(id, ts, body)
	matched := false
	for _, candidate := range strings.Fields(sigHeader) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: no matching signature", ErrInvalidSignature)
	}

	event, err := parseWebhookBody(body)
	if err != nil {
		return nil, err
	}
	event.WebhookID = id
	if event.Timestamp.IsZero() {
		event.Timestamp = sentAt
	}
	return event, nil
}

// Sign 서명 헤더값 생성 (테스트/재전송 도구용)
func (v *SignatureVerifier) Sign(id string, ts time.Time, body []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.sign(id, strconv.FormatInt(ts.Unix(), 10), body))
}

func (v *SignatureVerifier) sign(id, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

// webhookPayload V2 웹훅 본문. 구버전(payment_id) 형식도 함께 받는다.
type webhookPayload struct {
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp"`
	Data      struct {
		PaymentID     string `json:"paymentId"`
		StoreID       string `json:"storeId"`
		TransactionID string `json:"transactionId"`
	} `json:"data"`

	LegacyPaymentID string `json:"payment_id"`
	LegacyTxID      string `json:"tx_id"`
	LegacyStatus    string `json:"status"`
}

func parseWebhookBody(body []byte) (*WebhookEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	event := &WebhookEvent{
		Type:          payload.Type,
		PaymentID:     payload.Data.PaymentID,
		TransactionID: payload.Data.TransactionID,
		StoreID:       payload.Data.StoreID,
		Raw:           body,
	}
	if payload.Timestamp != nil {
		event.Timestamp = *payload.Timestamp
	}
	if event.PaymentID == "" && payload.LegacyPaymentID != "" {
		event.PaymentID = payload.LegacyPaymentID
		event.TransactionID = payload.LegacyTxID
		if event.Type == "" {
			event.Type = "Legacy." + payload.LegacyStatus
		}
	}
	return event, nil
}
