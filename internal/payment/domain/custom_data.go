package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidCustomData customData 누락/형식 오류
var ErrInvalidCustomData = errors.New("custom data is missing or malformed")

// CustomData 결제창 호출 시 전달되어 게이트웨이가 그대로 돌려주는 주문 컨텍스트.
// 브라우저를 거치므로 가격 정보는 신뢰하지 않는다.
type CustomData struct {
	Items        []CustomDataItem `json:"items"`
	CustomerInfo CustomerInfo     `json:"customerInfo"`
}

// CustomDataItem 구매 요청 강의
type CustomDataItem struct {
	CourseID string `json:"courseId"`
	Price    int64  `json:"price,omitempty"`
}

// CustomerInfo 구매자 연락처
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ParseCustomData customData 문자열 파싱. items 배열이 없거나 비어 있으면 에러.
func ParseCustomData(raw string) (*CustomData, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidCustomData
	}

	var probe struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, ErrInvalidCustomData
	}
	if len(probe.Items) == 0 || probe.Items[0] != '[' {
		return nil, ErrInvalidCustomData
	}

	var data CustomData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, ErrInvalidCustomData
	}
	if len(data.Items) == 0 {
		return nil, ErrInvalidCustomData
	}
	for _, item := range data.Items {
		if item.CourseID == "" {
			return nil, ErrInvalidCustomData
		}
	}

	return &data, nil
}

// CourseIDs 요청 강의 ID 목록 (요청 순서 유지)
func (d *CustomData) CourseIDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		ids = append(ids, item.CourseID)
	}
	return ids
}
