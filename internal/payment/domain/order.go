package domain

import (
	"time"
)

// OrderStatus 주문 상태 (결제 상태를 그대로 따른다)
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusPaid             OrderStatus = "PAID"
	OrderStatusFailed           OrderStatus = "FAILED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
	OrderStatusPartialCancelled OrderStatus = "PARTIAL_CANCELLED"
)

// Order 주문 엔티티
type Order struct {
	ID             string      `gorm:"type:char(36);primaryKey" json:"id"`
	OrderNumber    string      `gorm:"column:order_number;size:64;index;not null" json:"order_number"`
	UserID         string      `gorm:"column:user_id;type:char(36);not null;index" json:"user_id"`
	TotalAmount    int64       `gorm:"column:total_amount;not null" json:"total_amount"`
	DiscountAmount int64       `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	FinalAmount    int64       `gorm:"column:final_amount;not null" json:"final_amount"`
	Status         OrderStatus `gorm:"size:32;not null" json:"status"`

	// 구매자 정보 스냅샷
	CustomerName  string `gorm:"column:customer_name;size:100" json:"customer_name,omitempty"`
	CustomerEmail string `gorm:"column:customer_email;size:255" json:"customer_email,omitempty"`
	CustomerPhone string `gorm:"column:customer_phone;size:32" json:"customer_phone,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

// TableName GORM 테이블명
func (Order) TableName() string {
	return "orders"
}

// OrderItem 주문 아이템 (결제 시점 가격 스냅샷, 이후 불변)
type OrderItem struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID       string    `gorm:"column:order_id;type:char(36);not null;index" json:"order_id"`
	CourseID      string    `gorm:"column:course_id;type:char(36);not null" json:"course_id"`
	CourseName    string    `gorm:"column:course_name;size:255;not null" json:"course_name"`
	OriginalPrice int64     `gorm:"column:original_price;not null" json:"original_price"`
	DiscountPrice *int64    `gorm:"column:discount_price" json:"discount_price,omitempty"`
	FinalPrice    int64     `gorm:"column:final_price;not null" json:"final_price"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName GORM 테이블명
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemResponse 주문 아이템 응답 DTO
type OrderItemResponse struct {
	CourseID      string `json:"course_id"`
	CourseName    string `json:"course_name"`
	OriginalPrice int64  `json:"original_price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`
	FinalPrice    int64  `json:"final_price"`
}

// OrderResponse 주문 응답 DTO
type OrderResponse struct {
	ID             string               `json:"id"`
	OrderNumber    string               `json:"order_number"`
	TotalAmount    int64                `json:"total_amount"`
	DiscountAmount int64                `json:"discount_amount"`
	FinalAmount    int64                `json:"final_amount"`
	Status         string               `json:"status"`
	CustomerName   string               `json:"customer_name,omitempty"`
	CustomerEmail  string               `json:"customer_email,omitempty"`
	Items          []*OrderItemResponse `json:"items"`
	Payment        *PaymentResponse     `json:"payment,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ToResponse Order를 OrderResponse로 변환
func (o *Order) ToResponse() *OrderResponse {
	response := &OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		FinalAmount:    o.FinalAmount,
		Status:         string(o.Status),
		CustomerName:   o.CustomerName,
		CustomerEmail:  o.CustomerEmail,
		CreatedAt:      o.CreatedAt,
		Items:          make([]*OrderItemResponse, 0, len(o.Items)),
	}

	for _, item := range o.Items {
		response.Items = append(response.Items, &OrderItemResponse{
			CourseID:      item.CourseID,
			CourseName:    item.CourseName,
			OriginalPrice: item.OriginalPrice,
			DiscountPrice: item.DiscountPrice,
			FinalPrice:    item.FinalPrice,
		})
	}

	if o.Payment != nil {
		response.Payment = o.Payment.ToResponse()
	}

	return response
}
