package repository

import (
	"context"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
)

// OrderRepository 주문 조회
type OrderRepository interface {
	FindByIDWithItems(ctx context.Context, id string) (*domain.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 생성자
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// FindByIDWithItems 아이템과 결제 정보를 포함한 주문 조회
func (r *orderRepository) FindByIDWithItems(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}
