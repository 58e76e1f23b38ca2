package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementRepository 결제 확정 저장소
type SettlementRepository interface {
	// Settle 주문/결제/주문아이템/장바구니/수강권을 하나의 트랜잭션으로 기록.
	// 같은 결제 ID가 이미 기록돼 있으면 ErrDuplicate, 아무것도 남기지 않는다.
	Settle(ctx context.Context, input *SettlementInput) (*domain.Order, error)
}

// SettlementInput 결제 확정 입력
type SettlementInput struct {
	UserID        string
	PaymentID     string
	Courses       []*domain.Course
	Customer      domain.CustomerInfo
	Amount        int64
	Currency      string
	PaymentMethod string
	PGProvider    string
	PaidAt        *time.Time
	Raw           []byte
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 생성자
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

// GenerateOrderNumber ORD-<yyyyMMddHHmmssSSS>-<사용자 ID 앞 8자>
func GenerateOrderNumber(now time.Time, userID string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("ORD-%s%03d-%s", now.Format("20060102150405"), now.Nanosecond()/int(time.Millisecond), prefix)
}

func (r *settlementRepository) Settle(ctx context.Context, input *SettlementInput) (*domain.Order, error) {
	now := time.Now()
	order := buildOrder(input, now)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 주문 생성
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		// 결제 기록 (payment_id 유니크)
		payment := &domain.Payment{
			ID:            uuid.NewString(),
			PaymentID:     input.PaymentID,
			OrderID:       order.ID,
			Amount:        input.Amount,
			Currency:      input.Currency,
			PaymentMethod: input.PaymentMethod,
			PGProvider:    input.PGProvider,
			Status:        domain.PaymentStatusPaid,
			PaidAt:        utc(input.PaidAt, now),
			PortoneData:   rawJSON(input.Raw),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(payment).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicate
			}
			return err
		}
		order.Payment = payment

		// 주문 아이템 (가격 스냅샷)
		if err := tx.Create(&order.Items).Error; err != nil {
			return err
		}

		courseIDs := make([]string, 0, len(input.Courses))
		for _, course := range input.Courses {
			courseIDs = append(courseIDs, course.ID)
		}

		// 장바구니에서 구매한 강의 제거
		if err := tx.Where("user_id = ? AND course_id IN ?", input.UserID, courseIDs).
			Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}

		// 수강권 부여 (이미 있으면 유지)
		enrollments := make([]domain.Enrollment, 0, len(courseIDs))
		for _, courseID := range courseIDs {
			enrollments = append(enrollments, domain.Enrollment{
				ID:         uuid.NewString(),
				UserID:     input.UserID,
				CourseID:   courseID,
				EnrolledAt: now,
			})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).Create(&enrollments).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrder(input *SettlementInput, now time.Time) *domain.Order {
	order := &domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   GenerateOrderNumber(now, input.UserID),
		UserID:        input.UserID,
		FinalAmount:   input.Amount,
		Status:        domain.OrderStatusPaid,
		CustomerName:  input.Customer.Name,
		CustomerEmail: input.Customer.Email,
		CustomerPhone: input.Customer.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, course := range input.Courses {
		order.TotalAmount += course.Price
		order.Items = append(order.Items, domain.OrderItem{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			CourseID:      course.ID,
			CourseName:    course.Title,
			OriginalPrice: course.Price,
			DiscountPrice: course.DiscountPrice,
			FinalPrice:    course.SalePrice(),
			CreatedAt:     now,
		})
	}
	order.DiscountAmount = order.TotalAmount - order.FinalAmount
	return order
}

func utc(t *time.Time, fallback time.Time) *time.Time {
	v := fallback.UTC()
	if t != nil {
		v = t.UTC()
	}
	return &v
}
