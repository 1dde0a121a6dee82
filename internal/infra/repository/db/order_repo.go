package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// WithTx 回傳綁定事務的 repo
func (s *OrderRepo) WithTx(tx *gorm.DB) *OrderRepo {
	return &OrderRepo{db: NewDbDao(tx)}
}

// Create - 建立訂單，OrderItems 一併寫入
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) GetOrdersByVenue(ctx context.Context, venueID uint, statuses []string) ([]model.Order, error) {
	query := s.db.WithContext(ctx).Preload("OrderItems").Where("venue_id = ?", venueID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var orders []model.Order
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// GetActiveOrders 未結案訂單，舊的排前面方便出餐
func (s *OrderRepo) GetActiveOrders(ctx context.Context, venueID uint, limit int) ([]model.Order, error) {
	query := s.db.WithContext(ctx).Preload("OrderItems").
		Where("venue_id = ? AND status IN ?", venueID, []string{
			model.OrderStatusPending,
			model.OrderStatusPreparing,
			model.OrderStatusReady,
		}).
		Order("created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []model.Order
	err := query.Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CountOrdersByStatus 各狀態的訂單數
func (s *OrderRepo) CountOrdersByStatus(ctx context.Context, venueID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("venue_id = ?", venueID).
		Select("status, COUNT(*) as total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// GetOldestPendingOrder 最久未處理的待處理訂單，沒有時回傳 nil
func (s *OrderRepo) GetOldestPendingOrder(ctx context.Context, venueID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND status = ?", venueID, model.OrderStatusPending).
		Order("created_at").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetAverageMinutesInStatus 指定狀態訂單從建立到最後更新的平均分鐘數
// 沒有符合的訂單時回傳 nil
func (s *OrderRepo) GetAverageMinutesInStatus(ctx context.Context, venueID uint, statuses []string) (*float64, error) {
	var avgSeconds sql.NullFloat64
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("venue_id = ? AND status IN ?", venueID, statuses).
		Select("AVG(EXTRACT(EPOCH FROM (updated_at - created_at)))").
		Scan(&avgSeconds).Error
	if err != nil {
		return nil, err
	}
	if !avgSeconds.Valid {
		return nil, nil
	}

	minutes := avgSeconds.Float64 / 60.0
	return &minutes, nil
}

// GetOrdersSince 取得某時間點之後的訂單
func (s *OrderRepo) GetOrdersSince(ctx context.Context, venueID uint, since time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("venue_id = ? AND created_at >= ?", venueID, since).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
