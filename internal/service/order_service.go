package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/redis_repo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidQuantity    = errors.New("order line quantity must be at least 1")
	ErrEmptyOrder         = errors.New("order has no lines")
)

// OrderLine 下單的單一品項需求
type OrderLine struct {
	ProductID uint
	Quantity  int
}

// OrderSummary 店家訂單看板統計
type OrderSummary struct {
	Total                    int64            `json:"total"`
	Counts                   map[string]int64 `json:"counts"`
	ActiveTotal              int64            `json:"active_total"`
	OldestPendingMinutes     *float64         `json:"oldest_pending_minutes"`
	AveragePrepMinutes       *float64         `json:"average_preparation_minutes"`
	AverageCompletionMinutes *float64         `json:"average_completion_minutes"`
	GeneratedAt              time.Time        `json:"generated_at"`
}

type IOrderService interface {
	CreateOrder(ctx context.Context, userID, venueID uint, lines []OrderLine) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID uint) ([]model.Order, error)
	GetActiveOrders(ctx context.Context, venueID uint, limit int) ([]model.Order, error)
	GetOrderSummary(ctx context.Context, venueID uint) (*OrderSummary, error)
}

// 一次庫存異動的前後狀態，事務提交後才交給 notifier
type stockTransition struct {
	product *model.Product
	before  model.StockState
	after   model.StockState
}

// OrderService 訂單交易管理
// 建單、扣庫存、計算總額在同一個事務內完成，任何一條品項失敗就整筆回滾
type OrderService struct {
	store    db.UnifiedDB
	cache    redis_repo.IProductStockCache
	notifier INotificationService
}

// NewOrderService cache 傳 nil 時不快取
func NewOrderService(store db.UnifiedDB, cache redis_repo.IProductStockCache, notifier INotificationService) *OrderService {
	if store == nil {
		panic("order service dependency store is nil")
	}
	if notifier == nil {
		panic("order service dependency notifier is nil")
	}
	return &OrderService{store: store, cache: cache, notifier: notifier}
}

// CreateOrder 建立訂單
// 品項依呼叫端順序處理，追蹤庫存的商品逐筆上鎖檢查再扣庫存
// UnitPrice 取下單當下的商品價格快照，Total 四捨五入到小數兩位
func (s *OrderService) CreateOrder(ctx context.Context, userID, venueID uint, lines []OrderLine) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var (
		orderID     uint
		transitions []stockTransition
	)

	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		dao := db.NewDbDao(tx)
		orderRepo := db.NewOrderRepo(dao)
		productRepo := db.NewProductDBRepo(dao)

		order := &model.Order{
			UserID:     userID,
			VenueID:    venueID,
			Status:     model.OrderStatusPending,
			Total:      decimal.Zero,
			PickupCode: newPickupCode(),
		}
		if err := orderRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range lines {
			// 同一商品出現在多條品項時，第二次讀到的是本事務已扣過的值
			product, err := productRepo.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}

			if product.TracksStock {
				if product.Stock < line.Quantity {
					return fmt.Errorf("%w: product %s", ErrInsufficientStock, product.Name)
				}
				before := product.StockState()
				product.Stock -= line.Quantity
				product.Normalize()
				if err := productRepo.UpdateProduct(ctx, product); err != nil {
					return err
				}
				transitions = append(transitions, stockTransition{
					product: product,
					before:  before,
					after:   product.StockState(),
				})
			}

			item := &model.OrderItem{
				OrderID:   order.OrderID,
				ProductID: product.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price, // 價格快照
			}
			if err := tx.WithContext(ctx).Create(item).Error; err != nil {
				return err
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.Total = total.Round(2)
		if err := tx.WithContext(ctx).Model(order).Update("total", order.Total).Error; err != nil {
			return err
		}

		orderID = order.OrderID
		return nil
	})
	if err != nil {
		// 回滾後不留任何部分扣減，也不發送通知
		return nil, err
	}

	// 事務提交後才發送庫存通知與更新快取
	for _, t := range transitions {
		s.notifier.EmitStockTransition(ctx, t.product, t.before, t.after)
		s.refreshStockCache(ctx, t.product)
	}

	return s.store.GetOrderByID(ctx, orderID)
}

// UpdateOrderStatus 狀態只要是已知值就接受，狀態之間沒有轉移限制
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*model.Order, error) {
	if !model.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrderStatus, status)
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.store.GetOrderByID(ctx, orderID)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

func (s *OrderService) GetActiveOrders(ctx context.Context, venueID uint, limit int) ([]model.Order, error) {
	return s.store.GetActiveOrders(ctx, venueID, limit)
}

// GetOrderSummary 店家看板統計
func (s *OrderService) GetOrderSummary(ctx context.Context, venueID uint) (*OrderSummary, error) {
	counts, err := s.store.CountOrdersByStatus(ctx, venueID)
	if err != nil {
		return nil, err
	}

	summary := &OrderSummary{
		Counts: map[string]int64{
			model.OrderStatusPending:   0,
			model.OrderStatusPreparing: 0,
			model.OrderStatusReady:     0,
			model.OrderStatusCompleted: 0,
			model.OrderStatusCancelled: 0,
		},
		GeneratedAt: time.Now(),
	}
	for status, total := range counts {
		summary.Counts[status] = total
		summary.Total += total
	}
	summary.ActiveTotal = summary.Counts[model.OrderStatusPending] +
		summary.Counts[model.OrderStatusPreparing] +
		summary.Counts[model.OrderStatusReady]

	oldest, err := s.store.GetOldestPendingOrder(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if oldest != nil {
		minutes := time.Since(oldest.CreatedAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		summary.OldestPendingMinutes = &minutes
	}

	prepMinutes, err := s.store.GetAverageMinutesInStatus(ctx, venueID,
		[]string{model.OrderStatusPreparing, model.OrderStatusReady})
	if err != nil {
		return nil, err
	}
	summary.AveragePrepMinutes = prepMinutes

	completionMinutes, err := s.store.GetAverageMinutesInStatus(ctx, venueID,
		[]string{model.OrderStatusCompleted})
	if err != nil {
		return nil, err
	}
	summary.AverageCompletionMinutes = completionMinutes

	return summary, nil
}

func (s *OrderService) refreshStockCache(ctx context.Context, product *model.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProductStock(ctx, product.ProductID, product.Stock); err != nil {
		log.Warn().Err(err).Uint("product_id", product.ProductID).Msg("refresh product stock cache failed")
	}
}

// 取餐碼，uuid 前段轉大寫
func newPickupCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

var _ IOrderService = (*OrderService)(nil)
