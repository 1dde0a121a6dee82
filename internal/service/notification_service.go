package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
)

type INotificationService interface {
	EmitProductCreated(ctx context.Context, product *model.Product)
	EmitProductUpdated(ctx context.Context, product *model.Product, actorID *uint)
	EmitStockTransition(ctx context.Context, product *model.Product, before, after model.StockState)
	GetNotifications(ctx context.Context, venueID uint, unreadOnly bool) ([]model.Notification, error)
	CountUnread(ctx context.Context, venueID uint) (int64, error)
	MarkRead(ctx context.Context, notificationID uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, venueID uint) (int64, error)
}

// NotificationService 觀察商品庫存狀態轉移並產生通知紀錄
// 通知寫入失敗只記 log，不能讓觸發的商品寫入失敗
type NotificationService struct {
	notificationRepo db.INotificationRepository
}

func NewNotificationService(notificationRepo db.INotificationRepository) *NotificationService {
	if notificationRepo == nil {
		panic("notification service dependency notificationRepo is nil")
	}
	return &NotificationService{notificationRepo: notificationRepo}
}

// EmitProductCreated 商品第一次寫入時發送
func (s *NotificationService) EmitProductCreated(ctx context.Context, product *model.Product) {
	s.emit(ctx, product, nil, model.NotificationProductCreated, model.NotificationLevelInfo,
		"Producto creado",
		fmt.Sprintf("Se creó el producto %s", product.Name))
}

// EmitProductUpdated 目錄編輯的明確呼叫路徑，不經由庫存狀態轉移
func (s *NotificationService) EmitProductUpdated(ctx context.Context, product *model.Product, actorID *uint) {
	s.emit(ctx, product, actorID, model.NotificationProductUpdated, model.NotificationLevelInfo,
		"Producto actualizado",
		fmt.Sprintf("Se actualizó el producto %s", product.Name))
}

// EmitStockTransition 比對寫入前後的推導狀態，狀態沒變就不發送
// before/after 是呼叫端傳入的值比較，不重查 DB
func (s *NotificationService) EmitStockTransition(ctx context.Context, product *model.Product, before, after model.StockState) {
	if before == after {
		return
	}

	switch {
	case after == model.StockStateNormal &&
		(before == model.StockStateLow || before == model.StockStateCritical || before == model.StockStateOut):
		s.emit(ctx, product, nil, model.NotificationStockRecovered, model.NotificationLevelSuccess,
			"Stock recuperado",
			fmt.Sprintf("El stock de %s volvió a nivel normal (%d unidades)", product.Name, product.Stock))
	case after == model.StockStateAvailable && before == model.StockStateOut:
		s.emit(ctx, product, nil, model.NotificationProductAvailable, model.NotificationLevelSuccess,
			"Producto disponible",
			fmt.Sprintf("El producto %s vuelve a estar disponible", product.Name))
	case after == model.StockStateLow:
		s.emit(ctx, product, nil, model.NotificationStockLow, model.NotificationLevelWarning,
			"Stock bajo",
			fmt.Sprintf("Quedan %d unidades de %s", product.Stock, product.Name))
	case after == model.StockStateCritical:
		s.emit(ctx, product, nil, model.NotificationStockCritical, model.NotificationLevelCritical,
			"Stock crítico",
			fmt.Sprintf("Quedan %d unidades de %s", product.Stock, product.Name))
	case after == model.StockStateOut:
		s.emit(ctx, product, nil, model.NotificationStockOut, model.NotificationLevelCritical,
			"Sin stock",
			fmt.Sprintf("El producto %s se quedó sin stock", product.Name))
	}
	// 其餘轉移不發送
}

func (s *NotificationService) emit(ctx context.Context, product *model.Product, actorID *uint, notifType, level, title, message string) {
	productID := product.ProductID
	notification := &model.Notification{
		VenueID:   product.VenueID,
		ProductID: &productID,
		UserID:    actorID,
		Type:      notifType,
		Level:     level,
		Title:     title,
		Message:   message,
		Payload:   model.SnapshotProduct(product), // 發送當下的快照
	}

	if err := s.notificationRepo.CreateNotification(ctx, notification); err != nil {
		log.Error().Err(err).
			Uint("product_id", product.ProductID).
			Str("type", notifType).
			Msg("create notification failed")
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, venueID uint, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.GetNotificationsByVenue(ctx, venueID, unreadOnly)
}

func (s *NotificationService) CountUnread(ctx context.Context, venueID uint) (int64, error) {
	return s.notificationRepo.CountUnreadByVenue(ctx, venueID)
}

// MarkRead 冪等，重複標記已讀不做事
func (s *NotificationService) MarkRead(ctx context.Context, notificationID uint) (*model.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, venueID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, venueID)
}

var _ INotificationService = (*NotificationService)(nil)
