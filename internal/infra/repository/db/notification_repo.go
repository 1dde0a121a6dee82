package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrNotificationNotFound 通知不存在
	ErrNotificationNotFound = errors.New("notification not found")
)

type NotificationRepo struct {
	db *DbDao
}

func NewNotificationRepo(db *DbDao) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create - 通知只追加，不更新既有紀錄
func (s *NotificationRepo) CreateNotification(ctx context.Context, notification *model.Notification) error {
	return s.db.WithContext(ctx).Create(notification).Error
}

func (s *NotificationRepo) GetNotificationByID(ctx context.Context, notificationID uint) (*model.Notification, error) {
	var notification model.Notification
	err := s.db.WithContext(ctx).First(&notification, notificationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (s *NotificationRepo) GetNotificationsByVenue(ctx context.Context, venueID uint, unreadOnly bool) ([]model.Notification, error) {
	query := s.db.WithContext(ctx).Where("venue_id = ?", venueID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []model.Notification
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (s *NotificationRepo) GetNotificationsByProduct(ctx context.Context, productID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationRepo) CountUnreadByVenue(ctx context.Context, venueID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("venue_id = ? AND is_read = ?", venueID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 冪等，單一條件式 UPDATE，已讀的通知再標記一次不會改動 read_at
func (s *NotificationRepo) MarkRead(ctx context.Context, notificationID uint) (*model.Notification, error) {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
	if err != nil {
		return nil, err
	}
	return s.GetNotificationByID(ctx, notificationID)
}

// MarkAllRead 標記店家全部未讀通知，回傳更新筆數
func (s *NotificationRepo) MarkAllRead(ctx context.Context, venueID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("venue_id = ? AND is_read = ?", venueID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}
