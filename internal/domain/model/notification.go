package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	NotificationProductCreated   = "product_created"
	NotificationProductUpdated   = "product_updated"
	NotificationProductAvailable = "product_available"
	NotificationStockLow         = "stock_low"
	NotificationStockCritical    = "stock_critical"
	NotificationStockOut         = "stock_out"
	NotificationStockRecovered   = "stock_recovered"
)

const (
	NotificationLevelInfo     = "info"
	NotificationLevelSuccess  = "success"
	NotificationLevelWarning  = "warning"
	NotificationLevelCritical = "critical"
)

// NotificationPayload 發出通知當下的商品庫存快照
type NotificationPayload struct {
	ProductID   uint       `json:"product_id"`
	VenueID     uint       `json:"venue_id"`
	CategoryID  uint       `json:"category_id"`
	Stock       int        `json:"stock"`
	TracksStock bool       `json:"tracks_stock"`
	StockState  StockState `json:"stock_state"`
}

// SnapshotProduct 於發送當下讀取商品欄位，之後商品再變動也不影響快照
func SnapshotProduct(p *Product) *NotificationPayload {
	return &NotificationPayload{
		ProductID:   p.ProductID,
		VenueID:     p.VenueID,
		CategoryID:  p.CategoryID,
		Stock:       p.Stock,
		TracksStock: p.TracksStock,
		StockState:  p.StockState(),
	}
}

func (p NotificationPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *NotificationPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported notification payload type %T", value)
	}
}

// Notification 僅追加，建立後只有 IsRead/ReadAt 會變動
type Notification struct {
	NotificationID uint                 `gorm:"primaryKey" json:"notification_id"`
	VenueID        uint                 `gorm:"not null;index" json:"venue_id"`
	ProductID      *uint                `gorm:"index" json:"product_id"`
	UserID         *uint                `gorm:"index" json:"user_id"`
	Type           string               `gorm:"not null;type:varchar(40)" json:"type"`
	Level          string               `gorm:"not null;type:varchar(20);default:'info'" json:"level"`
	Title          string               `gorm:"not null;type:varchar(120)" json:"title"`
	Message        string               `gorm:"not null;type:varchar(255)" json:"message"`
	Payload        *NotificationPayload `gorm:"type:jsonb" json:"payload"`
	IsRead         bool                 `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time           `gorm:"null" json:"read_at"`
	BaseModel
}
