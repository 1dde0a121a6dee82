package model

import (
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pendiente"
	OrderStatusPreparing = "preparando"
	OrderStatusReady     = "listo"
	OrderStatusCompleted = "completado"
	OrderStatusCancelled = "cancelado"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:   {},
	OrderStatusPreparing: {},
	OrderStatusReady:     {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// IsValidOrderStatus 狀態只要是已知值就合法，狀態之間沒有轉移限制
func IsValidOrderStatus(status string) bool {
	_, ok := orderStatuses[status]
	return ok
}

type Order struct {
	OrderID uint `gorm:"primaryKey" json:"order_id"`
	UserID  uint `gorm:"not null;index" json:"user_id"`
	VenueID uint `gorm:"not null;index" json:"venue_id"`
	Status  string `gorm:"not null;type:varchar(20);default:'pendiente'" json:"status"`
	// Total 由訂單建立流程計算，不接受外部值
	Total      decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total"`
	PickupCode string          `gorm:"type:varchar(12)" json:"pickup_code"`
	OrderItems []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"` // 一對多，級聯刪除
	BaseModel
}

type OrderItem struct {
	OrderItemID uint `gorm:"primaryKey" json:"order_item_id"`
	OrderID     uint `gorm:"not null;index" json:"order_id"`
	ProductID   uint `gorm:"not null;index" json:"product_id"`
	Quantity    int  `gorm:"not null" json:"quantity"`
	// UnitPrice 下單當下的價格快照，商品改價不影響歷史訂單
	UnitPrice decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price"`
	BaseModel
}

// LineTotal 單一品項小計
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
