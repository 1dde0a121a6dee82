package model

import (
	"github.com/shopspring/decimal"
)

// StockState 由庫存欄位推導出的狀態，不落地
type StockState string

const (
	StockStateNormal    StockState = "normal"
	StockStateLow       StockState = "low"
	StockStateCritical  StockState = "critical"
	StockStateOut       StockState = "out"
	StockStateAvailable StockState = "available" // 僅限不追蹤庫存的商品
)

// 商品促銷狀態
const (
	ProductStateStandard = "normal"
	ProductStateFresh    = "recien_tostado"
	ProductStatePromo    = "promocion"
)

const (
	DefaultLowStockThreshold      = 5
	DefaultCriticalStockThreshold = 0
)

type Product struct {
	ProductID   uint            `gorm:"primaryKey" json:"product_id"`
	VenueID     uint            `gorm:"not null;index:idx_venue_display,priority:1" json:"venue_id"`
	CategoryID  uint            `gorm:"not null;index:idx_category_display,priority:1" json:"category_id"`
	Name        string          `gorm:"not null;type:varchar(120)" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`

	// TracksStock 為 true 時 Stock 才有意義，InStock 由 Stock 重算
	// TracksStock 為 false 時 InStock 才是權威值
	TracksStock            bool `gorm:"not null;default:true" json:"tracks_stock"`
	Stock                  int  `gorm:"not null;default:0" json:"stock"`
	InStock                bool `gorm:"not null;default:true" json:"in_stock"`
	LowStockThreshold      int  `gorm:"not null;default:5" json:"low_stock_threshold"`
	CriticalStockThreshold int  `gorm:"not null;default:0" json:"critical_stock_threshold"`

	DisplayOrder int    `gorm:"not null;default:0;index:idx_venue_display,priority:2;index:idx_category_display,priority:2" json:"display_order"`
	State        string `gorm:"not null;type:varchar(20);default:'normal'" json:"state"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	ImageURL     string `gorm:"type:varchar(255)" json:"image_url"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"` // 被訂單引用時禁止刪除
	BaseModel
}

// StockState 推導庫存狀態，純函數，不讀 DB 也不改動 p
func (p *Product) StockState() StockState {
	if !p.TracksStock {
		if p.InStock {
			return StockStateAvailable
		}
		return StockStateOut
	}

	if p.Stock <= 0 {
		return StockStateOut
	}
	if p.Stock <= max(p.CriticalStockThreshold, 0) {
		return StockStateCritical
	}
	if p.Stock <= max(p.LowStockThreshold, 0) {
		return StockStateLow
	}
	return StockStateNormal
}

// Normalize 每次落地前都要執行
// 負數欄位歸零、低水位不得低於臨界水位、追蹤庫存時重算 InStock
func (p *Product) Normalize() {
	if p.Stock < 0 {
		p.Stock = 0
	}
	if p.DisplayOrder < 0 {
		p.DisplayOrder = 0
	}
	if p.LowStockThreshold < 0 {
		p.LowStockThreshold = 0
	}
	if p.CriticalStockThreshold < 0 {
		p.CriticalStockThreshold = 0
	}
	if p.LowStockThreshold < p.CriticalStockThreshold {
		p.LowStockThreshold = p.CriticalStockThreshold
	}

	if p.TracksStock {
		p.InStock = p.Stock > 0
	} else if p.Stock > 0 {
		// 不追蹤庫存時不會強制設成 false
		p.InStock = true
	}
}
