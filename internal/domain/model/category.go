package model

// Category 商品分類，slug 在同一個 venue 內唯一
// TracksStock 會作為新商品 tracks_stock 的預設值
type Category struct {
	CategoryID  uint   `gorm:"primaryKey" json:"category_id"`
	VenueID     uint   `gorm:"not null;uniqueIndex:idx_venue_slug" json:"venue_id"`
	Name        string `gorm:"not null;type:varchar(120)" json:"name"`
	Slug        string `gorm:"not null;type:varchar(140);uniqueIndex:idx_venue_slug" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	TracksStock bool   `gorm:"not null;default:true" json:"tracks_stock"`

	// 有商品引用時禁止刪除分類
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	BaseModel
}
