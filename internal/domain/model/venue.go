package model

const (
	VenueTypeCafe     = "cafeteria"
	VenueTypeRoastery = "tostaduria"
	VenueTypeHybrid   = "hibrido"
)

// Venue 店家，擁有自己的商品目錄、點數方案與通知
type Venue struct {
	VenueID     uint   `gorm:"primaryKey" json:"venue_id"`
	OwnerID     uint   `gorm:"not null" json:"owner_id"` // 外鍵，關聯到 User
	Name        string `gorm:"not null;type:varchar(120)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Address     string `gorm:"not null;type:varchar(200)" json:"address"`
	Schedule    string `gorm:"type:varchar(200)" json:"schedule"`
	Type        string `gorm:"not null;type:varchar(20);default:'cafeteria'" json:"type"`
	// 消費金額轉換成點數的比率，accumulate 時使用
	PointsRate float64 `gorm:"not null;default:0.001" json:"points_rate"`
	QRCodeURL  string  `gorm:"type:varchar(255)" json:"qr_code_url"`

	Categories    []Category     `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
	Products      []Product      `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
	Orders        []Order        `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
	Rewards       []Reward       `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []Notification `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}
