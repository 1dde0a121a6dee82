package model

// PointBalance 每個 (user, venue) 一筆，只能透過累積與兌換流程變動
type PointBalance struct {
	BalanceID uint `gorm:"primaryKey" json:"balance_id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_venue" json:"user_id"`
	VenueID   uint `gorm:"not null;uniqueIndex:idx_user_venue" json:"venue_id"`
	Total     int  `gorm:"not null;default:0" json:"total"`
	BaseModel
}

type Reward struct {
	RewardID       uint   `gorm:"primaryKey" json:"reward_id"`
	VenueID        uint   `gorm:"not null;index" json:"venue_id"`
	Name           string `gorm:"not null;type:varchar(120)" json:"name"`
	Description    string `gorm:"type:text" json:"description"`
	PointsRequired int    `gorm:"not null" json:"points_required"`
	ImageURL       string `gorm:"type:varchar(255)" json:"image_url"`
	Active         bool   `gorm:"not null;default:true" json:"active"`
	BaseModel
}

// Redemption 點數兌換紀錄，建立後不再修改
type Redemption struct {
	RedemptionID uint  `gorm:"primaryKey" json:"redemption_id"`
	UserID       uint  `gorm:"not null;index" json:"user_id"`
	VenueID      uint  `gorm:"not null;index" json:"venue_id"`
	RewardID     *uint `gorm:"index" json:"reward_id"` // 獎勵被刪除後保留紀錄
	PointsUsed   int   `gorm:"not null" json:"points_used"`
	Description  string `gorm:"type:varchar(255)" json:"description"`
	BaseModel
}
