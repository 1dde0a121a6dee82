package model

const (
	RoleCustomer = "cliente"
	RoleCafe     = "cafeteria"
	RoleRoastery = "tostaduria"
	RoleHybrid   = "hibrido"
	RoleAdmin    = "admin"
)

type User struct {
	UserID          uint    `gorm:"primaryKey" json:"user_id"`
	UserName        string  `gorm:"not null;type:varchar(50);unique" json:"user_name"`
	UserEmail       string  `gorm:"unique;not null;type:varchar(100)" json:"user_email"`
	Role            string  `gorm:"not null;type:varchar(20);default:'cliente'" json:"role"`
	AvatarURL       string  `gorm:"type:varchar(255)" json:"avatar_url"`
	ReputationScore float64 `gorm:"not null;default:0" json:"reputation_score"`
	IsBarista       bool    `gorm:"not null;default:false" json:"is_barista"`
	Orders          []Order `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"` // 一對多，級聯刪除
	BaseModel
}
