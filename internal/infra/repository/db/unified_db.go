package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	Begin(ctx context.Context) *gorm.DB
	InitMigrate() error

	IUserRepository
	IVenueRepository
	ICategoryRepository
	IProductRepository
	IOrderRepository
	IPointsRepository
	INotificationRepository
}

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetUserByName(ctx context.Context, userName string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// IVenueRepository Venue 相關操作介面
type IVenueRepository interface {
	CreateVenue(ctx context.Context, venue *model.Venue) error
	GetVenueByID(ctx context.Context, venueID uint) (*model.Venue, error)
	GetVenuesByOwner(ctx context.Context, ownerID uint) ([]model.Venue, error)
	UpdateVenue(ctx context.Context, venue *model.Venue) error
}

// ICategoryRepository Category 相關操作介面
type ICategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, categoryID uint) (*model.Category, error)
	GetCategoriesByVenue(ctx context.Context, venueID uint) ([]model.Category, error)
	DeleteCategory(ctx context.Context, categoryID uint) error
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProductForUpdate(ctx context.Context, productID uint) (*model.Product, error)
	GetProductsByVenue(ctx context.Context, venueID uint) ([]model.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID uint) ([]model.Product, error)
	GetProductsByStockState(ctx context.Context, venueID uint, state model.StockState) ([]model.Product, error)
	GetLowStockProducts(ctx context.Context, venueID uint) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	GetMaxDisplayOrder(ctx context.Context, categoryID uint) (int, error)
	UpdateDisplayOrder(ctx context.Context, productID uint, displayOrder int) error
	CountProductsInCategory(ctx context.Context, categoryID uint, productIDs []uint) (int64, error)
	DeleteProduct(ctx context.Context, productID uint) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error)
	GetOrdersByVenue(ctx context.Context, venueID uint, statuses []string) ([]model.Order, error)
	GetActiveOrders(ctx context.Context, venueID uint, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status string) error
	CountOrdersByStatus(ctx context.Context, venueID uint) (map[string]int64, error)
	GetOldestPendingOrder(ctx context.Context, venueID uint) (*model.Order, error)
	GetAverageMinutesInStatus(ctx context.Context, venueID uint, statuses []string) (*float64, error)
	GetOrdersSince(ctx context.Context, venueID uint, since time.Time) ([]model.Order, error)
}

// IPointsRepository 點數與兌換相關操作介面
type IPointsRepository interface {
	GetBalance(ctx context.Context, userID, venueID uint) (*model.PointBalance, error)
	GetBalanceForUpdate(ctx context.Context, userID, venueID uint) (*model.PointBalance, error)
	GetOrCreateBalanceForUpdate(ctx context.Context, userID, venueID uint) (*model.PointBalance, error)
	SaveBalance(ctx context.Context, balance *model.PointBalance) error
	GetBalancesByVenue(ctx context.Context, venueID uint) ([]model.PointBalance, error)
	SumPointsByVenue(ctx context.Context, venueID uint) (int64, int64, error)
	GetRewardByID(ctx context.Context, rewardID uint) (*model.Reward, error)
	GetActiveRewardsByVenue(ctx context.Context, venueID uint) ([]model.Reward, error)
	CreateReward(ctx context.Context, reward *model.Reward) error
	UpdateReward(ctx context.Context, reward *model.Reward) error
	CreateRedemption(ctx context.Context, redemption *model.Redemption) error
	GetRedemptionsByVenue(ctx context.Context, venueID uint) ([]model.Redemption, error)
	CountRedemptionsSince(ctx context.Context, venueID uint, since time.Time) (int64, int64, error)
}

// INotificationRepository Notification 相關操作介面
type INotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationByID(ctx context.Context, notificationID uint) (*model.Notification, error)
	GetNotificationsByVenue(ctx context.Context, venueID uint, unreadOnly bool) ([]model.Notification, error)
	GetNotificationsByProduct(ctx context.Context, productID uint) ([]model.Notification, error)
	CountUnreadByVenue(ctx context.Context, venueID uint) (int64, error)
	MarkRead(ctx context.Context, notificationID uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, venueID uint) (int64, error)
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*UserRepo
	*VenueRepo
	*CategoryRepo
	*ProductDBRepo
	*OrderRepo
	*PointsRepo
	*NotificationRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:               db,
		dbDao:            dbDao,
		UserRepo:         NewUserRepo(dbDao),
		VenueRepo:        NewVenueRepo(dbDao),
		CategoryRepo:     NewCategoryRepo(dbDao),
		ProductDBRepo:    NewProductDBRepo(dbDao),
		OrderRepo:        NewOrderRepo(dbDao),
		PointsRepo:       NewPointsRepo(dbDao),
		NotificationRepo: NewNotificationRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// Begin 開始事務
func (u *UnifiedDBImpl) Begin(ctx context.Context) *gorm.DB {
	return u.db.WithContext(ctx).Begin()
}

var _ UnifiedDB = (*UnifiedDBImpl)(nil)
