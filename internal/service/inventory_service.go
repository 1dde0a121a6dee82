package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidReorder    = errors.New("reorder list does not match category products")
)

type IInventoryService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (*model.Product, error)
	SaveProduct(ctx context.Context, product *model.Product, actorID *uint) (*model.Product, error)
	AdjustStock(ctx context.Context, productID uint, delta int) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID uint) error
	ReorderCategory(ctx context.Context, categoryID uint, productIDs []uint) error
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetCatalog(ctx context.Context, venueID uint) ([]model.Product, error)
}

// CreateProductParams 指標欄位為 nil 時套用預設值
type CreateProductParams struct {
	VenueID     uint
	CategoryID  uint
	Name        string
	Description string
	Price       decimal.Decimal

	TracksStock            *bool // nil 時繼承分類的 tracks_stock
	Stock                  int
	LowStockThreshold      *int // nil 時預設 5
	CriticalStockThreshold *int // nil 時預設 0
	DisplayOrder           *int // nil 時排在分類最後
	State                  string
	ImageURL               string
}

// InventoryService 庫存帳本，商品每次落地都會正規化欄位並推導庫存狀態
// 狀態轉移交給 NotificationService 在寫入完成後發送
type InventoryService struct {
	store    db.UnifiedDB
	products db.IProductRepository // 可能是帶 redis 快取的裝飾 repo
	cache    redis_repo.IProductStockCache
	notifier INotificationService
}

// NewInventoryService products 傳 nil 時直接用 store，cache 傳 nil 時不快取
func NewInventoryService(store db.UnifiedDB, products db.IProductRepository, cache redis_repo.IProductStockCache, notifier INotificationService) *InventoryService {
	if store == nil {
		panic("inventory service dependency store is nil")
	}
	if notifier == nil {
		panic("inventory service dependency notifier is nil")
	}
	if products == nil {
		products = store
	}
	return &InventoryService{store: store, products: products, cache: cache, notifier: notifier}
}

// CreateProduct 建立商品，預設值繼承自分類
func (s *InventoryService) CreateProduct(ctx context.Context, params CreateProductParams) (*model.Product, error) {
	category, err := s.store.GetCategoryByID(ctx, params.CategoryID)
	if err != nil {
		return nil, err
	}

	tracksStock := category.TracksStock
	if params.TracksStock != nil {
		tracksStock = *params.TracksStock
	}

	lowThreshold := model.DefaultLowStockThreshold
	if params.LowStockThreshold != nil {
		lowThreshold = *params.LowStockThreshold
	}
	criticalThreshold := model.DefaultCriticalStockThreshold
	if params.CriticalStockThreshold != nil {
		criticalThreshold = *params.CriticalStockThreshold
	}

	displayOrder := 0
	if params.DisplayOrder != nil {
		displayOrder = *params.DisplayOrder
	} else {
		maxOrder, err := s.store.GetMaxDisplayOrder(ctx, params.CategoryID)
		if err != nil {
			return nil, err
		}
		displayOrder = maxOrder + 1
	}

	state := params.State
	if state == "" {
		state = model.ProductStateStandard
	}

	product := &model.Product{
		VenueID:                params.VenueID,
		CategoryID:             params.CategoryID,
		Name:                   params.Name,
		Description:            params.Description,
		Price:                  params.Price,
		TracksStock:            tracksStock,
		Stock:                  params.Stock,
		InStock:                true,
		LowStockThreshold:      lowThreshold,
		CriticalStockThreshold: criticalThreshold,
		DisplayOrder:           displayOrder,
		State:                  state,
		IsActive:               true,
		ImageURL:               params.ImageURL,
	}
	product.Normalize()

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	// 第一次落地，沒有先前狀態可比對
	s.notifier.EmitProductCreated(ctx, product)
	return product, nil
}

// SaveProduct 目錄編輯路徑
// 整筆覆寫前先上 row lock，庫存數字以鎖到的資料為準，只能經由 AdjustStock 或下單變動
// 寫入後用值比較發送轉移通知，不重查 DB
func (s *InventoryService) SaveProduct(ctx context.Context, product *model.Product, actorID *uint) (*model.Product, error) {
	var before model.StockState

	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		repo := db.NewProductDBRepo(db.NewDbDao(tx))

		prev, err := repo.GetProductForUpdate(ctx, product.ProductID)
		if err != nil {
			return err
		}
		before = prev.StockState()

		// 編輯用的是呼叫端較早讀到的快照，不能讓過期的庫存蓋掉併發訂單的扣減
		product.Stock = prev.Stock
		product.Normalize()
		return repo.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.EmitStockTransition(ctx, product, before, product.StockState())
	if actorID != nil {
		s.notifier.EmitProductUpdated(ctx, product, actorID)
	}
	s.refreshStockCache(ctx, product)
	return product, nil
}

// DeleteProduct 下架並刪除商品，已被訂單引用時回傳 ErrProductInUse
func (s *InventoryService) DeleteProduct(ctx context.Context, productID uint) error {
	return s.products.DeleteProduct(ctx, productID)
}

// AdjustStock 調整庫存
// 不追蹤庫存的商品不持有數字庫存，直接不做事
// delta 為負且超過現有庫存時回傳 ErrInsufficientStock，不做任何變更
func (s *InventoryService) AdjustStock(ctx context.Context, productID uint, delta int) (*model.Product, error) {
	var (
		product *model.Product
		before  model.StockState
		changed bool
	)

	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		repo := db.NewProductDBRepo(db.NewDbDao(tx))

		p, err := repo.GetProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		product = p

		if !p.TracksStock {
			return nil
		}

		before = p.StockState()
		if delta < 0 && -delta > p.Stock {
			return ErrInsufficientStock
		}

		p.Stock += delta
		p.Normalize()
		if err := repo.UpdateProduct(ctx, p); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifier.EmitStockTransition(ctx, product, before, product.StockState())
		s.refreshStockCache(ctx, product)
	}
	return product, nil
}

// ReorderCategory 重排分類內商品的顯示順序，id 清單必須完整屬於該分類
func (s *InventoryService) ReorderCategory(ctx context.Context, categoryID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}

	count, err := s.store.CountProductsInCategory(ctx, categoryID, productIDs)
	if err != nil {
		return err
	}
	if count != int64(len(productIDs)) {
		return ErrInvalidReorder
	}

	return s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		repo := db.NewProductDBRepo(db.NewDbDao(tx))
		for index, productID := range productIDs {
			if err := repo.UpdateDisplayOrder(ctx, productID, index); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *InventoryService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	return s.products.GetProductByID(ctx, productID)
}

func (s *InventoryService) GetCatalog(ctx context.Context, venueID uint) ([]model.Product, error) {
	return s.products.GetProductsByVenue(ctx, venueID)
}

// refreshStockCache 事務提交後更新快取，失敗只記 log
func (s *InventoryService) refreshStockCache(ctx context.Context, product *model.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProductStock(ctx, product.ProductID, product.Stock); err != nil {
		log.Warn().Err(err).Uint("product_id", product.ProductID).Msg("refresh product stock cache failed")
	}
}

var _ IInventoryService = (*InventoryService)(nil)
