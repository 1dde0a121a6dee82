package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInUse 商品已被訂單引用，禁止刪除
	ErrProductInUse = errors.New("product is referenced by order items")
)

type ProductDBRepo struct {
	db *DbDao
}

func NewProductDBRepo(db *DbDao) *ProductDBRepo {
	return &ProductDBRepo{db: db}
}

// WithTx 回傳綁定事務的 repo，供 service 在單一事務內組合多個操作
func (s *ProductDBRepo) WithTx(tx *gorm.DB) *ProductDBRepo {
	return &ProductDBRepo{db: NewDbDao(tx)}
}

func (s *ProductDBRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductDBRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetProductForUpdate 取得商品並上 row lock (SELECT ... FOR UPDATE)
// 只能在事務內呼叫，鎖隨事務結束釋放
func (s *ProductDBRepo) GetProductForUpdate(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Read - 店家目錄，依 (venue, display_order) 排序
func (s *ProductDBRepo) GetProductsByVenue(ctx context.Context, venueID uint) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("venue_id, display_order, name").
		Find(&products).Error
	return products, err
}

// Read - 分類目錄，依 (category, display_order) 排序
func (s *ProductDBRepo) GetProductsByCategory(ctx context.Context, categoryID uint) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("category_id, display_order, name").
		Find(&products).Error
	return products, err
}

// Read - 依推導庫存狀態過濾，條件對應 model.Product.StockState
func (s *ProductDBRepo) GetProductsByStockState(ctx context.Context, venueID uint, state model.StockState) ([]model.Product, error) {
	query := s.db.WithContext(ctx).Where("venue_id = ?", venueID)

	switch state {
	case model.StockStateNormal:
		query = query.Where("tracks_stock = ? AND stock > low_stock_threshold", true)
	case model.StockStateLow:
		query = query.Where("tracks_stock = ? AND stock > 0 AND stock > critical_stock_threshold AND stock <= low_stock_threshold", true)
	case model.StockStateCritical:
		query = query.Where("tracks_stock = ? AND stock > 0 AND stock <= critical_stock_threshold", true)
	case model.StockStateOut:
		query = query.Where("(tracks_stock = ? AND stock <= 0) OR (tracks_stock = ? AND in_stock = ?)", true, false, false)
	case model.StockStateAvailable:
		query = query.Where("tracks_stock = ? AND in_stock = ?", false, true)
	}

	var products []model.Product
	err := query.Order("category_id, display_order, name").Find(&products).Error
	return products, err
}

// Read - 低於低水位的追蹤庫存商品
func (s *ProductDBRepo) GetLowStockProducts(ctx context.Context, venueID uint) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND tracks_stock = ? AND stock <= low_stock_threshold", venueID, true).
		Order("stock").
		Find(&products).Error
	return products, err
}

// Update - 整筆更新商品
func (s *ProductDBRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// GetMaxDisplayOrder 該分類目前最大的排序值，新商品預設排在最後
func (s *ProductDBRepo) GetMaxDisplayOrder(ctx context.Context, categoryID uint) (int, error) {
	var maxOrder int
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

// UpdateDisplayOrder 只改排序欄位
func (s *ProductDBRepo) UpdateDisplayOrder(ctx context.Context, productID uint, displayOrder int) error {
	return s.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("display_order", displayOrder).Error
}

// CountProductsInCategory 分類底下的商品數，用來檢查 id 清單是否完整屬於該分類
func (s *ProductDBRepo) CountProductsInCategory(ctx context.Context, categoryID uint, productIDs []uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ? AND product_id IN ?", categoryID, productIDs).
		Count(&count).Error
	return count, err
}

// Delete - 軟刪除商品，被訂單引用時禁止
func (s *ProductDBRepo) DeleteProduct(ctx context.Context, productID uint) error {
	var refs int64
	if err := s.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrProductInUse
	}
	return s.db.WithContext(ctx).Delete(&model.Product{}, productID).Error
}
