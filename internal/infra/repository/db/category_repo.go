package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound 分類不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse 分類底下還有商品，禁止刪除
	ErrCategoryInUse = errors.New("category still has products")
)

type CategoryRepo struct {
	db *DbDao
}

func NewCategoryRepo(db *DbDao) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// CreateCategory 建立分類，slug 由名稱推導
// 同一個 venue 內 slug 衝突時补上數字後綴: latte, latte-2, latte-3 ...
func (s *CategoryRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	slug, err := s.resolveSlug(ctx, category.VenueID, category.Name, 0)
	if err != nil {
		return err
	}
	category.Slug = slug
	return s.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory 更新分類，名稱有變時重新推導 slug
func (s *CategoryRepo) UpdateCategory(ctx context.Context, category *model.Category) error {
	slug, err := s.resolveSlug(ctx, category.VenueID, category.Name, category.CategoryID)
	if err != nil {
		return err
	}
	category.Slug = slug
	return s.db.WithContext(ctx).Save(category).Error
}

func (s *CategoryRepo) resolveSlug(ctx context.Context, venueID uint, name string, excludeID uint) (string, error) {
	base := util.Slugify(name)

	var taken []string
	query := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("venue_id = ? AND (slug = ? OR slug LIKE ?)", venueID, base, base+"-%")
	if excludeID != 0 {
		query = query.Where("category_id <> ?", excludeID)
	}
	if err := query.Pluck("slug", &taken).Error; err != nil {
		return "", err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, slug := range taken {
		takenSet[slug] = struct{}{}
	}

	if _, ok := takenSet[base]; !ok {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := takenSet[candidate]; !ok {
			return candidate, nil
		}
	}
}

func (s *CategoryRepo) GetCategoryByID(ctx context.Context, categoryID uint) (*model.Category, error) {
	var category model.Category
	err := s.db.WithContext(ctx).First(&category, categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryRepo) GetCategoriesByVenue(ctx context.Context, venueID uint) ([]model.Category, error) {
	var categories []model.Category
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("name").
		Find(&categories).Error
	return categories, err
}

// DeleteCategory 還有商品引用時禁止刪除
func (s *CategoryRepo) DeleteCategory(ctx context.Context, categoryID uint) error {
	var refs int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", categoryID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrCategoryInUse
	}
	return s.db.WithContext(ctx).Delete(&model.Category{}, categoryID).Error
}
