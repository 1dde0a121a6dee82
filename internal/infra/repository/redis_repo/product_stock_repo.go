package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IProductStockCache 商品庫存快取介面，只服務讀取路徑
// 正確性一律以 DB 上鎖後的資料為準
type IProductStockCache interface {
	// SetProductStock 寫入商品庫存快取
	SetProductStock(ctx context.Context, productID uint, stock int) error

	// GetProductStock 讀取商品庫存快取
	GetProductStock(ctx context.Context, productID uint) (int, error)

	// DeleteProductStock 移除商品庫存快取
	DeleteProductStock(ctx context.Context, productID uint) error
}

var (
	// ErrStockCacheMiss 快取沒有該商品
	ErrStockCacheMiss = errors.New("product stock cache miss")
)

const stockCacheTTL = 10 * time.Minute

/*	redis 專注商品庫存讀取
	結構:
	product:{id}:stock -> int */

type ProductStockRepo struct {
	client *redis.Client
}

func NewProductStockRepo(client *redis.Client) *ProductStockRepo {
	return &ProductStockRepo{client: client}
}

func generateProductStockKey(productID uint) string {
	return fmt.Sprintf("product:%d:stock", productID)
}

func (s *ProductStockRepo) SetProductStock(ctx context.Context, productID uint, stock int) error {
	return s.client.Set(ctx, generateProductStockKey(productID), stock, stockCacheTTL).Err()
}

func (s *ProductStockRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	stock, err := s.client.Get(ctx, generateProductStockKey(productID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrStockCacheMiss
		}
		return 0, err
	}
	return stock, nil
}

func (s *ProductStockRepo) DeleteProductStock(ctx context.Context, productID uint) error {
	return s.client.Del(ctx, generateProductStockKey(productID)).Err()
}

var _ IProductStockCache = (*ProductStockRepo)(nil)
