package redis_decorator

import (
	"context"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

/*
redis 只快取商品庫存讀取，所以只有庫存有異動的操作才需要連動 redis
快取失敗一律記 log 後放行，不影響 DB 結果
*/
type CacheAsideProductRepo struct {
	db.IProductRepository
	cache redis_repo.IProductStockCache
}

func NewCacheAsideProductRepo(dbRepo db.IProductRepository, cache redis_repo.IProductStockCache) db.IProductRepository {
	return &CacheAsideProductRepo{IProductRepository: dbRepo, cache: cache}
}

func (p *CacheAsideProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.CreateProduct(ctx, product); err != nil {
		return err
	}
	if err := p.cache.SetProductStock(ctx, product.ProductID, product.Stock); err != nil {
		log.Warn().Err(err).Uint("product_id", product.ProductID).Msg("set product stock cache failed")
	}
	return nil
}

func (p *CacheAsideProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	if err := p.cache.SetProductStock(ctx, product.ProductID, product.Stock); err != nil {
		log.Warn().Err(err).Uint("product_id", product.ProductID).Msg("update product stock cache failed")
	}
	return nil
}

func (p *CacheAsideProductRepo) DeleteProduct(ctx context.Context, productID uint) error {
	if err := p.IProductRepository.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	if err := p.cache.DeleteProductStock(ctx, productID); err != nil {
		log.Warn().Err(err).Uint("product_id", productID).Msg("delete product stock cache failed")
	}
	return nil
}
