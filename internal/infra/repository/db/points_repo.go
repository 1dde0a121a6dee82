package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrBalanceNotFound (user, venue) 沒有點數餘額紀錄
	ErrBalanceNotFound = errors.New("point balance not found")
	// ErrRewardNotFound 獎勵不存在
	ErrRewardNotFound = errors.New("reward not found")
)

type PointsRepo struct {
	db *DbDao
}

func NewPointsRepo(db *DbDao) *PointsRepo {
	return &PointsRepo{db: db}
}

// WithTx 回傳綁定事務的 repo
func (s *PointsRepo) WithTx(tx *gorm.DB) *PointsRepo {
	return &PointsRepo{db: NewDbDao(tx)}
}

func (s *PointsRepo) GetBalance(ctx context.Context, userID, venueID uint) (*model.PointBalance, error) {
	var balance model.PointBalance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND venue_id = ?", userID, venueID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// GetBalanceForUpdate 取得餘額並上 row lock (SELECT ... FOR UPDATE)
// 兌換的檢查與扣點必須讀同一筆上鎖資料，只能在事務內呼叫
func (s *PointsRepo) GetBalanceForUpdate(ctx context.Context, userID, venueID uint) (*model.PointBalance, error) {
	var balance model.PointBalance
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND venue_id = ?", userID, venueID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// GetOrCreateBalanceForUpdate 沒有餘額紀錄時先建立，再上鎖讀取
// 先 upsert 再鎖，避免兩個併發請求同時建立同一筆 (user, venue)
func (s *PointsRepo) GetOrCreateBalanceForUpdate(ctx context.Context, userID, venueID uint) (*model.PointBalance, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "venue_id"}},
			DoNothing: true,
		}).
		Create(&model.PointBalance{UserID: userID, VenueID: venueID}).Error
	if err != nil {
		return nil, err
	}
	return s.GetBalanceForUpdate(ctx, userID, venueID)
}

func (s *PointsRepo) SaveBalance(ctx context.Context, balance *model.PointBalance) error {
	return s.db.WithContext(ctx).Save(balance).Error
}

func (s *PointsRepo) GetBalancesByVenue(ctx context.Context, venueID uint) ([]model.PointBalance, error) {
	var balances []model.PointBalance
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("total DESC").
		Find(&balances).Error
	return balances, err
}

// SumPointsByVenue 店家所有客人的點數總和與不重複客人數
func (s *PointsRepo) SumPointsByVenue(ctx context.Context, venueID uint) (totalPoints int64, activeCustomers int64, err error) {
	err = s.db.WithContext(ctx).Model(&model.PointBalance{}).
		Where("venue_id = ?", venueID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalPoints).Error
	if err != nil {
		return 0, 0, err
	}

	err = s.db.WithContext(ctx).Model(&model.PointBalance{}).
		Where("venue_id = ?", venueID).
		Distinct("user_id").
		Count(&activeCustomers).Error
	if err != nil {
		return 0, 0, err
	}
	return totalPoints, activeCustomers, nil
}

func (s *PointsRepo) GetRewardByID(ctx context.Context, rewardID uint) (*model.Reward, error) {
	var reward model.Reward
	err := s.db.WithContext(ctx).First(&reward, rewardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return &reward, nil
}

func (s *PointsRepo) GetActiveRewardsByVenue(ctx context.Context, venueID uint) ([]model.Reward, error) {
	var rewards []model.Reward
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND active = ?", venueID, true).
		Order("points_required, name").
		Find(&rewards).Error
	return rewards, err
}

func (s *PointsRepo) CreateReward(ctx context.Context, reward *model.Reward) error {
	return s.db.WithContext(ctx).Create(reward).Error
}

func (s *PointsRepo) UpdateReward(ctx context.Context, reward *model.Reward) error {
	return s.db.WithContext(ctx).Save(reward).Error
}

func (s *PointsRepo) CreateRedemption(ctx context.Context, redemption *model.Redemption) error {
	return s.db.WithContext(ctx).Create(redemption).Error
}

func (s *PointsRepo) GetRedemptionsByVenue(ctx context.Context, venueID uint) ([]model.Redemption, error) {
	var redemptions []model.Redemption
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("created_at DESC").
		Find(&redemptions).Error
	return redemptions, err
}

// CountRedemptionsSince 時間窗內的兌換筆數與用掉的點數
func (s *PointsRepo) CountRedemptionsSince(ctx context.Context, venueID uint, since time.Time) (count int64, pointsUsed int64, err error) {
	row := struct {
		Count  int64
		Points int64
	}{}
	err = s.db.WithContext(ctx).Model(&model.Redemption{}).
		Where("venue_id = ? AND created_at >= ?", venueID, since).
		Select("COUNT(*) as count, COALESCE(SUM(points_used), 0) as points").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Points, nil
}
