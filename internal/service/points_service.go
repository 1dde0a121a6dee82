package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"gorm.io/gorm"
)

var (
	ErrNoPointBalance     = errors.New("user has no point balance at this venue")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrInvalidPointsUsed  = errors.New("points used must be positive")
)

// AccumulateResult 累點結果
type AccumulateResult struct {
	Earned  int                 `json:"earned"`
	Balance *model.PointBalance `json:"balance"`
}

// PointsSummary 點數方案統計
type PointsSummary struct {
	TotalPoints       int64     `json:"total_points"`
	ActiveCustomers   int64     `json:"active_customers"`
	ActiveRewards     int       `json:"active_rewards"`
	WindowRedemptions int64     `json:"redemptions_last_window"`
	WindowPointsUsed  int64     `json:"points_redeemed_last_window"`
	WindowDays        int       `json:"window_days"`
	GeneratedAt       time.Time `json:"generated_at"`
}

type IPointsService interface {
	Accumulate(ctx context.Context, userID, venueID uint, amount float64) (*AccumulateResult, error)
	Redeem(ctx context.Context, userID, venueID uint, rewardID *uint, pointsUsed int, description string) (*model.Redemption, error)
	Adjust(ctx context.Context, userID, venueID uint, delta int) (*model.PointBalance, error)
	GetBalance(ctx context.Context, userID, venueID uint) (*model.PointBalance, error)
	GetSummary(ctx context.Context, venueID uint, windowDays int) (*PointsSummary, error)
}

// PointsService 點數帳本，每個 (user, venue) 一筆餘額
// 兌換的餘額檢查與扣點必須在同一個 row lock 底下完成
type PointsService struct {
	store db.UnifiedDB
}

func NewPointsService(store db.UnifiedDB) *PointsService {
	if store == nil {
		panic("points service dependency store is nil")
	}
	return &PointsService{store: store}
}

// Accumulate 消費累點
// pointsEarned = floor(amount * venue.PointsRate)，餘額不存在時建立
func (s *PointsService) Accumulate(ctx context.Context, userID, venueID uint, amount float64) (*AccumulateResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	var result AccumulateResult
	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		dao := db.NewDbDao(tx)
		venueRepo := db.NewVenueRepo(dao)
		pointsRepo := db.NewPointsRepo(dao)

		venue, err := venueRepo.GetVenueByID(ctx, venueID)
		if err != nil {
			return err
		}

		earned := int(math.Floor(amount * venue.PointsRate))

		balance, err := pointsRepo.GetOrCreateBalanceForUpdate(ctx, userID, venueID)
		if err != nil {
			return err
		}
		balance.Total += max(earned, 0)
		if err := pointsRepo.SaveBalance(ctx, balance); err != nil {
			return err
		}

		result.Earned = earned
		result.Balance = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Redeem 點數兌換
// 餘額檢查與扣點讀同一筆上鎖資料，避免兩個併發兌換都用過期餘額通過檢查
// 沒有餘額紀錄回傳 ErrNoPointBalance，餘額不足回傳 ErrInsufficientPoints
func (s *PointsService) Redeem(ctx context.Context, userID, venueID uint, rewardID *uint, pointsUsed int, description string) (*model.Redemption, error) {
	if pointsUsed <= 0 {
		return nil, ErrInvalidPointsUsed
	}

	var redemption *model.Redemption
	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		pointsRepo := db.NewPointsRepo(db.NewDbDao(tx))

		balance, err := pointsRepo.GetBalanceForUpdate(ctx, userID, venueID)
		if err != nil {
			if errors.Is(err, db.ErrBalanceNotFound) {
				return ErrNoPointBalance
			}
			return err
		}

		if balance.Total < pointsUsed {
			return ErrInsufficientPoints
		}

		balance.Total -= pointsUsed
		if err := pointsRepo.SaveBalance(ctx, balance); err != nil {
			return err
		}

		redemption = &model.Redemption{
			UserID:      userID,
			VenueID:     venueID,
			RewardID:    rewardID,
			PointsUsed:  pointsUsed,
			Description: description,
		}
		return pointsRepo.CreateRedemption(ctx, redemption)
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// Adjust 後台調整，結果不會低於零
func (s *PointsService) Adjust(ctx context.Context, userID, venueID uint, delta int) (*model.PointBalance, error) {
	var balance *model.PointBalance
	err := s.store.GetDB().Transaction(func(tx *gorm.DB) error {
		pointsRepo := db.NewPointsRepo(db.NewDbDao(tx))

		b, err := pointsRepo.GetOrCreateBalanceForUpdate(ctx, userID, venueID)
		if err != nil {
			return err
		}

		b.Total = max(b.Total+delta, 0)
		if err := pointsRepo.SaveBalance(ctx, b); err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *PointsService) GetBalance(ctx context.Context, userID, venueID uint) (*model.PointBalance, error) {
	balance, err := s.store.GetBalance(ctx, userID, venueID)
	if err != nil {
		if errors.Is(err, db.ErrBalanceNotFound) {
			return nil, ErrNoPointBalance
		}
		return nil, err
	}
	return balance, nil
}

// GetSummary 點數方案統計，windowDays <= 0 時預設 30 天
func (s *PointsService) GetSummary(ctx context.Context, venueID uint, windowDays int) (*PointsSummary, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	totalPoints, activeCustomers, err := s.store.SumPointsByVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	rewards, err := s.store.GetActiveRewardsByVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	redemptions, pointsUsed, err := s.store.CountRedemptionsSince(ctx, venueID, since)
	if err != nil {
		return nil, err
	}

	return &PointsSummary{
		TotalPoints:       totalPoints,
		ActiveCustomers:   activeCustomers,
		ActiveRewards:     len(rewards),
		WindowRedemptions: redemptions,
		WindowPointsUsed:  pointsUsed,
		WindowDays:        windowDays,
		GeneratedAt:       time.Now(),
	}, nil
}

var _ IPointsService = (*PointsService)(nil)
