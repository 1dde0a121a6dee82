package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/coffeefy/internal/config"
	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"github.com/RoyceAzure/lab/coffeefy/internal/infra/repository/db"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type PointsServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	store         *db.UnifiedDBImpl
	pointsService *PointsService
}

// SetupSuite 在測試套件開始前執行
func (suite *PointsServiceTestSuite) SetupSuite() {
	cfg := config.GetConfig()
	conn, err := db.GetDbConn("coffeefy_test", cfg.DbHost, cfg.DbPort, cfg.DbUser, cfg.DbPas)
	require.NoError(suite.T(), err)

	store := db.NewUnifiedDB(conn)
	require.NoError(suite.T(), store.InitMigrate())

	suite.db = conn
	suite.store = store
	suite.pointsService = NewPointsService(store)
}

// SetupTest 在每個測試前執行
func (suite *PointsServiceTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("DELETE FROM redemptions")
	suite.db.Exec("DELETE FROM rewards")
	suite.db.Exec("DELETE FROM point_balances")
	suite.db.Exec("DELETE FROM venues")
	suite.db.Exec("DELETE FROM users")
}

// TearDownSuite 在測試套件結束後執行
func (suite *PointsServiceTestSuite) TearDownSuite() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *PointsServiceTestSuite) createTestUser(name string) *model.User {
	user := &model.User{
		UserName:  name,
		UserEmail: name + "@example.com",
		Role:      model.RoleCustomer,
	}
	_, err := suite.store.CreateUser(context.Background(), user)
	require.NoError(suite.T(), err)
	return user
}

func (suite *PointsServiceTestSuite) createTestVenue(ownerID uint, pointsRate float64) *model.Venue {
	venue := &model.Venue{
		OwnerID:    ownerID,
		Name:       "Café Central",
		Address:    "Av. Siempre Viva 123",
		Type:       model.VenueTypeCafe,
		PointsRate: pointsRate,
	}
	require.NoError(suite.T(), suite.store.CreateVenue(context.Background(), venue))
	return venue
}

func (suite *PointsServiceTestSuite) TestAccumulate() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	result, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 10000)

	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5000, result.Earned)
	require.Equal(suite.T(), 5000, result.Balance.Total)

	// 再累一次會疊加在既有餘額上
	result, err = suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 3000)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1500, result.Earned)
	require.Equal(suite.T(), 6500, result.Balance.Total)
}

func (suite *PointsServiceTestSuite) TestAccumulate_FloorsEarnedPoints() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.001)

	// 1999 * 0.001 = 1.999 無條件捨去成 1
	result, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 1999)

	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, result.Earned)
	require.Equal(suite.T(), 1, result.Balance.Total)
}

func (suite *PointsServiceTestSuite) TestAccumulate_ZeroEarnedStillCreatesBalance() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.001)

	result, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 500)

	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, result.Earned)
	require.Equal(suite.T(), 0, result.Balance.Total)

	balance, err := suite.pointsService.GetBalance(context.Background(), user.UserID, venue.VenueID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, balance.Total)
}

func (suite *PointsServiceTestSuite) TestAccumulate_NegativeAmount() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	result, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, -100)

	require.True(suite.T(), errors.Is(err, ErrInvalidAmount))
	require.Nil(suite.T(), result)
}

func (suite *PointsServiceTestSuite) TestRedeem() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	_, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 200)
	require.NoError(suite.T(), err)

	redemption, err := suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID, nil, 30, "Café gratis")

	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), redemption.RedemptionID)
	require.Equal(suite.T(), 30, redemption.PointsUsed)

	balance, err := suite.pointsService.GetBalance(context.Background(), user.UserID, venue.VenueID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 70, balance.Total)
}

func (suite *PointsServiceTestSuite) TestRedeem_WithReward() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	reward := &model.Reward{
		VenueID:        venue.VenueID,
		Name:           "Café gratis",
		PointsRequired: 50,
		Active:         true,
	}
	require.NoError(suite.T(), suite.store.CreateReward(context.Background(), reward))

	_, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 200)
	require.NoError(suite.T(), err)

	redemption, err := suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID,
		&reward.RewardID, reward.PointsRequired, reward.Name)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), redemption.RewardID)
	require.Equal(suite.T(), reward.RewardID, *redemption.RewardID)
}

func (suite *PointsServiceTestSuite) TestRedeem_InsufficientPoints() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	_, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 20)
	require.NoError(suite.T(), err)

	redemption, err := suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID, nil, 30, "Café gratis")

	require.True(suite.T(), errors.Is(err, ErrInsufficientPoints))
	require.Nil(suite.T(), redemption)

	// 餘額不變，也不留下兌換紀錄
	balance, err := suite.pointsService.GetBalance(context.Background(), user.UserID, venue.VenueID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 10, balance.Total)

	var count int64
	suite.db.Model(&model.Redemption{}).Count(&count)
	require.Equal(suite.T(), int64(0), count)
}

func (suite *PointsServiceTestSuite) TestRedeem_NoBalance() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	redemption, err := suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID, nil, 30, "Café gratis")

	require.True(suite.T(), errors.Is(err, ErrNoPointBalance))
	require.Nil(suite.T(), redemption)
}

func (suite *PointsServiceTestSuite) TestRedeem_InvalidPointsUsed() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	for _, pointsUsed := range []int{0, -10} {
		redemption, err := suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID, nil, pointsUsed, "")
		require.True(suite.T(), errors.Is(err, ErrInvalidPointsUsed))
		require.Nil(suite.T(), redemption)
	}
}

// 兩個併發兌換搶同一筆餘額，row lock 保證只有一個成功
func (suite *PointsServiceTestSuite) TestRedeem_Concurrent() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	_, err := suite.pointsService.Accumulate(context.Background(), user.UserID, venue.VenueID, 200)
	require.NoError(suite.T(), err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = suite.pointsService.Redeem(context.Background(), user.UserID, venue.VenueID, nil, 80, "Café gratis")
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.True(suite.T(), errors.Is(err, ErrInsufficientPoints))
			failed++
		}
	}
	require.Equal(suite.T(), 1, succeeded)
	require.Equal(suite.T(), 1, failed)

	balance, err := suite.pointsService.GetBalance(context.Background(), user.UserID, venue.VenueID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 20, balance.Total)

	var count int64
	suite.db.Model(&model.Redemption{}).Count(&count)
	require.Equal(suite.T(), int64(1), count)
}

func (suite *PointsServiceTestSuite) TestAdjust() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	balance, err := suite.pointsService.Adjust(context.Background(), user.UserID, venue.VenueID, 30)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 30, balance.Total)

	balance, err = suite.pointsService.Adjust(context.Background(), user.UserID, venue.VenueID, -10)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 20, balance.Total)
}

func (suite *PointsServiceTestSuite) TestAdjust_ClampsAtZero() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	// 沒有餘額紀錄時會先建立再調整，結果不低於零
	balance, err := suite.pointsService.Adjust(context.Background(), user.UserID, venue.VenueID, -50)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, balance.Total)
}

func (suite *PointsServiceTestSuite) TestGetBalance_NotFound() {
	user := suite.createTestUser("cliente1")
	venue := suite.createTestVenue(user.UserID, 0.5)

	balance, err := suite.pointsService.GetBalance(context.Background(), user.UserID, venue.VenueID)

	require.True(suite.T(), errors.Is(err, ErrNoPointBalance))
	require.Nil(suite.T(), balance)
}

func (suite *PointsServiceTestSuite) TestGetSummary() {
	owner := suite.createTestUser("dueno")
	venue := suite.createTestVenue(owner.UserID, 0.5)

	clientA := suite.createTestUser("clienteA")
	clientB := suite.createTestUser("clienteB")

	_, err := suite.pointsService.Accumulate(context.Background(), clientA.UserID, venue.VenueID, 200)
	require.NoError(suite.T(), err)
	_, err = suite.pointsService.Accumulate(context.Background(), clientB.UserID, venue.VenueID, 100)
	require.NoError(suite.T(), err)

	reward := &model.Reward{VenueID: venue.VenueID, Name: "Café gratis", PointsRequired: 50, Active: true}
	require.NoError(suite.T(), suite.store.CreateReward(context.Background(), reward))
	inactive := &model.Reward{VenueID: venue.VenueID, Name: "Descuento", PointsRequired: 20, Active: false}
	require.NoError(suite.T(), suite.store.CreateReward(context.Background(), inactive))

	_, err = suite.pointsService.Redeem(context.Background(), clientA.UserID, venue.VenueID, &reward.RewardID, 50, reward.Name)
	require.NoError(suite.T(), err)

	summary, err := suite.pointsService.GetSummary(context.Background(), venue.VenueID, 0)
	require.NoError(suite.T(), err)

	require.Equal(suite.T(), int64(100), summary.TotalPoints) // 累了 150 點，兌換掉 50 點
	require.Equal(suite.T(), int64(2), summary.ActiveCustomers)
	require.Equal(suite.T(), 1, summary.ActiveRewards)
	require.Equal(suite.T(), int64(1), summary.WindowRedemptions)
	require.Equal(suite.T(), int64(50), summary.WindowPointsUsed)
	require.Equal(suite.T(), 30, summary.WindowDays)
}

// 執行測試套件
func TestPointsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PointsServiceTestSuite))
}
