package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/coffeefy/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrVenueNotFound 店家不存在
	ErrVenueNotFound = errors.New("venue not found")
)

type VenueRepo struct {
	db *DbDao
}

func NewVenueRepo(db *DbDao) *VenueRepo {
	return &VenueRepo{db: db}
}

func (s *VenueRepo) CreateVenue(ctx context.Context, venue *model.Venue) error {
	return s.db.WithContext(ctx).Create(venue).Error
}

func (s *VenueRepo) GetVenueByID(ctx context.Context, venueID uint) (*model.Venue, error) {
	var venue model.Venue
	err := s.db.WithContext(ctx).First(&venue, venueID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (s *VenueRepo) GetVenuesByOwner(ctx context.Context, ownerID uint) ([]model.Venue, error) {
	var venues []model.Venue
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name").
		Find(&venues).Error
	return venues, err
}

func (s *VenueRepo) UpdateVenue(ctx context.Context, venue *model.Venue) error {
	return s.db.WithContext(ctx).Save(venue).Error
}
