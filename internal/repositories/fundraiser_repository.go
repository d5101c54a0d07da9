package repositories

import (
	"github.com/patinhas-app/backend/internal/models"
	"gorm.io/gorm"
)

// FundraiserRepository defines the interface for fundraiser operations
type FundraiserRepository interface {
	CreateFundraiser(fundraiser *models.Fundraiser) error
	GetFundraiserByID(id uint) (*models.Fundraiser, error)
	GetFundraisers(activeOnly bool, offset, limit int) ([]models.Fundraiser, int64, error)
	GetFundraisersByUser(userID uint) ([]models.Fundraiser, error)
	UpdateFundraiser(fundraiser *models.Fundraiser) error
	FundraiserExists(id uint) (bool, error)
	// AddRaisedCents atomically bumps the raised total after a confirmed payment
	AddRaisedCents(id uint, amountCents int64) error
	SetLikesCount(id uint, value int64) error
	SetCommentsCount(id uint, value int64) error
}

// PostgresFundraiserRepository implements FundraiserRepository for PostgreSQL
type PostgresFundraiserRepository struct {
	db *gorm.DB
}

// NewPostgresFundraiserRepository creates a new PostgresFundraiserRepository
func NewPostgresFundraiserRepository(db *gorm.DB) *PostgresFundraiserRepository {
	return &PostgresFundraiserRepository{db: db}
}

func (r *PostgresFundraiserRepository) CreateFundraiser(fundraiser *models.Fundraiser) error {
	return r.db.Create(fundraiser).Error
}

func (r *PostgresFundraiserRepository) GetFundraiserByID(id uint) (*models.Fundraiser, error) {
	var fundraiser models.Fundraiser
	if err := r.db.First(&fundraiser, id).Error; err != nil {
		return nil, err
	}
	return &fundraiser, nil
}

func (r *PostgresFundraiserRepository) GetFundraisers(activeOnly bool, offset, limit int) ([]models.Fundraiser, int64, error) {
	q := r.db.Model(&models.Fundraiser{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var fundraisers []models.Fundraiser
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&fundraisers).Error
	if err != nil {
		return nil, 0, err
	}
	return fundraisers, total, nil
}

func (r *PostgresFundraiserRepository) GetFundraisersByUser(userID uint) ([]models.Fundraiser, error) {
	var fundraisers []models.Fundraiser
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&fundraisers).Error
	return fundraisers, err
}

func (r *PostgresFundraiserRepository) UpdateFundraiser(fundraiser *models.Fundraiser) error {
	return r.db.Save(fundraiser).Error
}

func (r *PostgresFundraiserRepository) FundraiserExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Fundraiser{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *PostgresFundraiserRepository) AddRaisedCents(id uint, amountCents int64) error {
	return r.db.Model(&models.Fundraiser{}).Where("id = ?", id).
		Update("raised_cents", gorm.Expr("raised_cents + ?", amountCents)).Error
}

func (r *PostgresFundraiserRepository) SetLikesCount(id uint, value int64) error {
	return r.setCounter(id, "likes_count", value)
}

func (r *PostgresFundraiserRepository) SetCommentsCount(id uint, value int64) error {
	return r.setCounter(id, "comments_count", value)
}

func (r *PostgresFundraiserRepository) setCounter(id uint, column string, value int64) error {
	if value < 0 {
		value = 0
	}
	return r.db.Model(&models.Fundraiser{}).Where("id = ?", id).Update(column, value).Error
}
