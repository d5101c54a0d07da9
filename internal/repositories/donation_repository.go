package repositories

import (
	"github.com/patinhas-app/backend/internal/models"
	"gorm.io/gorm"
)

// DonationRepository defines the interface for donation operations
type DonationRepository interface {
	CreateDonation(donation *models.Donation) error
	GetDonationByPaymentID(paymentID string) (*models.Donation, error)
	GetDonationsByFundraiser(fundraiserID uint) ([]models.Donation, error)
	GetDonationsByUser(userID uint) ([]models.Donation, error)
	UpdateDonation(donation *models.Donation) error
}

// PostgresDonationRepository implements DonationRepository for PostgreSQL
type PostgresDonationRepository struct {
	db *gorm.DB
}

// NewPostgresDonationRepository creates a new PostgresDonationRepository
func NewPostgresDonationRepository(db *gorm.DB) *PostgresDonationRepository {
	return &PostgresDonationRepository{db: db}
}

func (r *PostgresDonationRepository) CreateDonation(donation *models.Donation) error {
	return r.db.Create(donation).Error
}

func (r *PostgresDonationRepository) GetDonationByPaymentID(paymentID string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.Where("payment_id = ?", paymentID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *PostgresDonationRepository) GetDonationsByFundraiser(fundraiserID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.Where("fundraiser_id = ? AND status = ?", fundraiserID, models.DonationPaid).
		Order("created_at DESC").Find(&donations).Error
	return donations, err
}

func (r *PostgresDonationRepository) GetDonationsByUser(userID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&donations).Error
	return donations, err
}

func (r *PostgresDonationRepository) UpdateDonation(donation *models.Donation) error {
	return r.db.Save(donation).Error
}
