package repositories

import (
	"github.com/patinhas-app/backend/internal/models"
	"gorm.io/gorm"
)

// PetListingFilter narrows listing queries; zero values mean "any"
type PetListingFilter struct {
	Category string
	Species  string
	City     string
	Resolved *bool
}

// PetListingRepository defines the interface for pet listing operations
type PetListingRepository interface {
	CreateListing(listing *models.PetListing) error
	GetListingByID(id uint) (*models.PetListing, error)
	GetListings(filter PetListingFilter, offset, limit int) ([]models.PetListing, int64, error)
	GetListingsByUser(userID uint) ([]models.PetListing, error)
	UpdateListing(listing *models.PetListing) error
	DeleteListing(id uint) error
	ListingExists(id uint) (bool, error)
	SetLikesCount(id uint, value int64) error
	SetCommentsCount(id uint, value int64) error
}

// PostgresPetListingRepository implements PetListingRepository for PostgreSQL
type PostgresPetListingRepository struct {
	db *gorm.DB
}

// NewPostgresPetListingRepository creates a new PostgresPetListingRepository
func NewPostgresPetListingRepository(db *gorm.DB) *PostgresPetListingRepository {
	return &PostgresPetListingRepository{db: db}
}

// CreateListing creates a new pet listing in PostgreSQL
func (r *PostgresPetListingRepository) CreateListing(listing *models.PetListing) error {
	return r.db.Create(listing).Error
}

// GetListingByID retrieves a pet listing by ID
func (r *PostgresPetListingRepository) GetListingByID(id uint) (*models.PetListing, error) {
	var listing models.PetListing
	if err := r.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListings retrieves filtered listings plus the total match count
func (r *PostgresPetListingRepository) GetListings(filter PetListingFilter, offset, limit int) ([]models.PetListing, int64, error) {
	q := r.db.Model(&models.PetListing{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Species != "" {
		q = q.Where("species = ?", filter.Species)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Resolved != nil {
		q = q.Where("resolved = ?", *filter.Resolved)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.PetListing
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// GetListingsByUser retrieves all listings created by a user
func (r *PostgresPetListingRepository) GetListingsByUser(userID uint) ([]models.PetListing, error) {
	var listings []models.PetListing
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// UpdateListing updates an existing pet listing
func (r *PostgresPetListingRepository) UpdateListing(listing *models.PetListing) error {
	return r.db.Save(listing).Error
}

// DeleteListing deletes a pet listing by ID
func (r *PostgresPetListingRepository) DeleteListing(id uint) error {
	return r.db.Delete(&models.PetListing{}, id).Error
}

// ListingExists reports whether a pet listing exists
func (r *PostgresPetListingRepository) ListingExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PetListing{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SetLikesCount overwrites the likes counter of a listing
func (r *PostgresPetListingRepository) SetLikesCount(id uint, value int64) error {
	return r.setCounter(id, "likes_count", value)
}

// SetCommentsCount overwrites the comments counter of a listing
func (r *PostgresPetListingRepository) SetCommentsCount(id uint, value int64) error {
	return r.setCounter(id, "comments_count", value)
}

func (r *PostgresPetListingRepository) setCounter(id uint, column string, value int64) error {
	if value < 0 {
		value = 0
	}
	return r.db.Model(&models.PetListing{}).Where("id = ?", id).Update(column, value).Error
}
