package store

import (
	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
)

// LocationStore is the data-access object for locations.
type LocationStore struct {
	db *gorm.DB
}

// NewLocationStore creates a LocationStore bound to the given database handle.
func NewLocationStore(db *gorm.DB) *LocationStore {
	return &LocationStore{db: db}
}

// ListPublished returns published locations for the post form selector.
func (s *LocationStore) ListPublished() ([]models.Location, error) {
	var locations []models.Location
	err := s.db.Where("is_published = ?", true).Order("name ASC").Find(&locations).Error
	return locations, err
}
