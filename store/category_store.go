package store

import (
	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
)

// CategoryStore is the data-access object for categories.
type CategoryStore struct {
	db *gorm.DB
}

// NewCategoryStore creates a CategoryStore bound to the given database handle.
func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// PublishedBySlug fetches a published category by slug. Hidden categories
// resolve to gorm.ErrRecordNotFound just like missing ones.
func (s *CategoryStore) PublishedBySlug(slug string) (models.Category, error) {
	var category models.Category
	err := s.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error
	return category, err
}

// ListPublished returns all published categories for navigation and the
// post form selector.
func (s *CategoryStore) ListPublished() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("is_published = ?", true).Order("title ASC").Find(&categories).Error
	return categories, err
}
