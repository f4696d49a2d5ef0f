package store

import (
	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
)

// CommentStore is the data-access object for comments.
type CommentStore struct {
	db *gorm.DB
}

// NewCommentStore creates a CommentStore bound to the given database handle.
func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ByPost returns all comments of a post, oldest first, with authors loaded.
func (s *CommentStore) ByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Preload("Author").
		Find(&comments).Error
	return comments, err
}

// Get fetches one comment by id.
func (s *CommentStore) Get(id uint) (models.Comment, error) {
	var comment models.Comment
	err := s.db.First(&comment, id).Error
	return comment, err
}

// Create persists a new comment.
func (s *CommentStore) Create(comment *models.Comment) error {
	return s.db.Create(comment).Error
}

// Update persists changes to an existing comment.
func (s *CommentStore) Update(comment *models.Comment) error {
	return s.db.Save(comment).Error
}

// Delete removes a comment row. Hard delete, no undo.
func (s *CommentStore) Delete(comment *models.Comment) error {
	return s.db.Delete(comment).Error
}
