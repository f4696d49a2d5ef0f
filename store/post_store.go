package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
)

// PostStore is the data-access object for posts. Controllers receive it
// explicitly instead of reaching into a global model registry.
type PostStore struct {
	db *gorm.DB
}

// NewPostStore creates a PostStore bound to the given database handle.
func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// list composes a scoped base query per the shared listing contract:
// privileged viewers see the full scope, everyone else goes through the
// visibility filter; the result is comment-count annotated, ordered by
// pub_date descending, and paginated with out-of-range clamping.
func (s *PostStore) list(base *gorm.DB, privileged bool, page int) (Page, error) {
	if !privileged {
		base = base.Scopes(Visible(time.Now()))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}

	number, totalPages := clampPage(page, total)

	var posts []models.Post
	err := base.
		Scopes(withCommentCount, newestFirst).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Offset((number - 1) * PostsPerPage).
		Limit(PostsPerPage).
		Find(&posts).Error
	if err != nil {
		return Page{}, err
	}

	return Page{
		Posts:      posts,
		Number:     number,
		TotalPages: totalPages,
		TotalPosts: total,
	}, nil
}

// Feed returns one page of the public home listing.
func (s *PostStore) Feed(page int) (Page, error) {
	return s.list(s.db.Model(&models.Post{}), false, page)
}

// ByCategory returns one page of visible posts inside a category.
func (s *PostStore) ByCategory(categoryID uint, page int) (Page, error) {
	base := s.db.Model(&models.Post{}).Where("posts.category_id = ?", categoryID)
	return s.list(base, false, page)
}

// ByAuthor returns one page of an author's posts. The profile owner is a
// privileged viewer and sees unpublished and scheduled posts too.
func (s *PostStore) ByAuthor(authorID uint, privileged bool, page int) (Page, error) {
	base := s.db.Model(&models.Post{}).Where("posts.author_id = ?", authorID)
	return s.list(base, privileged, page)
}

// GetForViewer fetches one post by id applying the single-post access rule:
// the author gets it unconditionally, anyone else only when it passes the
// visibility filter. A failed check surfaces as gorm.ErrRecordNotFound.
func (s *PostStore) GetForViewer(id uint, viewerID uint) (models.Post, error) {
	var post models.Post
	err := s.db.
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, id).Error
	if err != nil {
		return models.Post{}, err
	}

	if post.AuthorID == viewerID {
		return post, nil
	}

	// Existence check only; the select stays narrow so the joined query does
	// not reference annotation columns that have no backing table column.
	var visible models.Post
	err = s.db.Model(&models.Post{}).
		Select("posts.id").
		Scopes(Visible(time.Now())).
		Where("posts.id = ?", id).
		First(&visible).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, gorm.ErrRecordNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

// Get fetches a post by id without any visibility check.
func (s *PostStore) Get(id uint) (models.Post, error) {
	var post models.Post
	err := s.db.First(&post, id).Error
	return post, err
}

// Create persists a new post.
func (s *PostStore) Create(post *models.Post) error {
	return s.db.Create(post).Error
}

// Update persists changes to an existing post.
func (s *PostStore) Update(post *models.Post) error {
	return s.db.Save(post).Error
}

// Delete removes a post. Attached comments go with it.
func (s *PostStore) Delete(post *models.Post) error {
	if err := s.db.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return s.db.Delete(post).Error
}
