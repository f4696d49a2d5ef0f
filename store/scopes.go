package store

import (
	"time"

	"gorm.io/gorm"
)

// Visible restricts a post query to publicly readable posts: the post is
// published, its category (when set) is published, and its publication date
// is not in the future. This is the single definition shared by the home
// feed, the detail lookup for non-authors, category listings, and foreign
// profile pages.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date <= ? AND (posts.category_id IS NULL OR categories.is_published = ?)",
				true, now, true)
	}
}

// withCommentCount annotates each post row with the number of attached comments.
func withCommentCount(q *gorm.DB) *gorm.DB {
	return q.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

// newestFirst orders posts by publication timestamp descending. Ties keep
// the store's natural order.
func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("posts.pub_date DESC")
}
