package store

import (
	"strconv"

	"github.com/blogward/blogward/models"
)

// PostsPerPage is the fixed page size for every post listing.
const PostsPerPage = 10

// Page is one slice of an ordered post listing plus navigation metadata.
type Page struct {
	Posts      []models.Post
	Number     int
	TotalPages int
	TotalPosts int64
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page number, valid only when HasPrev.
func (p Page) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page number, valid only when HasNext.
func (p Page) NextNumber() int { return p.Number + 1 }

// ParsePage interprets the "page" query parameter. Non-numeric or
// non-positive input degrades to page 1; it never fails.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// clampPage folds an out-of-range page number to the nearest valid page.
// An empty listing still has exactly one (empty) page.
func clampPage(page int, total int64) (number, totalPages int) {
	totalPages = int((total + PostsPerPage - 1) / PostsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}
