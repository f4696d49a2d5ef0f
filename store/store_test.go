package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogward/blogward/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, slug string, published bool) models.Category {
	t.Helper()
	category := models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(t, db.Create(&category).Error)
	return category
}

type postOpts struct {
	author    models.User
	category  *models.Category
	pubDate   time.Time
	published bool
}

func createPost(t *testing.T, db *gorm.DB, title string, opts postOpts) models.Post {
	t.Helper()
	post := models.Post{
		AuthorID:    opts.author.ID,
		Title:       title,
		Text:        "text of " + title,
		PubDate:     opts.pubDate,
		IsPublished: opts.published,
	}
	if opts.category != nil {
		post.CategoryID = &opts.category.ID
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func feedTitles(t *testing.T, page Page) []string {
	t.Helper()
	titles := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestFeedAppliesVisibilityPredicate(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	open := createCategory(t, db, "travel", true)
	hidden := createCategory(t, db, "drafts", false)
	past := time.Now().Add(-time.Hour)

	createPost(t, db, "visible", postOpts{author: author, category: &open, pubDate: past, published: true})
	createPost(t, db, "uncategorized", postOpts{author: author, pubDate: past, published: true})
	createPost(t, db, "unpublished", postOpts{author: author, category: &open, pubDate: past, published: false})
	createPost(t, db, "hidden-category", postOpts{author: author, category: &hidden, pubDate: past, published: true})
	createPost(t, db, "scheduled", postOpts{author: author, category: &open, pubDate: time.Now().Add(time.Hour), published: true})

	page, err := posts.Feed(1)
	require.NoError(t, err)

	titles := feedTitles(t, page)
	require.ElementsMatch(t, []string{"visible", "uncategorized"}, titles)
}

func TestFeedOrdersNewestFirstAndCountsComments(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)

	author := createUser(t, db, "alice")
	reader := createUser(t, db, "bob")
	now := time.Now()

	older := createPost(t, db, "older", postOpts{author: author, pubDate: now.Add(-2 * time.Hour), published: true})
	newer := createPost(t, db, "newer", postOpts{author: author, pubDate: now.Add(-time.Hour), published: true})

	for i := 0; i < 3; i++ {
		require.NoError(t, comments.Create(&models.Comment{
			PostID:   older.ID,
			AuthorID: reader.ID,
			Text:     fmt.Sprintf("comment %d", i),
		}))
	}

	page, err := posts.Feed(1)
	require.NoError(t, err)
	require.Equal(t, []string{"newer", "older"}, feedTitles(t, page))
	require.EqualValues(t, 0, page.Posts[0].CommentCount)
	require.EqualValues(t, 3, page.Posts[1].CommentCount)
	_ = newer
}

func TestByAuthorPrivilege(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	past := time.Now().Add(-time.Hour)

	createPost(t, db, "public", postOpts{author: author, pubDate: past, published: true})
	createPost(t, db, "draft", postOpts{author: author, pubDate: past, published: false})
	createPost(t, db, "scheduled", postOpts{author: author, pubDate: time.Now().Add(time.Hour), published: true})

	owner, err := posts.ByAuthor(author.ID, true, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"public", "draft", "scheduled"}, feedTitles(t, owner))

	visitor, err := posts.ByAuthor(author.ID, false, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"public"}, feedTitles(t, visitor))
}

func TestByCategoryListsOnlyThatCategory(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	travel := createCategory(t, db, "travel", true)
	food := createCategory(t, db, "food", true)
	past := time.Now().Add(-time.Hour)

	createPost(t, db, "trip", postOpts{author: author, category: &travel, pubDate: past, published: true})
	createPost(t, db, "recipe", postOpts{author: author, category: &food, pubDate: past, published: true})
	createPost(t, db, "trip-draft", postOpts{author: author, category: &travel, pubDate: past, published: false})

	page, err := posts.ByCategory(travel.ID, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"trip"}, feedTitles(t, page))
}

func TestCreatePersistsUnpublishedFlag(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	draft := models.Post{
		AuthorID:    author.ID,
		Title:       "draft",
		Text:        "draft text",
		PubDate:     time.Now().Add(-time.Hour),
		IsPublished: false,
	}
	require.NoError(t, posts.Create(&draft))

	var stored models.Post
	require.NoError(t, db.First(&stored, draft.ID).Error)
	require.False(t, stored.IsPublished)

	page, err := posts.Feed(1)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
}

func TestGetForViewer(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	stranger := createUser(t, db, "bob")
	past := time.Now().Add(-time.Hour)

	visible := createPost(t, db, "visible", postOpts{author: author, pubDate: past, published: true})
	draft := createPost(t, db, "draft", postOpts{author: author, pubDate: past, published: false})

	got, err := posts.GetForViewer(visible.ID, stranger.ID)
	require.NoError(t, err)
	require.Equal(t, visible.ID, got.ID)

	got, err = posts.GetForViewer(draft.ID, author.ID)
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)

	_, err = posts.GetForViewer(draft.ID, stranger.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = posts.GetForViewer(draft.ID, 0)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = posts.GetForViewer(99999, stranger.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFeedPaginationClampsOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	author := createUser(t, db, "alice")
	now := time.Now()
	for i := 0; i < 25; i++ {
		createPost(t, db, fmt.Sprintf("post-%02d", i), postOpts{
			author:    author,
			pubDate:   now.Add(-time.Duration(i+1) * time.Minute),
			published: true,
		})
	}

	page, err := posts.Feed(99)
	require.NoError(t, err)
	require.Equal(t, 3, page.Number)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Posts, 5)
	require.True(t, page.HasPrev())
	require.False(t, page.HasNext())

	first, err := posts.Feed(1)
	require.NoError(t, err)
	require.Len(t, first.Posts, PostsPerPage)
	require.Equal(t, "post-00", first.Posts[0].Title)
}

func TestFeedEmptyListingHasOnePage(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)

	page, err := posts.Feed(5)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
	require.Equal(t, 1, page.TotalPages)
	require.Empty(t, page.Posts)
	require.False(t, page.HasPrev())
	require.False(t, page.HasNext())
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)

	author := createUser(t, db, "alice")
	post := createPost(t, db, "doomed", postOpts{author: author, pubDate: time.Now().Add(-time.Hour), published: true})
	require.NoError(t, comments.Create(&models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "bye"}))

	require.NoError(t, posts.Delete(&post))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUserStoreUsernameTaken(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	alice := createUser(t, db, "alice")

	taken, err := users.UsernameTaken("alice", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = users.UsernameTaken("alice", alice.ID)
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = users.UsernameTaken("carol", 0)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestCategoryStoreHidesUnpublished(t *testing.T) {
	db := setupTestDB(t)
	categories := NewCategoryStore(db)

	createCategory(t, db, "travel", true)
	createCategory(t, db, "drafts", false)

	_, err := categories.PublishedBySlug("drafts")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	category, err := categories.PublishedBySlug("travel")
	require.NoError(t, err)
	require.Equal(t, "travel", category.Slug)

	list, err := categories.ListPublished()
	require.NoError(t, err)
	require.Len(t, list, 1)
}
