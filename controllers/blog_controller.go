package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/forms"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

// BlogController serves the public listings and the author-gated post CRUD.
type BlogController struct {
	posts      *store.PostStore
	comments   *store.CommentStore
	categories *store.CategoryStore
	locations  *store.LocationStore
}

// NewBlogController creates a BlogController over the given stores.
func NewBlogController(posts *store.PostStore, comments *store.CommentStore, categories *store.CategoryStore, locations *store.LocationStore) *BlogController {
	return &BlogController{posts: posts, comments: comments, categories: categories, locations: locations}
}

// Home renders the paginated listing of publicly visible posts.
func (c *BlogController) Home(ctx *gin.Context) {
	page, err := c.posts.Feed(store.ParsePage(ctx.Query("page")))
	if err != nil {
		utils.Sugar.Errorf("home listing failed: %v", err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}
	render(ctx, http.StatusOK, "index.html", gin.H{
		"Title": "Latest posts",
		"Page":  page,
	})
}

// PostDetail renders a single post with its comments and the comment form.
// Non-authors only reach posts passing the visibility filter; everything
// else is a 404, not a permissions error.
func (c *BlogController) PostDetail(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		renderNotFound(ctx)
		return
	}

	post, err := c.posts.GetForViewer(postID, viewerID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return
		}
		utils.Sugar.Errorf("post %d lookup failed: %v", postID, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	comments, err := c.comments.ByPost(post.ID)
	if err != nil {
		utils.Sugar.Errorf("comments for post %d failed: %v", post.ID, err)
	}

	render(ctx, http.StatusOK, "detail.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
	})
}

// CategoryPosts renders the paginated visible posts of a published category.
func (c *BlogController) CategoryPosts(ctx *gin.Context) {
	category, err := c.categories.PublishedBySlug(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return
		}
		utils.Sugar.Errorf("category %q lookup failed: %v", ctx.Param("slug"), err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	page, err := c.posts.ByCategory(category.ID, store.ParsePage(ctx.Query("page")))
	if err != nil {
		utils.Sugar.Errorf("category %q listing failed: %v", category.Slug, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	render(ctx, http.StatusOK, "category.html", gin.H{
		"Title":    category.Title,
		"Category": category,
		"Page":     page,
	})
}

// CreatePost serves the post form (GET) and persists a new post (POST).
func (c *BlogController) CreatePost(ctx *gin.Context) {
	user := middleware.UserFrom(ctx)

	if ctx.Request.Method != http.MethodPost {
		c.renderPostForm(ctx, http.StatusOK, forms.PostForm{IsPublished: true}, nil, nil)
		return
	}

	var form forms.PostForm
	if err := ctx.ShouldBind(&form); err != nil {
		c.renderPostForm(ctx, http.StatusOK, form, forms.FieldErrors(err), nil)
		return
	}

	pubDate, err := form.ParsedPubDate()
	if err != nil {
		c.renderPostForm(ctx, http.StatusOK, form, map[string]string{"pub_date": "Enter a valid date and time."}, nil)
		return
	}

	post := models.Post{
		AuthorID:    user.ID,
		CategoryID:  form.CategoryRef(),
		LocationID:  form.LocationRef(),
		Title:       utils.Sanitize(strings.TrimSpace(form.Title)),
		Text:        utils.Sanitize(form.Text),
		PubDate:     pubDate,
		IsPublished: form.IsPublished,
	}

	if err := c.posts.Create(&post); err != nil {
		utils.Sugar.Errorf("create post failed: %v", err)
		c.renderPostForm(ctx, http.StatusOK, form, map[string]string{"__all__": "Could not save the post."}, nil)
		return
	}

	seeOther(ctx, profileURL(user.Username))
}

// EditPost serves the prefilled post form and persists changes. Non-authors
// are silently redirected to the read view.
func (c *BlogController) EditPost(ctx *gin.Context) {
	post, ok := c.loadOwnPost(ctx)
	if !ok {
		return
	}

	if ctx.Request.Method != http.MethodPost {
		form := forms.PostForm{
			Title:       post.Title,
			Text:        post.Text,
			PubDate:     post.PubDate.Format(forms.PubDateFormat),
			IsPublished: post.IsPublished,
		}
		if post.CategoryID != nil {
			form.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
		}
		if post.LocationID != nil {
			form.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
		}
		c.renderPostForm(ctx, http.StatusOK, form, nil, &post)
		return
	}

	var form forms.PostForm
	if err := ctx.ShouldBind(&form); err != nil {
		c.renderPostForm(ctx, http.StatusOK, form, forms.FieldErrors(err), &post)
		return
	}

	pubDate, err := form.ParsedPubDate()
	if err != nil {
		c.renderPostForm(ctx, http.StatusOK, form, map[string]string{"pub_date": "Enter a valid date and time."}, &post)
		return
	}

	post.Title = utils.Sanitize(strings.TrimSpace(form.Title))
	post.Text = utils.Sanitize(form.Text)
	post.PubDate = pubDate
	post.CategoryID = form.CategoryRef()
	post.LocationID = form.LocationRef()
	post.IsPublished = form.IsPublished

	if err := c.posts.Update(&post); err != nil {
		utils.Sugar.Errorf("update post %d failed: %v", post.ID, err)
		c.renderPostForm(ctx, http.StatusOK, form, map[string]string{"__all__": "Could not save the post."}, &post)
		return
	}

	seeOther(ctx, postDetailURL(post.ID))
}

// DeletePost shows a confirmation page and removes the post.
func (c *BlogController) DeletePost(ctx *gin.Context) {
	post, ok := c.loadOwnPost(ctx)
	if !ok {
		return
	}

	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "post_confirm_delete.html", gin.H{
			"Title": "Delete post",
			"Post":  post,
		})
		return
	}

	user := middleware.UserFrom(ctx)
	if err := c.posts.Delete(&post); err != nil {
		utils.Sugar.Errorf("delete post %d failed: %v", post.ID, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	seeOther(ctx, profileURL(user.Username))
}

// loadOwnPost fetches the addressed post and applies the authorization
// guard: a missing post is a 404, a foreign post means a silent redirect to
// the read view.
func (c *BlogController) loadOwnPost(ctx *gin.Context) (models.Post, bool) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		renderNotFound(ctx)
		return models.Post{}, false
	}

	post, err := c.posts.Get(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return models.Post{}, false
		}
		utils.Sugar.Errorf("post %d lookup failed: %v", postID, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return models.Post{}, false
	}

	if user := middleware.UserFrom(ctx); user == nil || post.AuthorID != user.ID {
		seeOther(ctx, postDetailURL(post.ID))
		return models.Post{}, false
	}

	return post, true
}

func (c *BlogController) renderPostForm(ctx *gin.Context, status int, form forms.PostForm, fieldErrors map[string]string, post *models.Post) {
	categories, err := c.categories.ListPublished()
	if err != nil {
		utils.Sugar.Errorf("category list failed: %v", err)
	}
	locations, err := c.locations.ListPublished()
	if err != nil {
		utils.Sugar.Errorf("location list failed: %v", err)
	}

	data := gin.H{
		"Title":      "Post",
		"Form":       form,
		"Errors":     fieldErrors,
		"Categories": categories,
		"Locations":  locations,
	}
	if post != nil {
		data["Post"] = post
	}
	render(ctx, status, "post_form.html", data)
}

// paramID parses a numeric path parameter.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// viewerID returns the authenticated user's id, zero for anonymous viewers.
func viewerID(ctx *gin.Context) uint {
	if user := middleware.UserFrom(ctx); user != nil {
		return user.ID
	}
	return 0
}
