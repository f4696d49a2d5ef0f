package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/forms"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

// CommentController handles the comment lifecycle under a post.
type CommentController struct {
	posts    *store.PostStore
	comments *store.CommentStore
}

// NewCommentController creates a CommentController over the given stores.
func NewCommentController(posts *store.PostStore, comments *store.CommentStore) *CommentController {
	return &CommentController{posts: posts, comments: comments}
}

// AddComment binds a new comment to the target post and the requesting
// user. Invalid input is dropped without feedback: the request redirects to
// the post detail page either way.
func (c *CommentController) AddComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		renderNotFound(ctx)
		return
	}

	post, err := c.posts.Get(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return
		}
		utils.Sugar.Errorf("post %d lookup failed: %v", postID, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	user := middleware.UserFrom(ctx)

	var form forms.CommentForm
	if err := ctx.ShouldBind(&form); err == nil {
		if text := utils.Sanitize(strings.TrimSpace(form.Text)); text != "" {
			comment := models.Comment{
				PostID:   post.ID,
				AuthorID: user.ID,
				Text:     text,
			}
			if err := c.comments.Create(&comment); err != nil {
				utils.Sugar.Errorf("create comment on post %d failed: %v", post.ID, err)
			}
		}
	}

	seeOther(ctx, postDetailURL(post.ID))
}

// EditComment serves the comment form and persists validated text. Only the
// comment's author may edit; others are redirected to the post detail page.
func (c *CommentController) EditComment(ctx *gin.Context) {
	postID, comment, ok := c.loadOwnComment(ctx)
	if !ok {
		return
	}

	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "comment_form.html", gin.H{
			"Title":   "Edit comment",
			"Comment": comment,
			"Form":    forms.CommentForm{Text: comment.Text},
			"PostID":  postID,
		})
		return
	}

	var form forms.CommentForm
	if err := ctx.ShouldBind(&form); err != nil {
		render(ctx, http.StatusOK, "comment_form.html", gin.H{
			"Title":   "Edit comment",
			"Comment": comment,
			"Form":    form,
			"Errors":  forms.FieldErrors(err),
			"PostID":  postID,
		})
		return
	}

	comment.Text = utils.Sanitize(strings.TrimSpace(form.Text))
	if err := c.comments.Update(&comment); err != nil {
		utils.Sugar.Errorf("update comment %d failed: %v", comment.ID, err)
	}

	seeOther(ctx, postDetailURL(postID))
}

// DeleteComment shows a confirmation page and removes the comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	postID, comment, ok := c.loadOwnComment(ctx)
	if !ok {
		return
	}

	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "comment_form.html", gin.H{
			"Title":    "Delete comment",
			"Comment":  comment,
			"IsDelete": true,
			"PostID":   postID,
		})
		return
	}

	if err := c.comments.Delete(&comment); err != nil {
		utils.Sugar.Errorf("delete comment %d failed: %v", comment.ID, err)
	}

	seeOther(ctx, postDetailURL(postID))
}

// loadOwnComment fetches the addressed comment and applies the authorization
// guard: a missing comment is a 404, a foreign comment means a silent
// redirect to the owning post.
func (c *CommentController) loadOwnComment(ctx *gin.Context) (uint, models.Comment, bool) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		renderNotFound(ctx)
		return 0, models.Comment{}, false
	}

	commentID, ok := paramID(ctx, "comment_id")
	if !ok {
		renderNotFound(ctx)
		return 0, models.Comment{}, false
	}

	comment, err := c.comments.Get(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return 0, models.Comment{}, false
		}
		utils.Sugar.Errorf("comment %d lookup failed: %v", commentID, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return 0, models.Comment{}, false
	}

	if user := middleware.UserFrom(ctx); user == nil || comment.AuthorID != user.ID {
		seeOther(ctx, postDetailURL(postID))
		return 0, models.Comment{}, false
	}

	return postID, comment, true
}
