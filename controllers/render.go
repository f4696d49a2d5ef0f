package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogward/blogward/middleware"
)

// render executes a page template with the ambient context every page needs:
// the authenticated user and the CSRF token for forms.
func render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = middleware.UserFrom(ctx)
	if token, ok := ctx.Get(middleware.ContextCSRFKey); ok {
		data["CSRFToken"] = token
	}
	ctx.HTML(status, name, data)
}

// renderNotFound renders the dedicated 404 page.
func renderNotFound(ctx *gin.Context) {
	render(ctx, http.StatusNotFound, "404.html", gin.H{"Title": "Page not found"})
}

// seeOther issues the post-mutation redirect used across the handlers.
func seeOther(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusSeeOther, location)
}

// postDetailURL builds the canonical read view URL of a post.
func postDetailURL(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

// profileURL builds the profile page URL of a user.
func profileURL(username string) string {
	return "/profile/" + username + "/"
}
