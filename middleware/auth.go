package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "blogward_session"
	// ContextUserKey stores the authenticated *models.User in Gin context.
	ContextUserKey = "current_user"
	// ContextTokenKey stores the raw session token for logout revocation.
	ContextTokenKey = "session_token"
)

// CurrentUser resolves the session cookie into a user and stores it in the
// request context. Anonymous and invalid sessions pass through untouched;
// enforcement is LoginRequired's job.
func CurrentUser(users *store.UserStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookieName)
		if err != nil || token == "" {
			ctx.Next()
			return
		}

		if utils.IsTokenBlacklisted(token) {
			ctx.Next()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}

		user, err := users.Get(claims.UserID)
		if err != nil {
			ctx.Next()
			return
		}

		ctx.Set(ContextUserKey, &user)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// LoginRequired redirects anonymous requests to the login page, preserving
// the original path and query in the next parameter.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := ctx.Get(ContextUserKey); !ok {
			ctx.Redirect(http.StatusSeeOther, "/login/?next="+url.QueryEscape(ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// UserFrom returns the authenticated user from context, nil when anonymous.
func UserFrom(ctx *gin.Context) *models.User {
	value, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
