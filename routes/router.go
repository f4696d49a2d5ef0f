package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/controllers"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

// SetupRouter wires templates, middlewares, stores, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.AccessLog(utils.NewAccessLogger(cfg)))
	r.Use(middleware.Recovery(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.LoadHTMLGlob(cfg.TemplatesGlob)
	r.Static("/static", cfg.StaticDir)

	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)
	categories := store.NewCategoryStore(db)
	locations := store.NewLocationStore(db)

	r.Use(middleware.CurrentUser(users))
	r.Use(middleware.CSRF())

	blog := controllers.NewBlogController(posts, comments, categories, locations)
	commentCtl := controllers.NewCommentController(posts, comments)
	auth := controllers.NewAuthController(users)
	profile := controllers.NewProfileController(users, posts)
	pages := controllers.NewPagesController()

	r.GET("/", blog.Home)
	r.GET("/about/", pages.About)
	r.GET("/rules/", pages.Rules)
	r.GET("/category/:slug/", blog.CategoryPosts)
	r.GET("/profile/:username/", profile.Profile)

	limited := r.Group("", middleware.RateLimit())
	limited.GET("/registration/", auth.Register)
	limited.POST("/registration/", auth.Register)
	limited.GET("/login/", auth.Login)
	limited.POST("/login/", auth.Login)
	limited.GET("/auth/:provider/login", auth.OAuthRedirect)
	limited.GET("/auth/:provider/callback", auth.OAuthCallback)

	authed := r.Group("", middleware.LoginRequired())
	authed.POST("/logout/", auth.Logout)
	authed.GET("/profile/edit/", profile.EditProfile)
	authed.POST("/profile/edit/", profile.EditProfile)

	r.GET("/posts/:id/", blog.PostDetail)
	authed.GET("/posts/create/", blog.CreatePost)
	authed.POST("/posts/create/", blog.CreatePost)
	authed.GET("/posts/:id/edit/", blog.EditPost)
	authed.POST("/posts/:id/edit/", blog.EditPost)
	authed.GET("/posts/:id/delete/", blog.DeletePost)
	authed.POST("/posts/:id/delete/", blog.DeletePost)

	authed.POST("/posts/:id/comment/", middleware.RateLimit(), commentCtl.AddComment)
	authed.GET("/posts/:id/comment/:comment_id/edit/", commentCtl.EditComment)
	authed.POST("/posts/:id/comment/:comment_id/edit/", commentCtl.EditComment)
	authed.GET("/posts/:id/comment/:comment_id/delete/", commentCtl.DeleteComment)
	authed.POST("/posts/:id/comment/:comment_id/delete/", commentCtl.DeleteComment)

	r.NoRoute(pages.NotFound)

	return r
}
