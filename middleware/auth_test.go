package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

func newAuthRouter(t *testing.T) (*gin.Engine, models.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	user := models.User{Username: "alice"}
	require.NoError(t, db.Create(&user).Error)

	r := gin.New()
	r.Use(CurrentUser(store.NewUserStore(db)))
	r.GET("/whoami", func(ctx *gin.Context) {
		if u := UserFrom(ctx); u != nil {
			ctx.String(http.StatusOK, u.Username)
			return
		}
		ctx.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", LoginRequired(), func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "secret")
	})
	return r, user
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, user models.User, duration time.Duration) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, duration)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func TestCurrentUserResolvesValidSession(t *testing.T) {
	r, user := newAuthRouter(t)

	w := get(r, "/whoami", sessionCookie(t, user, time.Hour))
	assert.Equal(t, "alice", w.Body.String())
}

func TestCurrentUserIgnoresBadSessions(t *testing.T) {
	r, user := newAuthRouter(t)

	w := get(r, "/whoami")
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(r, "/whoami", &http.Cookie{Name: SessionCookieName, Value: "garbage"})
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(r, "/whoami", sessionCookie(t, user, -time.Minute))
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestCurrentUserIgnoresRevokedSession(t *testing.T) {
	r, user := newAuthRouter(t)

	cookie := sessionCookie(t, user, time.Hour)
	utils.BlacklistToken(cookie.Value, time.Now().Add(time.Hour))

	w := get(r, "/whoami", cookie)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestLoginRequiredRedirectsAnonymous(t *testing.T) {
	r, user := newAuthRouter(t)

	w := get(r, "/private")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login/?next=%2Fprivate", w.Header().Get("Location"))

	w = get(r, "/private", sessionCookie(t, user, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret", w.Body.String())
}

func TestLoginRequiredKeepsQueryInNext(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := get(r, "/private?page=2")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login/?next=%2Fprivate%3Fpage%3D2", w.Header().Get("Location"))
}
