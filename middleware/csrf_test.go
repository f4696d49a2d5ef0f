package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// forgedToken mirrors the token layout with the shared application secret so
// tests can submit a valid cookie/field pair without a prior GET.
func forgedToken(nonce, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce))
	return nonce + "." + hex.EncodeToString(mac.Sum(nil))
}

func newCSRFRouter() *gin.Engine {
	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")
	r.Use(CSRF())
	r.GET("/form", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "%v", ctx.MustGet(ContextCSRFKey))
	})
	r.POST("/submit", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	return r
}

func TestCSRFIssuesCookieOnGet(t *testing.T) {
	r := newCSRFRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "blogward_csrf" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, validCSRFToken(cookie.Value))
	assert.Equal(t, cookie.Value, w.Body.String())
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	r := newCSRFRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF")
}

func TestCSRFRejectsMismatchedPair(t *testing.T) {
	r := newCSRFRouter()

	body := url.Values{CSRFFormField: {forgedToken("nonce-a", "test-secret")}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "blogward_csrf", Value: forgedToken("nonce-b", "test-secret")})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFAcceptsMatchingPair(t *testing.T) {
	r := newCSRFRouter()
	token := forgedToken("nonce-ok", "test-secret")

	body := url.Values{CSRFFormField: {token}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "blogward_csrf", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCSRFRejectsUnsignedToken(t *testing.T) {
	assert.False(t, validCSRFToken(""))
	assert.False(t, validCSRFToken("no-signature"))
	assert.False(t, validCSRFToken("nonce.deadbeef"))
	assert.True(t, validCSRFToken(newCSRFToken()))
}
