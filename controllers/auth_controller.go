package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/forms"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// AuthController handles signup, login/logout, and OAuth sign-in.
type AuthController struct {
	users *store.UserStore
}

// NewAuthController creates an AuthController.
func NewAuthController(users *store.UserStore) *AuthController {
	return &AuthController{users: users}
}

// Register serves the signup form and creates local accounts.
func (a *AuthController) Register(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "registration_form.html", gin.H{
			"Title": "Sign up",
			"Form":  forms.RegistrationForm{},
		})
		return
	}

	var form forms.RegistrationForm
	fieldErrors := map[string]string{}
	if err := ctx.ShouldBind(&form); err != nil {
		fieldErrors = forms.FieldErrors(err)
	}

	form.Username = strings.TrimSpace(form.Username)
	if fieldErrors["username"] == "" && !usernameRe.MatchString(form.Username) {
		fieldErrors["username"] = "Only letters, digits, '-' and '_' are allowed."
	}
	if fieldErrors["username"] == "" {
		taken, err := a.users.UsernameTaken(form.Username, 0)
		if err != nil {
			utils.Sugar.Errorf("username lookup failed: %v", err)
			fieldErrors["__all__"] = "Could not complete registration."
		} else if taken {
			fieldErrors["username"] = "This username is already taken."
		}
	}
	if fieldErrors["password2"] == "" && form.Password1 != form.Password2 {
		fieldErrors["password2"] = "Passwords do not match."
	}

	if len(fieldErrors) > 0 {
		render(ctx, http.StatusOK, "registration_form.html", gin.H{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": fieldErrors,
		})
		return
	}

	hash, err := utils.HashPassword(form.Password1)
	if err != nil {
		utils.Sugar.Errorf("password hashing failed: %v", err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	user := models.User{
		Username:     form.Username,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		Email:        strings.TrimSpace(form.Email),
		PasswordHash: hash,
	}
	if err := a.users.Create(&user); err != nil {
		utils.Sugar.Errorf("create user failed: %v", err)
		render(ctx, http.StatusOK, "registration_form.html", gin.H{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": map[string]string{"__all__": "Could not complete registration."},
		})
		return
	}

	seeOther(ctx, "/login/")
}

// Login serves the login form and issues the session cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "login.html", gin.H{
			"Title": "Log in",
			"Next":  ctx.Query("next"),
		})
		return
	}

	var form forms.LoginForm
	if err := ctx.ShouldBind(&form); err != nil {
		render(ctx, http.StatusOK, "login.html", gin.H{
			"Title":  "Log in",
			"Errors": forms.FieldErrors(err),
			"Next":   ctx.PostForm("next"),
		})
		return
	}

	user, err := a.users.ByUsername(strings.TrimSpace(form.Username))
	if err != nil || !utils.CheckPassword(user.PasswordHash, form.Password) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Errorf("login lookup failed: %v", err)
		}
		render(ctx, http.StatusOK, "login.html", gin.H{
			"Title":  "Log in",
			"Errors": map[string]string{"__all__": "Invalid username or password."},
			"Next":   ctx.PostForm("next"),
		})
		return
	}

	if err := a.startSession(ctx, user); err != nil {
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	next := ctx.PostForm("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = profileURL(user.Username)
	}
	seeOther(ctx, next)
}

// Logout revokes the current session token and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if raw, ok := ctx.Get(middleware.ContextTokenKey); ok {
		if token, ok := raw.(string); ok && token != "" {
			expiresAt := time.Now().Add(utils.SessionDuration)
			if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			utils.BlacklistToken(token, expiresAt)
		}
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	seeOther(ctx, "/")
}

// OAuthRedirect sends the browser to the provider's authorization page.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig(ctx.Param("provider"))
	if err != nil {
		renderNotFound(ctx)
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	ctx.Redirect(http.StatusFound, cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

// OAuthCallback exchanges the authorization code, resolves the account, and
// starts a session.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" || !utils.ConsumeState(state) {
		render(ctx, http.StatusForbidden, "403csrf.html", gin.H{"Title": "403 — CSRF check failed"})
		return
	}

	cfg, err := a.oauthConfig(provider)
	if err != nil {
		renderNotFound(ctx)
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Sugar.Warnf("oauth code exchange failed for %s: %v", provider, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	info, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Sugar.Errorf("oauth user fetch failed for %s: %v", provider, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	user, err := a.users.FindOrCreateOAuth(provider, info.ID, info.Username, info.Email, info.AvatarURL)
	if err != nil {
		utils.Sugar.Errorf("oauth user persist failed for %s: %v", provider, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	if err := a.startSession(ctx, user); err != nil {
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}
	seeOther(ctx, profileURL(user.Username))
}

// startSession issues a JWT and sets the session cookie.
func (a *AuthController) startSession(ctx *gin.Context, user models.User) error {
	token, err := utils.GenerateToken(user.ID, user.Username, utils.SessionDuration)
	if err != nil {
		utils.Sugar.Errorf("token generation failed: %v", err)
		return err
	}
	ctx.SetCookie(middleware.SessionCookieName, token, int(utils.SessionDuration.Seconds()), "/", "", false, true)
	return nil
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(token)
	case "google":
		return fetchGoogleUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON("https://api.github.com/user", token.AccessToken, &payload); err != nil {
		return nil, err
	}
	return &oauthUser{
		ID:        fmt.Sprintf("%d", payload.ID),
		Username:  payload.Login,
		Email:     payload.Email,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON("https://www.googleapis.com/oauth2/v3/userinfo", token.AccessToken, &payload); err != nil {
		return nil, err
	}
	username := payload.Email
	if at := strings.Index(username, "@"); at > 0 {
		username = username[:at]
	}
	if username == "" {
		username = payload.Name
	}
	return &oauthUser{
		ID:        payload.Sub,
		Username:  username,
		Email:     payload.Email,
		AvatarURL: payload.Picture,
	}, nil
}

func fetchJSON(url, accessToken string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
