package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/forms"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/store"
	"github.com/blogward/blogward/utils"
)

// ProfileController serves user pages and the authenticated profile edit.
type ProfileController struct {
	users *store.UserStore
	posts *store.PostStore
}

// NewProfileController creates a ProfileController over the given stores.
func NewProfileController(users *store.UserStore, posts *store.PostStore) *ProfileController {
	return &ProfileController{users: users, posts: posts}
}

// Profile renders a user's page with their paginated posts. The owner sees
// unpublished and scheduled posts; everyone else only visible ones.
func (p *ProfileController) Profile(ctx *gin.Context) {
	owner, err := p.users.ByUsername(ctx.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx)
			return
		}
		utils.Sugar.Errorf("profile lookup failed: %v", err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	privileged := viewerID(ctx) == owner.ID
	page, err := p.posts.ByAuthor(owner.ID, privileged, store.ParsePage(ctx.Query("page")))
	if err != nil {
		utils.Sugar.Errorf("profile listing for %q failed: %v", owner.Username, err)
		render(ctx, http.StatusInternalServerError, "500.html", gin.H{"Title": "Server error"})
		return
	}

	render(ctx, http.StatusOK, "profile.html", gin.H{
		"Title":   owner.FullName(),
		"Profile": owner,
		"IsOwner": privileged,
		"Page":    page,
	})
}

// EditProfile serves the prefilled profile form and persists changes for the
// authenticated user.
func (p *ProfileController) EditProfile(ctx *gin.Context) {
	user := middleware.UserFrom(ctx)

	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "user_form.html", gin.H{
			"Title": "Edit profile",
			"Form": forms.ProfileForm{
				Username:  user.Username,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Email:     user.Email,
			},
		})
		return
	}

	var form forms.ProfileForm
	fieldErrors := map[string]string{}
	if err := ctx.ShouldBind(&form); err != nil {
		fieldErrors = forms.FieldErrors(err)
	}

	form.Username = strings.TrimSpace(form.Username)
	if fieldErrors["username"] == "" && !usernameRe.MatchString(form.Username) {
		fieldErrors["username"] = "Only letters, digits, '-' and '_' are allowed."
	}
	if fieldErrors["username"] == "" {
		taken, err := p.users.UsernameTaken(form.Username, user.ID)
		if err != nil {
			utils.Sugar.Errorf("username lookup failed: %v", err)
			fieldErrors["__all__"] = "Could not save the profile."
		} else if taken {
			fieldErrors["username"] = "This username is already taken."
		}
	}

	if len(fieldErrors) > 0 {
		render(ctx, http.StatusOK, "user_form.html", gin.H{
			"Title":  "Edit profile",
			"Form":   form,
			"Errors": fieldErrors,
		})
		return
	}

	user.Username = form.Username
	user.FirstName = strings.TrimSpace(form.FirstName)
	user.LastName = strings.TrimSpace(form.LastName)
	user.Email = strings.TrimSpace(form.Email)

	if err := p.users.Update(user); err != nil {
		utils.Sugar.Errorf("update profile %d failed: %v", user.ID, err)
		render(ctx, http.StatusOK, "user_form.html", gin.H{
			"Title":  "Edit profile",
			"Form":   form,
			"Errors": map[string]string{"__all__": "Could not save the profile."},
		})
		return
	}

	seeOther(ctx, profileURL(user.Username))
}
