// Package forms declares the request form bindings and turns validator
// failures into per-field messages suitable for template redisplay.
package forms

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// PubDateFormat is the expected wire format of the post scheduling input
// (the value produced by <input type="datetime-local">).
const PubDateFormat = "2006-01-02T15:04"

// PostForm binds the post create/edit form.
type PostForm struct {
	Title       string `form:"title" binding:"required,max=255"`
	Text        string `form:"text" binding:"required"`
	PubDate     string `form:"pub_date" binding:"required"`
	Category    string `form:"category"`
	Location    string `form:"location"`
	IsPublished bool   `form:"is_published"`
}

// ParsedPubDate converts the raw datetime-local value.
func (f *PostForm) ParsedPubDate() (time.Time, error) {
	return time.ParseInLocation(PubDateFormat, strings.TrimSpace(f.PubDate), time.Local)
}

// CategoryRef returns the selected category id, nil when none was chosen.
func (f *PostForm) CategoryRef() *uint { return parseRef(f.Category) }

// LocationRef returns the selected location id, nil when none was chosen.
func (f *PostForm) LocationRef() *uint { return parseRef(f.Location) }

func parseRef(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

// CommentForm binds the comment create/edit form.
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// RegistrationForm binds the signup form.
type RegistrationForm struct {
	Username  string `form:"username" binding:"required,min=2,max=64"`
	FirstName string `form:"first_name" binding:"max=64"`
	LastName  string `form:"last_name" binding:"max=64"`
	Email     string `form:"email" binding:"omitempty,email,max=255"`
	Password1 string `form:"password1" binding:"required,min=6,max=64"`
	Password2 string `form:"password2" binding:"required"`
}

// ProfileForm binds the profile edit form.
type ProfileForm struct {
	Username  string `form:"username" binding:"required,min=2,max=64"`
	FirstName string `form:"first_name" binding:"max=64"`
	LastName  string `form:"last_name" binding:"max=64"`
	Email     string `form:"email" binding:"omitempty,email,max=255"`
}

// LoginForm binds the login form.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// fieldMessages maps validator tags to reader-facing messages.
var fieldMessages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"min":      "Value is too short.",
	"max":      "Value is too long.",
}

// FieldErrors flattens a binding error into form-field → message. Errors that
// are not field-level validation failures map to a single "__all__" entry.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["__all__"] = "Invalid form input."
		return out
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		out[toFormName(fe.Field())] = msg
	}
	return out
}

// toFormName converts a Go struct field name to its snake_case form name.
func toFormName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
