package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
)

// UserStore is the data-access object for users.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore bound to the given database handle.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Get fetches a user by id.
func (s *UserStore) Get(id uint) (models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return user, err
}

// ByUsername fetches a user by exact username.
func (s *UserStore) ByUsername(username string) (models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	return user, err
}

// UsernameTaken reports whether the username is used by anyone except excludeID.
func (s *UserStore) UsernameTaken(username string, excludeID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Create persists a new user.
func (s *UserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

// Update persists changes to an existing user.
func (s *UserStore) Update(user *models.User) error {
	return s.db.Save(user).Error
}

// FindOrCreateOAuth resolves a user by OAuth provider identity, creating the
// account on first login and refreshing profile fields on subsequent ones.
func (s *UserStore) FindOrCreateOAuth(provider, providerID, username, email, avatarURL string) (models.User, error) {
	var user models.User
	err := s.db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"email":      strings.TrimSpace(email),
			"avatar_url": avatarURL,
		}
		_ = s.db.Model(&user).Updates(updates)
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	user = models.User{
		Username:   s.ensureUniqueUsername(username, provider, providerID),
		Email:      strings.TrimSpace(email),
		Provider:   provider,
		ProviderID: providerID,
		AvatarURL:  avatarURL,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ensureUniqueUsername derives a free username from the provider handle.
func (s *UserStore) ensureUniqueUsername(base, provider, id string) string {
	candidate := strings.TrimSpace(base)
	if candidate == "" {
		candidate = fmt.Sprintf("%s_%s", provider, id)
	}
	for i := 0; ; i++ {
		name := candidate
		if i > 0 {
			name = fmt.Sprintf("%s%d", candidate, i)
		}
		taken, err := s.UsernameTaken(name, 0)
		if err != nil || !taken {
			return name
		}
	}
}
