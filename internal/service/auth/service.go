package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"cardroom/internal/model"
	pkgAuth "cardroom/pkg/auth"
	appErr "cardroom/pkg/errors"

	"gorm.io/gorm"
)

// usernamePattern keeps identities printable and unambiguous; the engine's
// Root identity can never match it.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{2,24}$`)

type Service struct {
	db *gorm.DB
}

type LoginResult struct {
	Token    string    `json:"token"`
	ExpireAt time.Time `json:"expireAt"`
	User     UserInfo  `json:"user"`
}

type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GuestLogin creates the user on first sight and hands back a token either
// way. Identity is the username itself; there is no password.
func (s *Service) GuestLogin(ctx context.Context, username string, expireHours int) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, appErr.ErrInvalidUsername
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{Username: username, Status: "normal"}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if user.Status != "normal" {
		return nil, appErr.ErrUnauthorized
	}

	token, err := pkgAuth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: time.Now().Add(time.Duration(expireHours) * time.Hour),
		User: UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
