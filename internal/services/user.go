package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

type UserService struct {
	store store.Store
	log   zerolog.Logger
}

func NewUserService(s store.Store, log zerolog.Logger) *UserService {
	return &UserService{store: s, log: log}
}

// GetProfile returns the public profile of userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	p := u.Profile()
	return &p, nil
}

// EnsureUser returns userID, creating a placeholder account on first use.
// Only the development token endpoint calls it.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, model.NewValidationError("userId is required")
	}
	u, err := s.store.Users().Get(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, storeErr(err, "user")
	}
	u, err = s.store.Users().Create(ctx, &model.User{
		UserID:   userID,
		Email:    userID + "@dev.moodmate.local",
		Username: userID,
	})
	if err != nil {
		// lost a race with a concurrent EnsureUser
		if existing, gerr := s.store.Users().Get(ctx, userID); gerr == nil {
			return existing, nil
		}
		return nil, storeErr(err, "user")
	}
	s.log.Info().Str("user_id", userID).Msg("development user created")
	return u, nil
}
