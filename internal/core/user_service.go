package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewboard-backend-go/internal/db"
	"crewboard-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates
// a new free-plan profile. Returns the user, a boolean indicating whether it
// was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	if userID == "" {
		return nil, false, errors.New("userID cannot be empty for GetOrCreate")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			newUser := &models.User{
				ID:          userID, // Firebase Auth UID is the document ID
				Email:       email,
				DisplayName: displayName,
				PhotoURL:    photoURL,
				Plan:        models.PlanFree,
				CreatedAt:   time.Now().UTC(),
				UpdatedAt:   time.Now().UTC(),
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
			}
			return newUser, true, nil
		}
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	// Refresh the profile fields when the identity provider claims changed
	// since the last sign-in.
	if (email != "" && email != user.Email) ||
		(displayName != "" && displayName != user.DisplayName) ||
		(photoURL != "" && photoURL != user.PhotoURL) {
		if email != "" {
			user.Email = email
		}
		if displayName != "" {
			user.DisplayName = displayName
		}
		if photoURL != "" {
			user.PhotoURL = photoURL
		}
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			return nil, false, fmt.Errorf("failed to refresh profile for user '%s': %w", userID, updateErr)
		}
	}

	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}
