package services

import (
	"context"
	"errors"

	"kinship/apperrors"
	"kinship/database"
	"kinship/models"
)

// UserService serves the user directory and profile edits.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Search lists other users whose name or age contains search.
func (s *UserService) Search(ctx context.Context, callerID int64, search string) ([]*models.UserResponse, error) {
	users, err := s.users.SearchUsers(ctx, callerID, search)
	if err != nil {
		return nil, storeFailure(err)
	}
	result := make([]*models.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToResponse())
	}
	return result, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user.ToResponse(), nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, callerID int64, update models.UserUpdate) (*models.UserResponse, error) {
	user, err := s.users.UpdateUser(ctx, callerID, update)
	if err != nil {
		if dup, ok := duplicateCredentials(err); ok {
			return nil, dup
		}
		return nil, userLookupError(err)
	}
	return user.ToResponse(), nil
}

func userLookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.New(apperrors.CodeUserNotFound, "User not found.")
	}
	return storeFailure(err)
}
