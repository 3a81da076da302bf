package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/database"
	"kinship/models"
)

const msgWrongCredentials = "Wrong credentials."

// RegisterInput is a validated registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
}

// AuthService registers users and hands out token pairs.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer

	decoyOnce sync.Once
	decoy     string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register stores a new user with a hashed password. It issues no tokens.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.Confirmation, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Confirmation{}, apperrors.Wrap(apperrors.CodeRegistrationFailed, "Registration failed.", err)
	}

	_, err = s.users.CreateUser(ctx, models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Age:          in.Age,
		PasswordHash: hash,
	})
	if err != nil {
		if dup, ok := duplicateCredentials(err); ok {
			return models.Confirmation{}, dup
		}
		log.Printf("Register: failed to create user %s: %v", in.Email, err)
		return models.Confirmation{}, apperrors.Wrap(apperrors.CodeRegistrationFailed, "Registration failed.", err)
	}

	return models.Confirmation{Message: "You are registered successfully."}, nil
}

// Login checks credentials and returns a fresh token pair. An unknown email
// and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		// Pay for a hash comparison anyway so response time does not tell
		// which emails are registered.
		s.hasher.Verify(password, s.decoyHash())
		return models.TokenPair{}, apperrors.New(apperrors.CodeInvalidCredentials, msgWrongCredentials)
	}
	if err != nil {
		return models.TokenPair{}, storeFailure(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.TokenPair{}, apperrors.New(apperrors.CodeInvalidCredentials, msgWrongCredentials)
	}

	return s.issue(ctx, user)
}

// decoyHash is a hash at the hasher's cost that matches no real password.
func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("kinship-unknown-account")
		if err != nil {
			log.Printf("Login: failed to build decoy hash: %v", err)
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

// Refresh reissues a token pair for a user whose refresh token has already
// been verified. Earlier refresh tokens stay valid until they expire.
func (s *AuthService) Refresh(ctx context.Context, userID int64) (models.TokenPair, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.TokenPair{}, apperrors.New(apperrors.CodeUserNotFound, "User not found.")
	}
	if err != nil {
		return models.TokenPair{}, storeFailure(err)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(ctx, auth.Payload{UserID: user.ID, Email: user.Email})
	if err != nil {
		return models.TokenPair{}, apperrors.Wrap(apperrors.CodeUnknown, "failed to issue tokens", err)
	}
	return pair, nil
}
