// Package services holds the account and relationship logic. Callers pass
// the authenticated user id explicitly; nothing here reads HTTP state.
package services

import (
	"context"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/database"
	"kinship/models"
)

// UserStore is the part of the credential store the account services use.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (models.User, error)
	SearchUsers(ctx context.Context, excludeID int64, search string) ([]models.User, error)
}

// RelationshipStore is the part of the store backing friend requests and
// friendships.
type RelationshipStore interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	FindFriendRequestBetween(ctx context.Context, a, b int64) (models.FriendRequest, error)
	GetFriendRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error)
	CreateFriendRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error)
	ListPendingFriendRequests(ctx context.Context, receiverID int64) ([]models.IncomingFriendRequest, error)
	AcceptFriendRequest(ctx context.Context, senderID, receiverID int64) error
	RejectFriendRequest(ctx context.Context, senderID, receiverID int64) error
	ListFriends(ctx context.Context, userID int64) ([]models.Friend, error)
	GetFriend(ctx context.Context, userID, friendID int64) (models.Friend, error)
}

// PasswordHasher hashes and checks plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer produces an access/refresh pair for an identity.
type TokenIssuer interface {
	IssuePair(ctx context.Context, payload auth.Payload) (models.TokenPair, error)
}

// Notifier pushes a live event to a connected user. Delivery is best-effort.
type Notifier interface {
	NotifyUser(userID int64, event string, data any)
}

var (
	_ UserStore         = (*database.Store)(nil)
	_ RelationshipStore = (*database.Store)(nil)
	_ PasswordHasher    = (*auth.PasswordHasher)(nil)
	_ TokenIssuer       = (*auth.TokenIssuer)(nil)
)

const (
	msgDuplicateEmail = "User with this email already exists."
	msgDuplicateName  = "User with this first and last name already exists."
)

// duplicateCredentials maps a users uniqueness violation onto the message
// naming the field that collided.
func duplicateCredentials(err error) (*apperrors.Error, bool) {
	switch {
	case database.IsConstraint(err, database.ConstraintUserEmail):
		return apperrors.Wrap(apperrors.CodeDuplicateCredentials, msgDuplicateEmail, err), true
	case database.IsConstraint(err, database.ConstraintUserName):
		return apperrors.Wrap(apperrors.CodeDuplicateCredentials, msgDuplicateName, err), true
	default:
		return nil, false
	}
}

func storeFailure(err error) error {
	return apperrors.Wrap(apperrors.CodeStoreFailure, "store failure", err)
}
