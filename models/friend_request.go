package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending FriendRequestStatus = "pending"
	FriendRequestAccept  FriendRequestStatus = "accept"
	FriendRequestReject  FriendRequestStatus = "reject"
)

// Valid reports whether s is one of the known statuses.
func (s FriendRequestStatus) Valid() bool {
	switch s {
	case FriendRequestPending, FriendRequestAccept, FriendRequestReject:
		return true
	}
	return false
}

// FriendRequest is a directional request row. At most one row exists per
// unordered pair of users.
type FriendRequest struct {
	ID         int64               `json:"id"`
	SenderID   int64               `json:"sender_id"`
	ReceiverID int64               `json:"receiver_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// IncomingFriendRequest is a pending request joined with its sender's profile.
type IncomingFriendRequest struct {
	ID        int64               `json:"id"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Email     string              `json:"email"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// FriendRequestOutcome describes the state of a pair after a send or respond.
type FriendRequestOutcome struct {
	Message string              `json:"message"`
	Status  FriendRequestStatus `json:"status"`
	Request *FriendRequest      `json:"request,omitempty"`
}
