package services

import (
	"context"
	"errors"

	"kinship/apperrors"
	"kinship/database"
	"kinship/models"
)

// Live events pushed through the Notifier.
const (
	EventFriendRequestReceived = "friend_request.received"
	EventFriendRequestAccepted = "friend_request.accepted"
	EventFriendRequestRejected = "friend_request.rejected"
)

const (
	msgRequestPending  = "Your friend request is pending."
	msgRequestReceived = "You have received a friend request. You can accept or reject it."
	msgAlreadyFriends  = "You are already friends."
	msgRequestRejected = "The friend request was rejected."
	msgRequestSent     = "Friend request sent."
	msgRequestAccepted = "Friend request accepted."
	msgRequestDeclined = "Friend request rejected."
)

// FriendService runs the friend request state machine:
// none -> pending -> accept | reject. Non-pending rows never change again.
type FriendService struct {
	store    RelationshipStore
	notifier Notifier
}

// NewFriendService creates a FriendService. notifier may be nil.
func NewFriendService(store RelationshipStore, notifier Notifier) *FriendService {
	return &FriendService{store: store, notifier: notifier}
}

// SendFriendRequest asks receiverID to become senderID's friend. When the
// pair already has a request row, the outcome describes that row and
// nothing is written.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequestOutcome, error) {
	if senderID == receiverID {
		return models.FriendRequestOutcome{}, apperrors.New(apperrors.CodeValidation, "You cannot send a friend request to yourself.")
	}

	exists, err := s.store.UserExists(ctx, receiverID)
	if err != nil {
		return models.FriendRequestOutcome{}, storeFailure(err)
	}
	if !exists {
		return models.FriendRequestOutcome{}, apperrors.New(apperrors.CodeReceiverNotFound, "Receiver not found.")
	}

	existing, err := s.store.FindFriendRequestBetween(ctx, senderID, receiverID)
	if err == nil {
		return existingOutcome(existing, senderID), nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.FriendRequestOutcome{}, storeFailure(err)
	}

	created, err := s.store.CreateFriendRequest(ctx, senderID, receiverID)
	if database.IsConstraint(err, database.ConstraintFriendRequestPair) {
		// A concurrent send for the same pair won the insert.
		existing, err := s.store.FindFriendRequestBetween(ctx, senderID, receiverID)
		if err != nil {
			return models.FriendRequestOutcome{}, storeFailure(err)
		}
		return existingOutcome(existing, senderID), nil
	}
	if err != nil {
		return models.FriendRequestOutcome{}, storeFailure(err)
	}

	s.notify(receiverID, EventFriendRequestReceived, created)
	return models.FriendRequestOutcome{
		Message: msgRequestSent,
		Status:  created.Status,
		Request: &created,
	}, nil
}

func existingOutcome(fr models.FriendRequest, senderID int64) models.FriendRequestOutcome {
	outcome := models.FriendRequestOutcome{Status: fr.Status, Request: &fr}
	switch fr.Status {
	case models.FriendRequestPending:
		if fr.SenderID == senderID {
			outcome.Message = msgRequestPending
		} else {
			outcome.Message = msgRequestReceived
		}
	case models.FriendRequestAccept:
		outcome.Message = msgAlreadyFriends
	default:
		outcome.Message = msgRequestRejected
	}
	return outcome
}

// GetFriendRequests lists the pending requests addressed to userID, newest
// first.
func (s *FriendService) GetFriendRequests(ctx context.Context, userID int64) ([]models.IncomingFriendRequest, error) {
	requests, err := s.store.ListPendingFriendRequests(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return requests, nil
}

// RespondToFriendRequest lets receiverID accept or reject the pending
// request from senderID. Accepting creates the friendship in the same
// transaction as the status change.
func (s *FriendService) RespondToFriendRequest(ctx context.Context, receiverID, senderID int64, action string) (models.FriendRequestOutcome, error) {
	status := models.FriendRequestStatus(action)
	if !status.Valid() || status == models.FriendRequestPending {
		return models.FriendRequestOutcome{}, apperrors.New(apperrors.CodeValidation, "Action must be either accept or reject.")
	}

	fr, err := s.store.GetFriendRequest(ctx, senderID, receiverID)
	if errors.Is(err, database.ErrNotFound) {
		return models.FriendRequestOutcome{}, apperrors.New(apperrors.CodeNoPendingRequest, "No pending friend request from this user.")
	}
	if err != nil {
		return models.FriendRequestOutcome{}, storeFailure(err)
	}
	if fr.Status != models.FriendRequestPending {
		return models.FriendRequestOutcome{}, alreadyProcessed()
	}

	event, message := EventFriendRequestAccepted, msgRequestAccepted
	if status == models.FriendRequestAccept {
		err = s.store.AcceptFriendRequest(ctx, senderID, receiverID)
	} else {
		event, message = EventFriendRequestRejected, msgRequestDeclined
		err = s.store.RejectFriendRequest(ctx, senderID, receiverID)
	}
	if errors.Is(err, database.ErrNotPending) {
		return models.FriendRequestOutcome{}, alreadyProcessed()
	}
	if err != nil {
		return models.FriendRequestOutcome{}, storeFailure(err)
	}

	fr.Status = status
	s.notify(senderID, event, fr)
	return models.FriendRequestOutcome{Message: message, Status: status, Request: &fr}, nil
}

func alreadyProcessed() error {
	return apperrors.New(apperrors.CodeAlreadyProcessed, "This friend request has already been processed.")
}

func (s *FriendService) GetFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return friends, nil
}

func (s *FriendService) GetFriendByID(ctx context.Context, userID, friendID int64) (models.Friend, error) {
	friend, err := s.store.GetFriend(ctx, userID, friendID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Friend{}, apperrors.New(apperrors.CodeFriendNotFound, "Friend not found.")
	}
	if err != nil {
		return models.Friend{}, storeFailure(err)
	}
	return friend, nil
}

func (s *FriendService) notify(userID int64, event string, data any) {
	if s.notifier != nil {
		s.notifier.NotifyUser(userID, event, data)
	}
}
