package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kinship/models"
)

const friendRequestColumns = "id, sender_id, receiver_id, status, created_at, updated_at"

func scanFriendRequest(row interface{ Scan(...any) error }) (models.FriendRequest, error) {
	var fr models.FriendRequest
	err := row.Scan(&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt)
	return fr, err
}

// orderedPair returns the two ids smallest first. Request rows store the
// pair in this order so that a single unique key covers both directions.
func orderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// FindFriendRequestBetween returns the request row for the unordered pair
// {a, b}, whichever of them sent it.
func (s *Store) FindFriendRequestBetween(ctx context.Context, a, b int64) (models.FriendRequest, error) {
	low, high := orderedPair(a, b)
	fr, err := scanFriendRequest(s.db.QueryRowContext(ctx,
		"SELECT "+friendRequestColumns+" FROM friend_requests WHERE user_low = ? AND user_high = ?",
		low, high,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrNotFound
	}
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("failed to get friend request: %w", err)
	}
	return fr, nil
}

// GetFriendRequest returns the request sent by senderID to receiverID.
func (s *Store) GetFriendRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error) {
	fr, err := scanFriendRequest(s.db.QueryRowContext(ctx,
		"SELECT "+friendRequestColumns+" FROM friend_requests WHERE sender_id = ? AND receiver_id = ?",
		senderID, receiverID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrNotFound
	}
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("failed to get friend request: %w", err)
	}
	return fr, nil
}

// CreateFriendRequest inserts a pending request. A row already present for
// the pair, in either direction, yields a *ConstraintError on
// ConstraintFriendRequestPair.
func (s *Store) CreateFriendRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error) {
	low, high := orderedPair(senderID, receiverID)
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO friend_requests (sender_id, receiver_id, user_low, user_high, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		senderID, receiverID, low, high, models.FriendRequestPending, now, now,
	)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("failed to send friend request: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("failed to read friend request id: %w", err)
	}
	return models.FriendRequest{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ListPendingFriendRequests returns requests waiting on receiverID, newest
// first, with each sender's public profile.
func (s *Store) ListPendingFriendRequests(ctx context.Context, receiverID int64) ([]models.IncomingFriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, fr.status, fr.created_at
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		WHERE fr.receiver_id = ? AND fr.status = ?
		ORDER BY fr.created_at DESC, fr.id DESC
	`, receiverID, models.FriendRequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.IncomingFriendRequest{}
	for rows.Next() {
		var r models.IncomingFriendRequest
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Email, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	return requests, nil
}

// AcceptFriendRequest moves the pending request senderID->receiverID to
// accept and inserts both friendship rows in one transaction. ErrNotPending
// is returned when no pending row was there to move; nothing is written in
// that case or on any other failure.
func (s *Store) AcceptFriendRequest(ctx context.Context, senderID, receiverID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		"UPDATE friend_requests SET status = ?, updated_at = ? WHERE sender_id = ? AND receiver_id = ? AND status = ?",
		models.FriendRequestAccept, now, senderID, receiverID, models.FriendRequestPending,
	)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to accept request: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to accept request: %w", err))
	}
	if rowsAffected == 0 {
		return rollback(tx, ErrNotPending)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id, created_at, updated_at) VALUES (?, ?, ?, ?), (?, ?, ?, ?)",
		senderID, receiverID, now, now,
		receiverID, senderID, now, now,
	)
	if err != nil {
		return rollback(tx, fmt.Errorf("failed to create friendship: %w", classify(err)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RejectFriendRequest moves the pending request senderID->receiverID to
// reject, or returns ErrNotPending.
func (s *Store) RejectFriendRequest(ctx context.Context, senderID, receiverID int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE friend_requests SET status = ?, updated_at = ? WHERE sender_id = ? AND receiver_id = ? AND status = ?",
		models.FriendRequestReject, time.Now(), senderID, receiverID, models.FriendRequestPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) ListFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.first_name, u.last_name, u.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.FirstName, &f.LastName, &f.Email); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

func (s *Store) GetFriend(ctx context.Context, userID, friendID int64) (models.Friend, error) {
	var f models.Friend
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ? AND f.friend_id = ?
		LIMIT 1
	`, userID, friendID).Scan(&f.ID, &f.FirstName, &f.LastName, &f.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friend{}, ErrNotFound
	}
	if err != nil {
		return models.Friend{}, fmt.Errorf("failed to get friend: %w", err)
	}
	return f, nil
}

// CountFriendships returns how many friendship rows exist between a and b,
// counting both directions.
func (s *Store) CountFriendships(ctx context.Context, a, b int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friends WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		a, b, b, a,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count friendships: %w", err)
	}
	return n, nil
}
