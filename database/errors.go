package database

import (
	"errors"
	"fmt"
)

// Unique constraint names. SQLite reports columns instead of names; those
// are mapped back onto the same identifiers.
const (
	ConstraintUserEmail         = "uk_users_email"
	ConstraintUserName          = "uk_users_name"
	ConstraintFriendRequestPair = "uk_friend_requests_pair"
	ConstraintFriendPair        = "uk_friends_pair"
)

// ConstraintError reports a violated uniqueness constraint.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("unique constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// IsConstraint reports whether err is a violation of the named constraint.
func IsConstraint(err error, constraint string) bool {
	var cErr *ConstraintError
	return errors.As(err, &cErr) && cErr.Constraint == constraint
}

// classify converts driver uniqueness failures into *ConstraintError and
// leaves every other error untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := mysqlUniqueConstraint(err); ok {
		return &ConstraintError{Constraint: constraint, Err: err}
	}
	if constraint, ok := sqliteUniqueConstraint(err); ok {
		return &ConstraintError{Constraint: constraint, Err: err}
	}
	return err
}
