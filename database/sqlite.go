package database

import (
	"errors"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteDSN builds a modernc DSN for a database file with foreign keys on.
func SQLiteDSN(path string) string {
	return "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// sqliteUniqueConstraint maps "UNIQUE constraint failed: users.email" onto
// the constraint name used by the MySQL schema.
func sqliteUniqueConstraint(err error) (string, bool) {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return "", false
	}

	const marker = "UNIQUE constraint failed: "
	msg := sqliteErr.Error()
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", true
	}
	columns := msg[idx+len(marker):]
	if paren := strings.Index(columns, " ("); paren >= 0 {
		columns = columns[:paren]
	}
	return sqliteConstraintName(strings.TrimSpace(columns)), true
}

func sqliteConstraintName(columns string) string {
	switch columns {
	case "users.email":
		return ConstraintUserEmail
	case "users.first_name, users.last_name":
		return ConstraintUserName
	case "friend_requests.user_low, friend_requests.user_high":
		return ConstraintFriendRequestPair
	case "friends.user_id, friends.friend_id":
		return ConstraintFriendPair
	default:
		return columns
	}
}
