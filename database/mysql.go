package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// mysqlUniqueConstraint extracts the key name from a duplicate entry error,
// e.g. "Duplicate entry 'a@b.c' for key 'users.uk_users_email'".
func mysqlUniqueConstraint(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlDuplicateEntry {
		return "", false
	}

	msg := myErr.Message
	idx := strings.LastIndex(msg, "for key '")
	if idx < 0 {
		return "", true
	}
	key := strings.TrimSuffix(msg[idx+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key, true
}
