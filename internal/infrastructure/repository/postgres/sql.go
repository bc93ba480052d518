package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == sqlStateUniqueViolation
}

// isRetryable reports transaction aborts a serializable retry can resolve.
func isRetryable(err error) bool {
	switch sqlState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}

// isConnectionFailure holds for errors that say nothing about the data,
// only that the database could not be reached or dropped the connection.
func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}
	return false
}
