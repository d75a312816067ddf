// Package repository implements the MySQL persistence layer.  Each
// repository exposes *Tx methods that run inside a caller-provided
// transaction; the Store adapter in store.go stitches them together
// behind the engine's transactional interface.  Timestamps are stored
// and compared in UTC throughout.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/arinvel/slot-reservation/internal/engine"
)

// ErrEmailExists is returned when creating a user with an email that is
// already registered.  Handlers translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// MySQL server error numbers the store translates into the engine's
// retryable concurrency error.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateEntry  = 1062
)

// translateErr maps driver-level failures onto the engine taxonomy.
// Lock-wait timeouts and deadlocks become ErrConcurrentModification so
// callers know a retry is safe; everything else passes through.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return engine.ErrConcurrentModification
		}
	}
	return err
}

// isDuplicate reports whether err is a unique-key violation.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry
}
