package sqlstore

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/Vasu1712/scenyx-chat/internal/storage"
)

// classify maps driver constraint violations onto storage sentinels. unique is
// the sentinel to report for a uniqueness violation in the calling context.
func classify(err error, unique error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return unique
		case "23514":
			return storage.ErrSelfPair
		case "23503":
			return storage.ErrInvalidReference
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return unique
		case sqlite3.ErrConstraintCheck:
			return storage.ErrSelfPair
		case sqlite3.ErrConstraintForeignKey:
			return storage.ErrInvalidReference
		}
	}
	return err
}
