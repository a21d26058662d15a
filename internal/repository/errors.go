package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrTransient = errors.New("transient storage failure")
	ErrConflict  = errors.New("conflict")
)

const uniqueViolation = "23505"

// classify maps driver errors onto ErrNotFound, ErrConflict and ErrTransient
// so callers can tell a missing row from a failure worth retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			// connection exception, transaction rollback, insufficient resources, operator intervention
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
	}

	return err
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
