package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	plain := errors.New("syntax error")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: sql.ErrNoRows, target: ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), target: ErrNotFound},
		{name: "bad conn", err: driver.ErrBadConn, target: ErrTransient},
		{name: "deadline", err: context.DeadlineExceeded, target: ErrTransient},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, target: ErrTransient},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, target: ErrTransient},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, target: ErrTransient},
		{name: "connection failure", err: &pq.Error{Code: "08006"}, target: ErrTransient},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, target: ErrConflict},
		{name: "other", err: plain, target: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.target)
		})
	}

	assert.NoError(t, classify(nil))
	assert.False(t, IsTransient(classify(&pq.Error{Code: "23503"})))
	assert.True(t, IsTransient(classify(driver.ErrBadConn)))
}
