// Package repository stores the per-user trip log and goal pairs.
package repository

import (
	"context"
	"errors"

	"github.com/nurpe/ride-profit/internal/model"
)

const maxUserIDLength = 64

var ErrInvalidUserID = errors.New("invalid user id")

// LogStore holds the append-only trip log as lines without terminators.
// A user with no log reads as nil lines and no error.
type LogStore interface {
	ReadLog(ctx context.Context, userID string) ([]string, error)
	AppendLog(ctx context.Context, userID string, lines []string) error
	RewriteLog(ctx context.Context, userID string, lines []string) error
}

// GoalStore holds the goal key-value pairs. WriteGoal replaces the whole set.
type GoalStore interface {
	ReadGoal(ctx context.Context, userID string) ([]model.Field, bool, error)
	WriteGoal(ctx context.Context, userID string, values []model.Field) error
}

// Provisioner prepares storage for a new account. Existing data is kept.
type Provisioner interface {
	InitUser(ctx context.Context, userID string, defaults []model.Field) error
}

type Store interface {
	LogStore
	GoalStore
	Provisioner
}

// ValidateUserID accepts ids made of ASCII letters, digits, '-' and '_'.
func ValidateUserID(userID string) error {
	if userID == "" || len(userID) > maxUserIDLength {
		return ErrInvalidUserID
	}
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidUserID
		}
	}
	return nil
}
