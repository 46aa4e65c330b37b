package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// ErrNotFound is returned when a looked-up record doesn't exist
var ErrNotFound = errors.New("record not found")

// UsersStore abstracts back-office user lookups
type UsersStore interface {
	// GetUserByID retrieves a user by id.
	// Returns ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, id int) (*model.User, error)
}
