package store

import (
	"context"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// MembersStore abstracts member lookups
type MembersStore interface {
	// GetMembersByIDs retrieves all members with the given ids in one round
	// trip. Ids with no member are absent from the result.
	GetMembersByIDs(ctx context.Context, ids []int) (map[int]model.Member, error)
}
