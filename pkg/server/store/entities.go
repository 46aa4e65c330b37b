package store

import (
	"context"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
)

// EntitiesStore abstracts content entity lookups
type EntitiesStore interface {
	// GetEntitiesByIDs retrieves all entities with the given ids in one
	// round trip. Ids with no entity are absent from the result.
	GetEntitiesByIDs(ctx context.Context, ids []int) (map[int]model.Entity, error)
}
