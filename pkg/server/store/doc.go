// Package store provides storage abstractions for the audit pipeline.
//
// This package defines the lookup interfaces the pipeline depends on, so
// the router and resolver are decoupled from the database and can be
// tested with mocks.
//
// # Available Stores
//
//   - UsersStore: back-office user lookup by id
//   - MembersStore: batched member lookup
//   - UserGroupsStore: user group lookup, single and batched
//   - EntitiesStore: batched content entity lookup
//   - EntriesStore: audit trail listing
//
// # Usage
//
//	users := gorm.NewUsersStore(db)
//	user, err := users.GetUserByID(ctx, 7)
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle not found
//	    }
//	}
package store
