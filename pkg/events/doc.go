// Package events defines the lifecycle events the audit pipeline listens to.
//
// Event kinds form a closed vocabulary generated with enumer; each kind has
// exactly one payload type. Save events carry an explicit list of changed
// field names per entity, computed by the service that raised them.
//
// # Raising events
//
//	bus := events.NewBus()
//	router.Register(bus)
//
//	err := bus.Raise(ctx, events.KindMemberRolesAssigned, events.RolesChanged{
//	    MemberIDs: []int{1, 2},
//	    Roles:     []string{"editors"},
//	})
//
// Handlers run synchronously on the raising goroutine; an error from a
// handler is returned to the raiser.
package events
