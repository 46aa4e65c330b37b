// Package audit records the back-office audit trail.
//
// A Router subscribes to event sources (see package events) and, for every
// raised event, resolves who performed it, formats one Entry per affected
// subject, and appends each entry to a Sink before returning to the raiser.
//
// # Performing context
//
// Administrative events take their actor from the principal carried in the
// context (package identity); with no principal the actor is SystemActor.
// Authentication and password events name their actor and address in the
// payload instead. A principal or payload id with no matching user is
// reported as ErrConsistencyViolation and nothing is written.
//
// # Sinks
//
//   - Store: inserts into the audit_entries table (database/sql, lib/pq)
//   - Logger: writes RFC5424 syslog lines
//   - MemorySink: keeps entries in memory, for dry runs and tests
//   - Tee: fans an entry out to several sinks
//
// # Usage
//
//	bus := events.NewBus()
//	router := audit.NewRouter(audit.Collaborators{...}, audit.NewLogger(""))
//	if err := router.Register(bus); err != nil {
//		return err
//	}
//	err := bus.Raise(ctx, events.KindUserSaved, events.UsersSaved{...})
package audit
