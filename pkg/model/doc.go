// Package model defines the database models for the audit pipeline.
//
// This package contains GORM models for the records the pipeline looks up
// while rendering audit entries, plus the persisted audit entry itself.
//
// # Models
//
//   - User: back-office users (performers and password/save subjects)
//   - Member: front-end members (save, delete and role subjects)
//   - UserGroup: user groups with allowed sections and default permissions
//   - Entity: content nodes that group permissions are assigned on
//   - EntityPermission: event payload only, never persisted here
//   - AuditEntry: a row of the append-only audit trail
//
// # Database Schema
//
//   - users, members, user_groups, entities: read-only lookups
//   - audit_entries: append-only, written by audit.Store
package model
