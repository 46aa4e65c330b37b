// Command auditctl runs the back-office audit trail service.
//
// Back-office events (sign-ins, password changes, user, group and member
// administration) are raised over HTTP, from a spool directory or from
// files, routed through the audit router and appended to the configured
// sinks: RFC 5424 syslog lines on stdout and the audit_entries table.
//
// # Quick Start
//
//	# Create the audit schema
//	auditctl db migrate
//
//	# Run the ingestion server
//	auditctl serve
//
//	# Raise the events in a spool directory as they arrive
//	auditctl watch /var/spool/backoffice-audit
//
//	# Read the trail back
//	auditctl entries list --tag umbraco/user/delete
//
// # Environment Variables
//
//   - DATABASE_URL: back-office PostgreSQL connection string
//   - AUDIT_DATABASE_URL: audit trail database, defaults to DATABASE_URL
//   - AUDIT_JWT_SECRET: HS256 secret for ingestion bearer tokens
//   - AUDIT_CONFIG_PATH: configuration file directory
package main
