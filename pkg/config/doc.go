// Package config loads the audit service configuration.
//
// Values start from built-in defaults, are overridden by the YAML file at
// $AUDIT_CONFIG_PATH/audit.yml (default /etc/backoffice-audit/audit.yml),
// and then by environment variables. The source of every value is tracked
// and shown by `auditctl configuration show`.
//
// # Environment variables
//
//   - DATABASE_URL: back-office database (users, members, groups, entities)
//   - AUDIT_DATABASE_URL: audit entry database, defaults to DATABASE_URL
//   - AUDIT_LISTEN_ADDRESS: ingestion server address
//   - AUDIT_JWT_SECRET: HS256 secret for bearer tokens
//   - AUDIT_SYSLOG_ENABLED, AUDIT_SYSLOG_APP_NAME: RFC5424 output on stdout
//   - AUDIT_SPOOL_DIR: directory watched for event files
//   - AUDIT_LOG_LEVEL: debug, info, warn or error
//   - AUDIT_METRICS_ENABLED: expose /metrics
//   - AUDIT_TRUSTED_PROXIES: comma-separated CIDRs allowed to set X-Forwarded-For
package config
