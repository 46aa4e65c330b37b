package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/backoffice-audit"
	ConfigFileName    = "audit.yml"
)

// Value sources reported by Source and Attributes
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// ValidLogLevels are the accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// AuditConfig holds all audit service settings
type AuditConfig struct {
	// DatabaseURL is the back-office database holding users, members,
	// groups and entities
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// AuditDatabaseURL is where audit entries are written. Empty means the
	// back-office database.
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	ListenAddress string `yaml:"listen_address" json:"listen_address"`

	// JWTSecret verifies HS256 bearer tokens on the ingestion endpoint
	JWTSecret string `yaml:"jwt_secret" json:"-"`

	SyslogEnabled bool   `yaml:"syslog_enabled" json:"syslog_enabled"`
	SyslogAppName string `yaml:"syslog_app_name" json:"syslog_app_name"`

	// SpoolDir is watched for event files by the watch command
	SpoolDir string `yaml:"spool_dir" json:"spool_dir"`

	LogLevel       string `yaml:"log_level" json:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled" json:"metrics_enabled"`

	// TrustedProxies are CIDR ranges or addresses whose X-Forwarded-For
	// header is believed
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// fileConfig mirrors AuditConfig with pointers so that explicit zero
// values in the file are applied
type fileConfig struct {
	DatabaseURL      *string  `yaml:"database_url"`
	AuditDatabaseURL *string  `yaml:"audit_database_url"`
	ListenAddress    *string  `yaml:"listen_address"`
	JWTSecret        *string  `yaml:"jwt_secret"`
	SyslogEnabled    *bool    `yaml:"syslog_enabled"`
	SyslogAppName    *string  `yaml:"syslog_app_name"`
	SpoolDir         *string  `yaml:"spool_dir"`
	LogLevel         *string  `yaml:"log_level"`
	MetricsEnabled   *bool    `yaml:"metrics_enabled"`
	TrustedProxies   []string `yaml:"trusted_proxies"`
}

// NewDefault returns a config with default values
func NewDefault() *AuditConfig {
	c := &AuditConfig{
		ListenAddress:  "127.0.0.1:8080",
		SyslogEnabled:  true,
		SyslogAppName:  "backoffice-audit",
		SpoolDir:       "/var/spool/backoffice-audit",
		LogLevel:       "info",
		MetricsEnabled: true,
		TrustedProxies: []string{},
		sources:        make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*AuditConfig, error) {
	configPath := os.Getenv("AUDIT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile loads configuration from path, which may not exist, and the
// environment
func LoadFile(path string) (*AuditConfig, error) {
	config := NewDefault()
	config.configFilePath = path

	if data, err := os.ReadFile(path); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "audit_database_url", "listen_address", "jwt_secret",
		"syslog_enabled", "syslog_app_name", "spool_dir", "log_level",
		"metrics_enabled", "trusted_proxies",
	}
}

func (c *AuditConfig) applyFileConfig(file *fileConfig) {
	setString := func(name string, dst *string, val *string) {
		if val != nil {
			*dst = *val
			c.sources[name] = SourceFile
		}
	}
	setBool := func(name string, dst *bool, val *bool) {
		if val != nil {
			*dst = *val
			c.sources[name] = SourceFile
		}
	}

	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	setString("audit_database_url", &c.AuditDatabaseURL, file.AuditDatabaseURL)
	setString("listen_address", &c.ListenAddress, file.ListenAddress)
	setString("jwt_secret", &c.JWTSecret, file.JWTSecret)
	setBool("syslog_enabled", &c.SyslogEnabled, file.SyslogEnabled)
	setString("syslog_app_name", &c.SyslogAppName, file.SyslogAppName)
	setString("spool_dir", &c.SpoolDir, file.SpoolDir)
	setString("log_level", &c.LogLevel, file.LogLevel)
	setBool("metrics_enabled", &c.MetricsEnabled, file.MetricsEnabled)
	if file.TrustedProxies != nil {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = SourceFile
	}
}

func (c *AuditConfig) applyEnvConfig() error {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.sources["audit_database_url"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_LISTEN_ADDRESS"); val != "" {
		c.ListenAddress = val
		c.sources["listen_address"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_JWT_SECRET"); val != "" {
		c.JWTSecret = val
		c.sources["jwt_secret"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_SYSLOG_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid AUDIT_SYSLOG_ENABLED value %q: %w", val, err)
		}
		c.SyslogEnabled = b
		c.sources["syslog_enabled"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_SYSLOG_APP_NAME"); val != "" {
		c.SyslogAppName = val
		c.sources["syslog_app_name"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_SPOOL_DIR"); val != "" {
		c.SpoolDir = val
		c.sources["spool_dir"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_METRICS_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid AUDIT_METRICS_ENABLED value %q: %w", val, err)
		}
		c.MetricsEnabled = b
		c.sources["metrics_enabled"] = SourceEnvironment
	}
	if val := os.Getenv("AUDIT_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = SourceEnvironment
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *AuditConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *AuditConfig) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// AuditDatabase returns the database audit entries are written to
func (c *AuditConfig) AuditDatabase() string {
	if c.AuditDatabaseURL != "" {
		return c.AuditDatabaseURL
	}
	return c.DatabaseURL
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *AuditConfig) IsTrustedProxy(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if proxy := net.ParseIP(cidr); proxy != nil && proxy.Equal(parsedIP) {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *AuditConfig) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen_address %q: %w", c.ListenAddress, err)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level %q: must be one of %s", c.LogLevel, strings.Join(ValidLogLevels, ", "))
	}

	if !c.SyslogEnabled && c.AuditDatabase() == "" {
		return fmt.Errorf("no audit sink configured: set audit_database_url, database_url or syslog_enabled")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets and passwords are masked.
func (c *AuditConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: maskURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "audit_database_url", Value: maskURL(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "listen_address", Value: c.ListenAddress, Source: c.Source("listen_address")},
		{Name: "jwt_secret", Value: mask(c.JWTSecret), Source: c.Source("jwt_secret")},
		{Name: "syslog_enabled", Value: strconv.FormatBool(c.SyslogEnabled), Source: c.Source("syslog_enabled")},
		{Name: "syslog_app_name", Value: c.SyslogAppName, Source: c.Source("syslog_app_name")},
		{Name: "spool_dir", Value: c.SpoolDir, Source: c.Source("spool_dir")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "metrics_enabled", Value: strconv.FormatBool(c.MetricsEnabled), Source: c.Source("metrics_enabled")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
	}
}

// FormatText returns a text representation of the configuration
func (c *AuditConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *AuditConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// maskURL hides the password in a postgres:// URL
func maskURL(s string) string {
	at := strings.LastIndex(s, "@")
	scheme := strings.Index(s, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return s
	}
	userinfo := s[scheme+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return s
	}
	return s[:scheme+3] + userinfo[:colon] + ":********" + s[at:]
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
