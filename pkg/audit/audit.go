package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the
// documentation enterprise number from RFC 5612.
const (
	AuditPEN    = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH
	FacilityAuthPriv = 10 // LOG_AUTHPRIV
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Sink is the append-only destination for audit entries. Append must be
// safe for concurrent use; a returned error means the entry was not written.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, entry Entry) error

// Append calls f(ctx, entry)
func (f SinkFunc) Append(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// Tee appends every entry to each sink in order and stops at the first error
type Tee []Sink

// Append implements Sink
func (t Tee) Append(ctx context.Context, entry Entry) error {
	for _, sink := range t {
		if err := sink.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Logger writes entries in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

// NewLogger creates a syslog sink writing to stdout
func NewLogger(appName string) *Logger {
	hostname, _ := os.Hostname()
	if appName == "" {
		appName = "backoffice-audit"
	}
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  appName,
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Append writes the entry as a single syslog line.
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Append(_ context.Context, entry Entry) error {
	pri := entry.Facility()*8 + int(entry.Severity())
	timestamp := entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(entry.StructuredData())
	if sd == "" {
		sd = "-"
	}
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	line := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		entry.MessageID(),
		sd,
		entry.Message(),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.writer, line); err != nil {
		return fmt.Errorf("write syslog line: %w", err)
	}
	return nil
}

// formatStructuredData formats structured data per RFC5424 with SD-IDs and
// params in sorted order.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for id := range sd {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		params := sd[id]
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("[" + id)
		for _, k := range keys {
			b.WriteString(" " + k + "=" + escapeSDValue(params[k]))
		}
		b.WriteString("]")
	}
	return b.String()
}

// escapeSDValue escapes special characters in structured data values per
// RFC5424 section 6.3.3
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}
