// Package logging keeps credentials out of scout's log file.
// Scout logs redis addresses, backend URLs and request paths, any of which can
// carry a password or token, so the CLI log writer passes every line through
// FilterSensitiveValue before it reaches disk.
package logging

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

type replacement struct {
	re   *regexp.Regexp
	with string
}

// sensitivePatterns match credentials that may show up in scout log lines.
// Patterns with capture groups keep the key and only replace the value.
var sensitivePatterns = []replacement{ //nolint:gochecknoglobals // compiled once
	// userinfo in redis:// or http(s):// URLs
	{regexp.MustCompile(`((?:rediss?|https?)://)[^/\s:@]*:[^/\s@]+@`), "${1}" + RedactedValue + "@"},

	// AUTH commands echoed in redis errors
	{regexp.MustCompile(`(?i)(\bauth\s+)\S+`), "${1}" + RedactedValue},

	// key=value or key: value for password-like keys
	{regexp.MustCompile(`(?i)((?:password|passwd|secret|credential|api[_-]?key|access[_-]?token)"?\s*[:=]\s*"?)[^\s"',}&]{4,}`), "${1}" + RedactedValue},

	// query string tokens
	{regexp.MustCompile(`(?i)([?&](?:token|key|apikey|api_key|access_token)=)[^&\s"]+`), "${1}" + RedactedValue},

	// bearer tokens
	{regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._~+/-]{16,}=*`), "${1}" + RedactedValue},
}

// sensitiveFieldNames are field names whose values are always redacted.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // lookup table
	"password",
	"passwd",
	"secret",
	"credential",
	"api_key",
	"apikey",
	"token",
	"authorization",
}

// SensitiveDataHook flags log events whose message looks like it carries a secret.
// Zerolog hooks cannot rewrite the message, so the real redaction happens in
// FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, p := range sensitivePatterns {
		if p.re.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, p := range sensitivePatterns {
		result = p.re.ReplaceAllString(result, p.with)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns value with secrets removed, or [REDACTED] outright when the
// field name itself is sensitive.
//
//	log.Debug().Str("redis", logging.SafeValue("redis", addr)).Msg("connecting")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SafeURL masks the password in a URL. Unparseable input falls back to
// pattern filtering.
func SafeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return FilterSensitiveValue(raw)
	}
	return u.Redacted()
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write filters p and writes it. It reports len(p) on success so callers do
// not treat the redaction as a short write.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
