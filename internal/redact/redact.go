// Package redact masks sensitive values before they reach the logs. Body
// redaction works on decoded JSON by field name; string redaction works on
// free text such as error messages and connection strings.
package redact

import (
	"encoding/json"
	"regexp"
	"strings"
)

const Placeholder = "[REDACTED]"

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"key",
	"authorization",
	"auth",
	"credential",
}

var (
	connCredentialsRegex = regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://)[^/@\s]+@`)
	keyValueRegex        = regexp.MustCompile(
		`(?i)\b(password|passwd|pwd|token|secret|api[_-]?key|authorization)(\s*[=:]\s*)("[^"]*"|'[^']*'|[^\s,;&]+)`,
	)
)

// IsSensitiveKey reports whether a field name must never be logged in clear.
func IsSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Value walks a decoded JSON value and replaces every field whose name is
// sensitive. Arrays are redacted element by element. The input is not
// modified.
func Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSensitiveKey(k) {
				out[k] = Placeholder
				continue
			}
			out[k] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	default:
		return v
	}
}

// Body decodes a JSON payload and returns its redacted form, or false when the
// payload is not JSON.
func Body(raw []byte) (any, bool) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	return Value(decoded), true
}

// String masks credentials embedded in URLs and key=value pairs.
func String(s string) string {
	if s == "" {
		return s
	}
	s = connCredentialsRegex.ReplaceAllString(s, "${1}"+Placeholder+"@")
	return keyValueRegex.ReplaceAllString(s, "${1}${2}"+Placeholder)
}

func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
