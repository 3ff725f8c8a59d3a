package logging

import "strings"

const redactedValue = "[REDACTED]"

// Redactor masks secret-bearing fields before they reach a log sink.
// Everything the SRP exchange derives from the password is treated as
// secret; public ephemerals (A, B) are loggable, private exponents and
// proofs are not.
type Redactor struct {
	sensitiveKeys map[string]bool
}

// NewRedactor creates a Redactor with the default key set.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: map[string]bool{
			// credentials
			"password": true,
			"verifier": true,

			// SRP session material
			"a":             true, // client ephemeral private
			"b":             true, // server ephemeral private
			"m1":            true,
			"m2":            true,
			"proof":         true,
			"shared_secret": true,
			"session_key":   true,

			// issued tokens
			"token":         true,
			"session_token": true,
			"secret":        true,
			"authorization": true,
		},
	}
}

// AddSensitiveKey adds a key to the redaction list.
func (r *Redactor) AddSensitiveKey(key string) {
	r.sensitiveKeys[strings.ToLower(key)] = true
}

// RedactFields returns a copy of fields with sensitive values masked.
// Nested maps are redacted recursively.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	redacted := make(map[string]any, len(fields))
	for k, v := range fields {
		switch {
		case r.sensitiveKeys[strings.ToLower(k)]:
			redacted[k] = redactedValue
		default:
			if nested, ok := v.(map[string]any); ok {
				redacted[k] = r.RedactFields(nested)
			} else {
				redacted[k] = v
			}
		}
	}
	return redacted
}
