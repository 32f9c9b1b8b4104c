// Package logger provides structured logging for the leaderboard service.
package logger

import (
	"log/slog"
	"strings"
	"unicode"
)

// Sensitive key patterns that are fully redacted. Passwords are stored
// and compared in clear text, so any attribute that smells like a
// credential is masked wholesale.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"passphrase",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data and
// redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Bot API tokens have a recognizable "<digits>:<secret>" shape;
		// mask them even when they arrive under an innocent key.
		if looksLikeBotToken(strVal) {
			return slog.String(a.Key, maskBotToken(strVal))
		}

		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	// Handle nested groups recursively.
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// looksLikeBotToken reports whether a value has the bot-token shape:
// a run of digits, a colon, then a long opaque secret.
func looksLikeBotToken(v string) bool {
	idx := strings.IndexByte(v, ':')
	if idx < 6 || len(v)-idx < 30 {
		return false
	}
	for _, r := range v[:idx] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// maskBotToken keeps the numeric bot id and hides the secret.
func maskBotToken(v string) string {
	idx := strings.IndexByte(v, ':')
	return v[:idx] + ":***"
}

// RedactString manually redacts a string value. Use this when a value
// must be sanitized before it ever enters a log call.
func RedactString(v string) string {
	if looksLikeBotToken(v) {
		return maskBotToken(v)
	}
	if v == "" {
		return v
	}
	return redactedValue
}
