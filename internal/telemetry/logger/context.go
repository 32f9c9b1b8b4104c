// Package logger provides structured logging for the leaderboard service.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "leaderboard.logger"
	// updateIDKey is the context key for the inbound update id.
	updateIDKey contextKey = "leaderboard.update_id"
	// chatIDKey is the context key for the originating chat id.
	chatIDKey contextKey = "leaderboard.chat_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithUpdateID adds the inbound update id to the context.
func WithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

// UpdateIDFromContext extracts the update id, or 0 when unset.
func UpdateIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(updateIDKey).(int); ok {
		return id
	}
	return 0
}

// WithChatID adds the originating chat id to the context.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// ChatIDFromContext extracts the chat id, or 0 when unset.
func ChatIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(chatIDKey).(int64); ok {
		return id
	}
	return 0
}

// L is a shorthand for FromContext that also enriches the logger with
// the update id and chat id carried by the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := UpdateIDFromContext(ctx); id != 0 {
		l = l.With("update_id", id)
	}
	if id := ChatIDFromContext(ctx); id != 0 {
		l = l.With("chat_id", id)
	}
	return l
}
