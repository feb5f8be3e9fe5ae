package utils

import (
	"context"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
)

// SessionToSlog logs a copilot session event at debug level. Model output is
// logged by size only.
func SessionToSlog(event copilot.SessionEvent) {
	ctx := context.Background()
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{slog.String("type", string(event.Type))}
	attrs = appendLen(attrs, "delta_length", event.Data.DeltaContent)
	attrs = appendLen(attrs, "content_length", event.Data.Content)
	if event.Data.Message != nil {
		attrs = append(attrs, slog.String("message", *event.Data.Message))
	}

	slog.LogAttrs(ctx, slog.LevelDebug, "Copilot session event", attrs...)
}

func appendLen(attrs []slog.Attr, key string, s *string) []slog.Attr {
	if s == nil {
		return attrs
	}
	return append(attrs, slog.Int(key, len(*s)))
}
