// Package utils contains the normalisation helpers shared by the MCP tools and
// the logging setup used by the binaries.
package utils

import (
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// ExcerptLength is the number of characters kept when an excerpt has to be
// derived from note content.
const ExcerptLength = 200

const ellipsis = "..."

// SplitTags turns a comma separated tag string into its trimmed, non empty
// entries, keeping their order.
func SplitTags(tags string) []string {
	out := []string{}
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Excerpt returns the first ExcerptLength characters of content, followed by
// an ellipsis when anything was cut.
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}

	runes := []rune(content)
	return string(runes[:ExcerptLength]) + ellipsis
}

// ParseLogLevel maps a level name to a slog level, defaulting to INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigureLogging installs a JSON slog handler writing to w as the default
// logger.
func ConfigureLogging(level string, w io.Writer) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}
