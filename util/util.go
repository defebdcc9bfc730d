package util

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
)

//go:embed version.txt
var embeddedVersion string

// Timestamp format used in all wire representations, ISO-8601 with seconds
// precision.
const WireTimeFormat = "2006-01-02T15:04:05Z07:00"

func GetVersion() string {
	return strings.TrimSpace(embeddedVersion)
}

func GetNameAndVersion() string {
	return fmt.Sprintf("%s / %s", Name, GetVersion())
}

// NormalizeInput flattens user-typed plain text to a single HTML-safe line.
func NormalizeInput(text string) string {
	normalized := strings.Replace(text, "\n", " ", -1)
	normalized = html.EscapeString(normalized)
	return normalized
}

func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", " ")
	return string(s)
}

// FormatWireTime renders t for a wire representation.
func FormatWireTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(WireTimeFormat)
}

// ParseWireTime parses a wire timestamp.
func ParseWireTime(s string) (time.Time, error) {
	return time.Parse(WireTimeFormat, s)
}
