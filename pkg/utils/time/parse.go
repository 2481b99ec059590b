// ABOUTME: Time parsing utilities for flexible date/time parsing
// ABOUTME: Handles the RFC 3339 and looser stamps found in OPDS/Atom feeds

package time

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseFlexibleTime parses a feed timestamp in any format dateparse understands.
// Unparseable or empty input yields the zero time.
func ParseFlexibleTime(timeStr string) time.Time {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, timeStr); err == nil {
		return t
	}

	t, err := dateparse.ParseAny(timeStr)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseOptional parses a timestamp, returning nil if it is empty or unparseable
func ParseOptional(timeStr string) *time.Time {
	t := ParseFlexibleTime(timeStr)
	if t.IsZero() {
		return nil
	}
	return &t
}

// ParseWithDefault attempts to parse a time string, returning a default if parsing fails
func ParseWithDefault(timeStr string, defaultTime time.Time) time.Time {
	if parsed := ParseFlexibleTime(timeStr); !parsed.IsZero() {
		return parsed
	}
	return defaultTime
}

// ParseWithNow attempts to parse a time string, returning current time if parsing fails
func ParseWithNow(timeStr string) time.Time {
	return ParseWithDefault(timeStr, time.Now())
}
