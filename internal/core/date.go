package core

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar date form used everywhere inside the
// application.
const DateLayout = "2006-01-02"

// layouts the gateway has been seen to send.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// CanonicalDate re-serializes s as YYYY-MM-DD. Timestamps carrying an offset
// are moved to UTC first. The boolean is false when nothing matched; the
// caller decides what to do with the original text.
func CanonicalDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(DateLayout), true
		}
	}
	return "", false
}

// Today returns now's calendar date in canonical form.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// canonicalOrVerbatim never fails: unparseable input is returned untouched.
func canonicalOrVerbatim(s string) string {
	if d, ok := CanonicalDate(s); ok {
		return d
	}
	return s
}
