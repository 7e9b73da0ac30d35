// Package contact extracts a reachable contact method from free text.
package contact

import (
	"regexp"
	"strings"
)

// NotProvided is the sentinel returned when neither the message nor the
// caller supplied a usable contact.
const NotProvided = "tidak tersedia"

var (
	// Indonesian mobile numbers: 08..., 628..., +628..., 9 to 13 digits,
	// optionally broken by spaces, dots or dashes.
	phonePattern = regexp.MustCompile(`(?:\+62|62|0)8[1-9](?:[\s.-]?\d){6,10}`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	separators = strings.NewReplacer(" ", "", ".", "", "-", "")
)

// Extract returns the first phone number in the message, else the first
// email address, else the caller-supplied fallback, else NotProvided.
// Deterministic, no external calls.
func Extract(message, fallback string) string {
	if phone := phonePattern.FindString(message); phone != "" {
		return separators.Replace(phone)
	}
	if email := emailPattern.FindString(message); email != "" {
		return email
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return NotProvided
}

// Found reports whether Extract produced a usable contact.
func Found(contact string) bool {
	return contact != "" && contact != NotProvided
}
