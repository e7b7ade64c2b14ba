package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ContactType selects the display/notification strategy for a free-text
// contact string.
type ContactType string

const (
	ContactPhone  ContactType = "phone"
	ContactEmail  ContactType = "email"
	ContactOpaque ContactType = "opaque"
)

var (
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-\(\)\.]`)
	phoneDigitsRegex = regexp.MustCompile(`^\+?1?\d{10,15}$`)
	phoneLooseRegex  = regexp.MustCompile(`^[\d\s\-\(\)\.\+]{10,20}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhoneNumber is heuristic: strings that merely look numeric may
// be accepted.
func IsValidPhoneNumber(contact string) bool {
	if contact == "" {
		return false
	}

	cleaned := phoneSeparators.ReplaceAllString(contact, "")
	if phoneDigitsRegex.MatchString(cleaned) {
		return true
	}

	return phoneLooseRegex.MatchString(contact)
}

// ClassifyContact picks exactly one display mode for a contact string,
// phone taking priority when both patterns match.
func ClassifyContact(contact string) ContactType {
	switch {
	case IsValidPhoneNumber(contact):
		return ContactPhone
	case IsValidEmail(contact):
		return ContactEmail
	default:
		return ContactOpaque
	}
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}

	return hours*60 + mins, nil
}

// FormatClock renders minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
