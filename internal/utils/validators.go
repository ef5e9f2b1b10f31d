package utils

import "strings"

// IsValidEmail checks the minimal shape of an email address.
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsAcceptablePassword enforces the minimum length for student accounts.
// Young readers type these, so the bar is length, not symbol soup.
func IsAcceptablePassword(password string) bool {
	return len(password) >= 6
}
