package utils

import "regexp"

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUserName checks the username format (3-20 characters, letters,
// digits and underscores).
func ValidateUserName(username string) bool {
	if len(username) < 3 || len(username) > 20 {
		return false
	}
	return usernameRe.MatchString(username)
}

// ValidatePassword checks password strength (at least 8 characters).
func ValidatePassword(password string) bool {
	return len(password) >= 8
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}
