package notification

import "regexp"

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// IsValidE164 reports whether phone is a "+" followed by 2 to 15 digits with a non-zero first digit.
func IsValidE164(phone string) bool {
	return e164Pattern.MatchString(phone)
}
