package model

// TruncateString caps a string at the maximum length the column allows.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
