package ai

import "unicode/utf8"

// truncate shortens s to maxLen bytes for log previews, keeping UTF-8 intact.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return safeTruncateString(s, maxLen) + "..."
}

// safeTruncateString truncates a string to maxLen bytes while preserving UTF-8 encoding.
// If truncation would split a multi-byte sequence, it backs off to a valid boundary.
func safeTruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]
	// A UTF-8 sequence is at most 4 bytes
	for i := 0; i < 4 && len(truncated) > 0; i++ {
		if utf8.ValidString(truncated) {
			return truncated
		}
		truncated = truncated[:len(truncated)-1]
	}
	return ""
}
