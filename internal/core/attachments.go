package core

import (
	"strings"
)

// dangerousExtensions are attachment suffixes treated as suspicious regardless of content
var dangerousExtensions = []string{".exe", ".bat", ".cmd", ".scr", ".js", ".vbs", ".jar"}

// IsSuspiciousAttachment reports whether the filename ends with a denylisted extension.
// Matching is a case-insensitive suffix match.
func IsSuspiciousAttachment(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range dangerousExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DangerousExtensions returns a copy of the extension denylist
func DangerousExtensions() []string {
	out := make([]string, len(dangerousExtensions))
	copy(out, dangerousExtensions)
	return out
}
