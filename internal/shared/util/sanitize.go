package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

var secretPattern = regexp.MustCompile(`(?i)(sk-[a-z0-9_\-]{8,}|AIza[0-9a-z_\-]{20,}|bearer\s+[a-z0-9._\-]+)`)

// SanitizeMessage redacts anything that looks like a credential and trims the
// result to at most max bytes without splitting a rune.
func SanitizeMessage(msg string, max int) string {
	msg = strings.TrimSpace(secretPattern.ReplaceAllString(msg, "[redacted]"))
	if max <= 0 || len(msg) <= max {
		return msg
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
