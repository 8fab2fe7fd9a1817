package utils

import (
	"path/filepath"
	"strings"
)

// NormalizePath cleans a path and converts it to forward slashes so that
// documents are indexed the same way on every platform.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// SafeRel returns target relative to base using forward slashes.
// Targets outside base are returned normalized but unchanged.
func SafeRel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return NormalizePath(target)
	}
	return filepath.ToSlash(rel)
}
