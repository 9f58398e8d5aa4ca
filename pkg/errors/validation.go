package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateCountryName validates a country or region name from scraped data.
// It rejects names that are empty, absurdly long, or contain control characters,
// which usually indicate a broken table extraction rather than a real country.
func ValidateCountryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidDataset, "country name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidDataset, "country name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "country name contains control characters")
		}
	}

	return nil
}

// ValidateRepoPath validates a file path within a GitHub repository for safety.
// It prevents path traversal and ensures a reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// repoNameRegex matches "owner/name" GitHub repository identifiers.
var repoNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRepoName validates an "owner/name" GitHub repository identifier.
func ValidateRepoName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "repository name cannot be empty")
	}
	if !repoNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid repository name: %q (expected owner/name)", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
