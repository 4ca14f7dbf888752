package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameLen = 255

var ErrBadFileName = errors.New("invalid file name")

// CleanFileName returns the final element of a client supplied file name.
// Traversal, control characters and over-long names are rejected.
func CleanFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.Contains(name, "..") {
		return "", ErrBadFileName
	}
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || len(name) > maxFileNameLen {
		return "", ErrBadFileName
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", ErrBadFileName
	}
	return name, nil
}
