// Package loader fetches raw bytes from local files, fs.FS trees and HTTP
// endpoints. Registry sources and the HTML host's stylesheet loader share it.
package loader

import (
	"errors"
	"io/fs"
)

// ErrNotFound reports a missing document regardless of where it was looked
// up. It wraps fs.ErrNotExist so errors.Is works with either.
var ErrNotFound = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "loader: not found" }

func (*notFoundError) Unwrap() error { return fs.ErrNotExist }

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
