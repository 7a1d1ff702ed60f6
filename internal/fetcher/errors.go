package fetcher

import (
	"errors"
	"fmt"

	"github.com/nao1215/imgfetcher/internal/model"
)

// Sentinel causes for the non-network outcomes.
var (
	// ErrNotImage is the cause of a KindNotImage result.
	ErrNotImage = errors.New("content type is not an image")

	// ErrDuplicate is the cause of a KindDuplicate result.
	ErrDuplicate = errors.New("content already fetched in this run")

	// ErrStatus is wrapped when the server answers with a non-2xx status.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is wrapped when the body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrDisallowed is the cause of a KindDisallowed result.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Error describes why a URL did not produce a saved image.
type Error struct {
	// Kind is the outcome the error was classified as.
	Kind model.Kind

	// URL is the URL being fetched.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
