package combiner

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocuments means Merge was called before any document was
	// registered.
	ErrNoDocuments = errors.New("combiner: no documents to merge")

	// ErrNotMerged means Save was called before a successful Merge.
	ErrNotMerged = errors.New("combiner: nothing merged yet")
)

// FileNotFoundError reports a source file that is missing or
// unreadable.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("combiner: source %s is missing or unreadable", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// PageNotFoundError reports a requested page past the end of its
// source document.
type PageNotFoundError struct {
	Page int
	Path string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("combiner: %s has no page %d", e.Path, e.Page)
}

// OutputError reports a failure while delivering the combined
// document.
type OutputError struct {
	Path string
	Mode OutputMode
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("combiner: writing %s output for %s: %v", e.Mode, e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
