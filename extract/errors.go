package extract

import "fmt"

// FileError reports a failed extraction of one file
type FileError struct {
	File string
	Op   string // open, metadata, page, font
	Kind error  // model sentinel, nil for cancellation
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.File, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches the error kind
func (e *FileError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}
