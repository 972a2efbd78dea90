package excel

import (
	"fmt"
)

// FileSizeError is returned before any reading when the source file exceeds
// the configured maximum size. A file of exactly the maximum size is allowed.
type FileSizeError struct {
	Path string
	Size int64
	Max  int64
}

func (e *FileSizeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, exceeds maximum of %d", e.Path, e.Size, e.Max)
}

// UnsupportedFileTypeError is returned when the source extension is outside
// the supported set.
type UnsupportedFileTypeError struct {
	Ext     string
	Allowed []string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q, allowed: %v", e.Ext, e.Allowed)
}
