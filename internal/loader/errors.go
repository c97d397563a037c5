package loader

import "fmt"

// ParseError reports a file that could not be decoded.
type ParseError struct {
	Path string
	Line int // 0 when the decoder gives no position
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFileError reports a file extension with no reader.
type UnsupportedFileError struct {
	Path string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("%s: unsupported file type (expected .csv, .json, .yaml or .yml)", e.Path)
}
