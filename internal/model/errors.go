package model

import "fmt"

// InputErrorCode classifies failures while locating a file-set.
type InputErrorCode string

const (
	InputNotFound        InputErrorCode = "not_found"
	InputBadExtension    InputErrorCode = "bad_extension"
	InputEmpty           InputErrorCode = "empty"
	InputMissingSequence InputErrorCode = "missing_sequence"
)

// InputError reports a structural problem with a metadata file or the
// sequence files it references.
type InputError struct {
	Code    InputErrorCode
	Path    string
	Missing []string // sequence file names that did not resolve
	Err     error
}

func (e *InputError) Error() string {
	switch e.Code {
	case InputNotFound:
		return fmt.Sprintf("metadata file not found or unreadable: %s", e.Path)
	case InputBadExtension:
		return fmt.Sprintf("metadata file has unexpected extension: %s", e.Path)
	case InputEmpty:
		return fmt.Sprintf("metadata file is empty: %s", e.Path)
	case InputMissingSequence:
		return fmt.Sprintf("missing sequence file(s) %v referenced by %s", e.Missing, e.Path)
	}
	return fmt.Sprintf("input error (%s): %s", e.Code, e.Path)
}

func (e *InputError) Unwrap() error { return e.Err }

// SequenceErrorCode classifies failures while processing one sequence file.
type SequenceErrorCode string

const (
	SequenceUnreadable SequenceErrorCode = "unreadable"
	SequenceEmpty      SequenceErrorCode = "empty"
)

// SequenceError reports a sequence file that could not be processed at all.
// Invalid alphabet content is not an error; it is captured in SequenceStats.
type SequenceError struct {
	Code SequenceErrorCode
	Path string
	Err  error
}

func (e *SequenceError) Error() string {
	switch e.Code {
	case SequenceUnreadable:
		return fmt.Sprintf("sequence file cannot be read as text: %s", e.Path)
	case SequenceEmpty:
		return fmt.Sprintf("sequence file is empty: %s", e.Path)
	}
	return fmt.Sprintf("sequence error (%s): %s", e.Code, e.Path)
}

func (e *SequenceError) Unwrap() error { return e.Err }

// LoadErrorCode classifies failures while persisting a merged record.
type LoadErrorCode string

const (
	LoadDirCreateFailed LoadErrorCode = "dir_create_failed"
	LoadWriteFailed     LoadErrorCode = "write_failed"
)

// LoadError reports a filesystem failure in the load stage.
type LoadError struct {
	Code LoadErrorCode
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Code {
	case LoadDirCreateFailed:
		return fmt.Sprintf("failed to create output directory %s: %v", e.Path, e.Err)
	case LoadWriteFailed:
		return fmt.Sprintf("failed to write output file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load error (%s): %s: %v", e.Code, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
