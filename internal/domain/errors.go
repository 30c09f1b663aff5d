package domain

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types outside pdf/txt/docx/eml.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrParseFailure is returned when a recognised format cannot be decoded.
	ErrParseFailure = errors.New("document parse failure")
	// ErrStorageFailure is returned when the raw artifact cannot be persisted.
	ErrStorageFailure = errors.New("artifact storage failure")
	// ErrNotFound is returned for operations on unknown document ids.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden is returned for deletions of system documents or documents
	// owned by a different scope.
	ErrForbidden = errors.New("operation forbidden")
	// ErrEmptyQuery is returned for blank query text.
	ErrEmptyQuery = errors.New("empty query")
)
