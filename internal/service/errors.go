package service

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrShelfNotFound    = errors.New("shelf not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrGoalNotFound     = errors.New("no reading goal set")
	ErrNoFile           = errors.New("document has no stored file")
	ErrInvalidKind      = errors.New("unsupported document type")
	ErrEmptyPayload     = errors.New("empty file payload")
	// ErrMissingMetadata rejects restore payloads without a metadata array.
	ErrMissingMetadata = errors.New("backup payload has no metadata")
)
