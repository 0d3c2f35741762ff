package biz

import "errors"

var (
	// ErrEmptyImage is returned when an import is attempted with no bytes.
	ErrEmptyImage = errors.New("image data must not be empty")
	// ErrEmptyOwner is returned when an import has no owning user.
	ErrEmptyOwner = errors.New("owner id must not be empty")
	// ErrInvalidImage is returned when the bytes cannot be decoded as an image.
	ErrInvalidImage = errors.New("image data could not be decoded")

	// ErrTaggingFailed means the external classifier was unreachable or errored.
	ErrTaggingFailed = errors.New("tagging failed")
	// ErrStorageFailed means the blob store rejected the write.
	ErrStorageFailed = errors.New("storage failed")
	// ErrImportFailed is the generic import failure.
	ErrImportFailed = errors.New("import failed")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller does not own the target record.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists is the repository-level unique-constraint outcome.
	// Importers treat it as "another writer won the race" and re-read.
	ErrAlreadyExists = errors.New("already exists")
)
