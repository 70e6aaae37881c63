package documents

import "errors"

var (
	ErrDocumentLocked  = errors.New("document of this type is already pending or approved")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not_found")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)
