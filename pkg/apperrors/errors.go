package apperrors

import "errors"

var (
	ErrNoModel       = errors.New("no conceptual model or database schema provided")
	ErrNoNodeMapping = errors.New("no node label mapping for table")
	ErrTableNotFound = errors.New("table not found in schema")
	ErrUnsupportedDB = errors.New("unsupported database type")
)
