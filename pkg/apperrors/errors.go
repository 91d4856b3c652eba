package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrNotConnected      = errors.New("database not connected")
	ErrUnknownImporter   = errors.New("unknown importer")
	ErrInvalidKey        = errors.New("invalid backward compatibility key")
	ErrMissingDependency = errors.New("missing dependency")
	ErrUnknownCode       = errors.New("unknown legacy code")
)
