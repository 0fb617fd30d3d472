package models

import "errors"

// Sentinel errors for the pipeline. ErrIndexUnavailable and
// ErrGenerationUnavailable are retryable from the caller's point of view,
// the other two are terminal.
var (
	ErrFileNotFound          = errors.New("file not found")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrIndexUnavailable      = errors.New("index unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
)
