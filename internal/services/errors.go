package services

import "errors"

// Sales service errors
var (
	// ErrDatasetUnavailable wraps the load failure of the configured source.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrInvalidFilter reports filter or paging parameters that cannot be applied.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrUnsupportedFormat reports an export format other than csv or xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
