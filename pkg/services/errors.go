package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for missing fields and malformed input
	ErrValidation = errors.New("validation error")

	// ErrInvalidArgument is returned for values outside an accepted set
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrValidation)

	// ErrNotFound is returned when an operation targets an absent category
	ErrNotFound = errors.New("category not found")

	// ErrPersistence is returned when a document cannot be read or written
	ErrPersistence = errors.New("persistence error")

	// ErrUpstreamFetch is the parent of every link ingestion failure
	ErrUpstreamFetch = errors.New("upstream fetch error")

	// ErrMetadataFetchFailed is returned when the page metadata cannot be retrieved
	ErrMetadataFetchFailed = fmt.Errorf("%w: metadata fetch failed", ErrUpstreamFetch)

	// ErrNoImageFound is returned when the page metadata lists no image
	ErrNoImageFound = fmt.Errorf("%w: no image found", ErrUpstreamFetch)

	// ErrImageDownloadFailed is returned when the image cannot be downloaded
	ErrImageDownloadFailed = fmt.Errorf("%w: image download failed", ErrUpstreamFetch)
)
