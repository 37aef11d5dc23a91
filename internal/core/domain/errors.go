package domain

import "errors"

var (
	// ErrMissingFields is returned when a submission lacks a coordinate, a description or a user.
	ErrMissingFields = errors.New("missing required fields")
	// ErrDraftNotFound is returned for unknown or expired drafts.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrGeolocationUnsupported means the host environment has no geolocation capability.
	ErrGeolocationUnsupported = errors.New("geolocation unsupported")
	// ErrGeolocationFailed means the position request was denied or failed.
	ErrGeolocationFailed = errors.New("geolocation failed")
)
