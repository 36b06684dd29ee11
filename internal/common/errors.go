package common

import "errors"

// Sentinel errors shared across services; handlers map these to HTTP codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrAlreadyConnected = errors.New("platform already connected")
)
