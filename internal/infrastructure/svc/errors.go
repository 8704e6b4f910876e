package svc

import "errors"

// ErrStorageInitFailed wraps any storage backend that could not be opened.
var ErrStorageInitFailed = errors.New("storage initialization failed")

// ErrNoQuoteSource is returned when neither the in-process proxy nor a remote proxy is usable.
var ErrNoQuoteSource = errors.New("no quote source configured")
