package domain

import "errors"

var (
	// ErrUpstreamUnavailable marks network or HTTP failures from Toggl, Telegram or the data store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotFound marks an unknown user or record.
	ErrNotFound = errors.New("not found")
	// ErrMalformed marks command arguments that cannot be parsed.
	ErrMalformed = errors.New("malformed arguments")
)
