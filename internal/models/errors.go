package models

import "errors"

// Failure kinds shared across the engine. Call sites wrap these with
// fmt.Errorf("%w: ...") to add context; boundaries match them with
// errors.Is to pick exit codes and HTTP statuses.
var (
	// ErrCollection marks a snapshot that could not be taken at all.
	ErrCollection = errors.New("collection failed")

	// ErrPersistence marks a storage fault, including insert conflicts.
	ErrPersistence = errors.New("persistence failed")

	// ErrInvalidArgument marks caller mistakes such as reversed ranges or
	// non-positive durations.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBusy marks a manual cycle rejected because one is already running.
	ErrBusy = errors.New("busy")
)
