package health

import "errors"

// ErrCheckTimeout marks a check that ran past the aggregator timeout.
var ErrCheckTimeout = errors.New("health: check timed out")

// ErrCheckerNotFound is returned by Aggregator.Check for an unregistered name.
var ErrCheckerNotFound = errors.New("health: no checker registered under that name")
