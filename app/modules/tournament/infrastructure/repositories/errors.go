package tournamentdb

import "errors"

// Sentinel errors for the tournament repository layer. These report
// infrastructure outcomes, not domain validation failures; the service
// layer decides how to surface them.
var (
	// ErrNotFound indicates no tournament snapshot has been stored yet.
	ErrNotFound = errors.New("tournament snapshot not found")
)
