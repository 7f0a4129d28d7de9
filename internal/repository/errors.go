// Package repository persists hotel snapshots.  Two stores are provided: a
// JSON file store for single-node deployments and a MySQL store that keeps
// rooms, reservations and users in their own tables.  Both implement the
// same Load/Save contract so the service does not care which one is used.
package repository

import "errors"

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
// Callers treat it as "start from the sample catalog", not as a failure.
var ErrNoSnapshot = errors.New("no snapshot saved")

// ErrUnsupportedSnapshot is returned when the stored schema version is
// newer or older than this build understands.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot schema version")
