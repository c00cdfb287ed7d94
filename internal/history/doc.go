// Package history models origin changes and the read-only views handed to the
// transformation pipeline during a migration run.
//
// It defines the immutable Change record, the Changes view combining pending
// and already-migrated changes, and the visitor protocol used to walk a
// repository's history backward with early termination.
package history
