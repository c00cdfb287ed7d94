// Package workflow orchestrates repository change migrations.
//
// A migration moves pending changes from an origin repository into a
// destination repository under one of several strategies: squashing the
// pending range into a single destination change, replaying each pending
// change individually, or importing one change against an explicit baseline
// for review. Strategies share a RunHelper contract supplying reference
// resolution, change history access, and the destination writer.
package workflow
