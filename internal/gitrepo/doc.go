// Package gitrepo adapts local Git repositories to the migration pipeline.
//
// It exposes LogReader for reading change history, RepositoryManager for
// structured worktree and commit operations, and GitRunHelper, which binds an
// origin and a destination repository into the services a migration run needs.
package gitrepo
