package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/repoport/internal/console"
	"github.com/temirov/repoport/internal/history"
)

// WriterResult reports the destination outcome of a single migration write.
type WriterResult string

// Destination write outcomes.
const (
	// WriterResultOK indicates the destination accepted the migration.
	WriterResultOK WriterResult = WriterResult("OK")
	// WriterResultPromptToContinue indicates the destination accepted the
	// migration but requests operator confirmation before further writes.
	WriterResultPromptToContinue WriterResult = WriterResult("PROMPT_TO_CONTINUE")
)

// Metadata carries the description and authorship for a destination write.
type Metadata struct {
	Message string
	Author  history.Identity
}

// MigrationRequest bundles everything a destination writer needs for one
// migration: the origin reference to import, the metadata to record, the set
// of origin changes the write represents, an optional destination baseline,
// and the console receiving progress output.
type MigrationRequest struct {
	Reference string
	Metadata  Metadata
	Changes   history.Changes
	Baseline  string
	Console   console.Console
}

// RunHelper supplies the strategy-independent services a migration run needs.
type RunHelper interface {
	// ResolvedReference returns the origin reference selected for this run.
	ResolvedReference() string
	// ChangesSinceLastImport lists origin changes newer than the last
	// migrated reference, ordered most recent first.
	ChangesSinceLastImport(executionContext context.Context) ([]history.Change, error)
	// Reader exposes origin change history.
	Reader() history.Reader
	// Migrate writes a single migration into the destination.
	Migrate(executionContext context.Context, request MigrationRequest) (WriterResult, error)
	// DefaultAuthor returns the authorship recorded when origin authorship
	// is not preserved.
	DefaultAuthor() history.Identity
	// DestinationOriginLabelName returns the label under which destination
	// changes record the origin reference they imported.
	DestinationOriginLabelName() string
	// Console returns the interactive console for the run.
	Console() console.Console
	// Logger returns the structured logger for the run.
	Logger() *zap.Logger
	// BaselineOverride returns the operator-supplied destination baseline,
	// or an empty string when none was given.
	BaselineOverride() string
}
