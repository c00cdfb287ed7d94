package history

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	lazyChangesComputationFailedMessageConstant = "Previous reference could not be resolved; cannot compute the set of changes in the migration"
	lazyChangesFailureFieldNameConstant         = "cause"
)

// Changes is the read-only view of a migration handed to the transform pipeline.
type Changes interface {
	// Current returns the changes about to be migrated.
	Current() []Change
	// Migrated returns the changes already applied earlier in this run.
	Migrated() []Change
}

// ChangesLoader computes the pending change sequence on demand.
type ChangesLoader func(executionContext context.Context) ([]Change, error)

// LazyChanges computes its current sequence at most once, on first access.
//
// A loader failure degrades to an empty sequence with a warning; callers that
// never read the history never pay for the computation.
type LazyChanges struct {
	loader           ChangesLoader
	logger           *zap.Logger
	executionContext context.Context
	computationGuard sync.Mutex
	computed         bool
	cachedCurrent    []Change
}

// NewLazyChanges constructs a LazyChanges view over the supplied loader.
func NewLazyChanges(executionContext context.Context, logger *zap.Logger, loader ChangesLoader) *LazyChanges {
	if logger == nil {
		logger = zap.NewNop()
	}
	if executionContext == nil {
		executionContext = context.Background()
	}
	return &LazyChanges{
		loader:           loader,
		logger:           logger,
		executionContext: executionContext,
	}
}

// Current returns the memoized pending changes, computing them on first access.
func (changes *LazyChanges) Current() []Change {
	changes.computationGuard.Lock()
	defer changes.computationGuard.Unlock()

	if changes.computed {
		return copyChanges(changes.cachedCurrent)
	}

	changes.computed = true
	if changes.loader == nil {
		changes.cachedCurrent = nil
		return nil
	}

	loadedChanges, loadError := changes.loader(changes.executionContext)
	if loadError != nil {
		changes.logger.Warn(
			lazyChangesComputationFailedMessageConstant,
			zap.NamedError(lazyChangesFailureFieldNameConstant, loadError),
		)
		changes.cachedCurrent = nil
		return nil
	}

	changes.cachedCurrent = copyChanges(loadedChanges)
	return copyChanges(changes.cachedCurrent)
}

// Migrated always returns an empty sequence for a lazy view.
func (changes *LazyChanges) Migrated() []Change {
	return nil
}

// ComputedChanges carries eagerly supplied current and migrated sequences.
type ComputedChanges struct {
	currentChanges  []Change
	migratedChanges []Change
}

// NewComputedChanges constructs a ComputedChanges view, copying both sequences.
func NewComputedChanges(currentChanges []Change, migratedChanges []Change) ComputedChanges {
	return ComputedChanges{
		currentChanges:  copyChanges(currentChanges),
		migratedChanges: copyChanges(migratedChanges),
	}
}

// Current returns the changes about to be migrated.
func (changes ComputedChanges) Current() []Change {
	return copyChanges(changes.currentChanges)
}

// Migrated returns the changes already applied earlier in this run.
func (changes ComputedChanges) Migrated() []Change {
	return copyChanges(changes.migratedChanges)
}

// ReverseChanges returns a copy of the supplied sequence in reverse order.
func ReverseChanges(changes []Change) []Change {
	reversed := make([]Change, 0, len(changes))
	for index := len(changes) - 1; index >= 0; index-- {
		reversed = append(reversed, changes[index])
	}
	return reversed
}

func copyChanges(changes []Change) []Change {
	if changes == nil {
		return nil
	}
	copied := make([]Change, len(changes))
	copy(copied, changes)
	return copied
}
