package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/repoport/internal/console"
	"github.com/temirov/repoport/internal/history"
)

const (
	changeProgressPrefixTemplateConstant   = "Change %d of %d (%s): "
	emptyChangeSkippedMessageConstant      = "Change produced no difference in the destination; skipping"
	continueImportingPromptConstant        = "Continue importing next change?"
	iterativeAbortedReasonTemplateConstant = "Iterative migration aborted by user after: %s"
	migrationStartingMessageConstant       = "Migrating change"
	migrationCompletedMessageConstant      = "Change migrated"
)

// runIterative imports each pending origin change individually, oldest first,
// so the destination history mirrors the origin history change for change.
//
// A change that produces no difference in the destination is reported and
// skipped. When the destination requests confirmation after a change, the
// operator may decline and halt the run before the next change is written.
func runIterative(executionContext context.Context, helper RunHelper) error {
	pendingChanges, loadError := helper.ChangesSinceLastImport(executionContext)
	if loadError != nil {
		return loadError
	}
	if len(pendingChanges) == 0 {
		return EmptyChangeError{Reference: helper.ResolvedReference()}
	}

	orderedChanges := history.ReverseChanges(pendingChanges)
	migratedChanges := make([]history.Change, 0, len(orderedChanges))

	for changeIndex, pendingChange := range orderedChanges {
		progressPrefix := fmt.Sprintf(
			changeProgressPrefixTemplateConstant,
			changeIndex+1,
			len(orderedChanges),
			pendingChange.Reference(),
		)
		progressConsole := console.NewProgressPrefixConsole(progressPrefix, helper.Console())
		progressConsole.Info(migrationStartingMessageConstant)

		migrationRequest := MigrationRequest{
			Reference: pendingChange.Reference(),
			Metadata: Metadata{
				Message: pendingChange.Message(),
				Author:  pendingChange.Author(),
			},
			Changes: history.NewComputedChanges([]history.Change{pendingChange}, migratedChanges),
			Console: progressConsole,
		}

		writerResult, migrationError := helper.Migrate(executionContext, migrationRequest)
		if migrationError != nil {
			var emptyChange EmptyChangeError
			if errors.As(migrationError, &emptyChange) {
				progressConsole.Warn(emptyChangeSkippedMessageConstant)
				continue
			}
			return migrationError
		}

		// Migrated changes are viewed most recent first by later requests.
		migratedChanges = append([]history.Change{pendingChange}, migratedChanges...)
		progressConsole.Info(migrationCompletedMessageConstant)

		remainingChanges := changeIndex < len(orderedChanges)-1
		if writerResult == WriterResultPromptToContinue && remainingChanges {
			if !progressConsole.PromptConfirmation(continueImportingPromptConstant) {
				abortReason := fmt.Sprintf(iterativeAbortedReasonTemplateConstant, progressPrefix+pendingChange.FirstMessageLine())
				helper.Console().Warn(abortReason)
				return ChangeRejectedError{Reason: abortReason}
			}
		}
	}

	return nil
}
