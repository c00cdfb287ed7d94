package workflow

import (
	"context"
	"fmt"

	"github.com/temirov/repoport/internal/history"
)

const (
	squashImportMessageTemplateConstant = "Import of %s\n\nProject import generated by repoport.\n"
)

// runSquash imports every pending origin change as a single destination
// change carrying a synthetic message and the configured default author.
//
// The change history handed to the destination is computed lazily so runs
// that never inspect it skip the origin walk entirely. A history computation
// failure degrades to an empty sequence rather than failing the import.
func runSquash(executionContext context.Context, helper RunHelper) error {
	lazyChanges := history.NewLazyChanges(
		executionContext,
		helper.Logger(),
		func(loaderContext context.Context) ([]history.Change, error) {
			pendingChanges, loadError := helper.ChangesSinceLastImport(loaderContext)
			if loadError != nil {
				return nil, loadError
			}
			return history.ReverseChanges(pendingChanges), nil
		},
	)

	resolvedReference := helper.ResolvedReference()
	migrationRequest := MigrationRequest{
		Reference: resolvedReference,
		Metadata: Metadata{
			Message: fmt.Sprintf(squashImportMessageTemplateConstant, resolvedReference),
			Author:  helper.DefaultAuthor(),
		},
		Changes: lazyChanges,
		Console: helper.Console(),
	}

	_, migrationError := helper.Migrate(executionContext, migrationRequest)
	return migrationError
}
