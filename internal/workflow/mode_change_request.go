package workflow

import (
	"context"
	"fmt"

	"github.com/temirov/repoport/internal/history"
)

const (
	baselineFlagNameConstant               = "--baseline"
	missingBaselineMessageTemplateConstant = "cannot find a destination baseline labeled %s in the origin history; use the %s flag to supply one"
)

// runChangeRequest imports the resolved origin change against a destination
// baseline so the result can be reviewed before landing.
//
// The baseline comes from the operator override when present; otherwise the
// origin history is walked from the resolved reference toward older changes
// and the first change carrying the destination origin label supplies it.
func runChangeRequest(executionContext context.Context, helper RunHelper) error {
	destinationBaseline, baselineError := resolveBaseline(executionContext, helper)
	if baselineError != nil {
		return baselineError
	}

	resolvedReference := helper.ResolvedReference()
	requestedChange, changeError := helper.Reader().Change(executionContext, resolvedReference)
	if changeError != nil {
		return changeError
	}

	migrationRequest := MigrationRequest{
		Reference: resolvedReference,
		Metadata: Metadata{
			Message: requestedChange.Message(),
			Author:  requestedChange.Author(),
		},
		Changes:  history.NewComputedChanges([]history.Change{requestedChange}, nil),
		Baseline: destinationBaseline,
		Console:  helper.Console(),
	}

	_, migrationError := helper.Migrate(executionContext, migrationRequest)
	return migrationError
}

func resolveBaseline(executionContext context.Context, helper RunHelper) (string, error) {
	if baselineOverride := helper.BaselineOverride(); len(baselineOverride) > 0 {
		return baselineOverride, nil
	}

	originLabelName := helper.DestinationOriginLabelName()
	discoveredBaseline := ""
	visitError := helper.Reader().VisitChanges(
		executionContext,
		helper.ResolvedReference(),
		func(visitedChange history.Change) history.VisitDecision {
			labelValue, labelFound := visitedChange.Label(originLabelName)
			if !labelFound {
				return history.VisitContinue
			}
			discoveredBaseline = labelValue
			return history.VisitTerminate
		},
	)
	if visitError != nil {
		return "", visitError
	}
	if len(discoveredBaseline) == 0 {
		return "", ValidationError{
			Message: fmt.Sprintf(missingBaselineMessageTemplateConstant, originLabelName, baselineFlagNameConstant),
		}
	}
	return discoveredBaseline, nil
}
