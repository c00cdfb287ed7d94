package history

import "context"

// VisitDecision controls whether a history traversal proceeds to the next change.
type VisitDecision int

// Traversal decisions returned by a ChangeVisitor.
const (
	VisitContinue VisitDecision = iota
	VisitTerminate
)

// ChangeVisitor receives each traversed change and decides whether to continue.
type ChangeVisitor func(change Change) VisitDecision

// Reader walks a change history without mutating the underlying store.
type Reader interface {
	// VisitChanges walks history backward from the supplied reference, most
	// recent first, invoking the visitor until history is exhausted or the
	// visitor returns VisitTerminate.
	VisitChanges(executionContext context.Context, reference string, visitor ChangeVisitor) error
	// Change loads the single change identified by the supplied reference.
	Change(executionContext context.Context, reference string) (Change, error)
}
