package workflow

import (
	"errors"
	"fmt"
)

const (
	emptyChangeErrorTemplateConstant        = "change %s produced no difference in the destination"
	changeRejectedErrorTemplateConstant     = "change rejected: %s"
	validationErrorTemplateConstant         = "invalid migration: %s"
	mirrorModeNotImplementedMessageConstant = "mirror mode is not implemented for change migrations"
)

// ErrMirrorModeNotImplemented reports selection of the mirror strategy, which
// synchronizes references wholesale and never runs the change pipeline.
var ErrMirrorModeNotImplemented = errors.New(mirrorModeNotImplementedMessageConstant)

// EmptyChangeError reports a migration attempt whose destination write would
// introduce no difference.
type EmptyChangeError struct {
	Reference string
}

// Error describes the empty migration attempt.
func (emptyChange EmptyChangeError) Error() string {
	return fmt.Sprintf(emptyChangeErrorTemplateConstant, emptyChange.Reference)
}

// ChangeRejectedError reports a migration halted by an operator decision.
type ChangeRejectedError struct {
	Reason string
}

// Error describes the rejection.
func (rejection ChangeRejectedError) Error() string {
	return fmt.Sprintf(changeRejectedErrorTemplateConstant, rejection.Reason)
}

// ValidationError reports a migration request that cannot be satisfied as
// configured.
type ValidationError struct {
	Message string
}

// Error describes the configuration problem.
func (validation ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validation.Message)
}
