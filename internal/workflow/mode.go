package workflow

import (
	"context"
	"fmt"
	"strings"
)

const (
	modeSquashNameConstant              = "squash"
	modeIterativeNameConstant           = "iterative"
	modeChangeRequestNameConstant       = "change_request"
	modeMirrorNameConstant              = "mirror"
	unknownModeErrorTemplateConstant    = "unknown migration mode %q (expected one of %s)"
	supportedModeNamesSeparatorConstant = ", "
)

// Mode identifies a migration strategy.
type Mode string

// Supported migration strategies.
const (
	// ModeSquash imports all pending origin changes as a single
	// destination change.
	ModeSquash Mode = Mode(modeSquashNameConstant)
	// ModeIterative imports each pending origin change individually in
	// oldest-first order.
	ModeIterative Mode = Mode(modeIterativeNameConstant)
	// ModeChangeRequest imports a single origin change against an explicit
	// destination baseline for review.
	ModeChangeRequest Mode = Mode(modeChangeRequestNameConstant)
	// ModeMirror synchronizes references wholesale and is not implemented
	// by the change pipeline.
	ModeMirror Mode = Mode(modeMirrorNameConstant)
)

func supportedModeNames() []string {
	return []string{
		modeSquashNameConstant,
		modeIterativeNameConstant,
		modeChangeRequestNameConstant,
		modeMirrorNameConstant,
	}
}

// ParseMode converts a textual strategy name into a Mode.
func ParseMode(candidate string) (Mode, error) {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, supportedName := range supportedModeNames() {
		if normalizedCandidate == supportedName {
			return Mode(supportedName), nil
		}
	}
	return Mode(""), ValidationError{
		Message: fmt.Sprintf(
			unknownModeErrorTemplateConstant,
			candidate,
			strings.Join(supportedModeNames(), supportedModeNamesSeparatorConstant),
		),
	}
}

// Run executes the migration strategy selected by the mode.
func (mode Mode) Run(executionContext context.Context, helper RunHelper) error {
	switch mode {
	case ModeSquash:
		return runSquash(executionContext, helper)
	case ModeIterative:
		return runIterative(executionContext, helper)
	case ModeChangeRequest:
		return runChangeRequest(executionContext, helper)
	case ModeMirror:
		return ErrMirrorModeNotImplemented
	default:
		_, parseError := ParseMode(string(mode))
		return parseError
	}
}
