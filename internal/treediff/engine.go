package treediff

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repoport/internal/execshell"
)

const (
	gitDiffSubcommandConstant            = "diff"
	gitApplySubcommandConstant           = "apply"
	gitNoIndexFlagConstant               = "--no-index"
	gitNoColorFlagConstant               = "--no-color"
	gitPositionalSeparatorConstant       = "--"
	gitStripPrefixFlagTemplateConstant   = "-p%d"
	gitExcludePathFlagTemplateConstant   = "--exclude=%s"
	gitReverseFlagConstant               = "-R"
	gitVerboseFlagConstant               = "-v"
	differencesFoundExitCodeConstant     = 1
	notSiblingsMessageTemplateConstant   = "Paths '%s' and '%s' must be sibling directories"
	negativeStripMessageConstant         = "stripSlashes must be >= 0"
	executorMissingMessageConstant       = "command executor not configured"
	diffProducedLogMessageConstant       = "Computed tree difference"
	patchAppliedLogMessageConstant       = "Applied tree difference"
	patchSkippedEmptyLogMessageConstant  = "Empty difference; target left unchanged"
	logFieldLeftDirectoryConstant        = "left_directory"
	logFieldRightDirectoryConstant       = "right_directory"
	logFieldTargetDirectoryConstant      = "target_directory"
	logFieldDiffSizeBytesConstant        = "diff_size_bytes"
	logFieldExcludedPathCountConstant    = "excluded_path_count"
	logFieldReverseApplicationConstant   = "reverse"
	patchConflictErrorTemplateConstant   = "patch does not apply to %s: %s"
	diffExecutionErrorTemplateConstant   = "tree diff failed: %w"
	patchExecutionErrorTemplateConstant  = "tree patch failed: %w"
	invalidArgumentErrorPrefixConstant   = "invalid argument"
	invalidArgumentErrorTemplateConstant = "%s: %s"
)

// InvalidArgumentError reports a programming-contract violation detected
// before any command execution.
type InvalidArgumentError struct {
	Message string
}

// Error describes the violated contract.
func (argumentError InvalidArgumentError) Error() string {
	return fmt.Sprintf(invalidArgumentErrorTemplateConstant, invalidArgumentErrorPrefixConstant, argumentError.Message)
}

// PatchConflictError reports a difference that no longer applies cleanly to
// the target tree. Details carry the underlying tool output naming the
// offending file and hunk location.
type PatchConflictError struct {
	TargetDirectory string
	Details         string
}

// Error describes the conflict.
func (conflictError PatchConflictError) Error() string {
	return fmt.Sprintf(patchConflictErrorTemplateConstant, conflictError.TargetDirectory, conflictError.Details)
}

// CommandExecutor abstracts the external git invocation used by the engine.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Engine computes and applies serialized differences between directory trees.
type Engine struct {
	executor CommandExecutor
	logger   *zap.Logger
}

var errExecutorMissing = errors.New(executorMissingMessageConstant)

// NewEngine constructs an Engine around the provided executor.
func NewEngine(executor CommandExecutor, logger *zap.Logger) (*Engine, error) {
	if executor == nil {
		return nil, errExecutorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{executor: executor, logger: logger}, nil
}

// Diff produces the unified difference between two sibling directories.
//
// Identical trees yield an empty byte sequence. The positional paths always
// follow an explicit argument separator so a directory whose name begins with
// a hyphen is treated as data rather than an option.
func (engine *Engine) Diff(executionContext context.Context, leftDirectory string, rightDirectory string, verbose bool) ([]byte, error) {
	cleanedLeft := filepath.Clean(leftDirectory)
	cleanedRight := filepath.Clean(rightDirectory)
	if filepath.Dir(cleanedLeft) != filepath.Dir(cleanedRight) {
		return nil, InvalidArgumentError{
			Message: fmt.Sprintf(notSiblingsMessageTemplateConstant, filepath.Base(cleanedLeft), filepath.Base(cleanedRight)),
		}
	}

	sharedParent := filepath.Dir(cleanedLeft)
	diffArguments := []string{
		gitDiffSubcommandConstant,
		gitNoColorFlagConstant,
		gitNoIndexFlagConstant,
		gitPositionalSeparatorConstant,
		filepath.Base(cleanedLeft),
		filepath.Base(cleanedRight),
	}

	executionResult, executionError := engine.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        diffArguments,
		WorkingDirectory: sharedParent,
	})
	if executionError != nil {
		// git diff exits with code 1 when the trees differ; the difference
		// bytes travel on standard output either way.
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == differencesFoundExitCodeConstant {
			executionResult = commandFailure.Result
		} else {
			return nil, fmt.Errorf(diffExecutionErrorTemplateConstant, executionError)
		}
	}

	diffContents := []byte(executionResult.StandardOutput)
	if verbose {
		engine.logger.Debug(
			diffProducedLogMessageConstant,
			zap.String(logFieldLeftDirectoryConstant, cleanedLeft),
			zap.String(logFieldRightDirectoryConstant, cleanedRight),
			zap.Int(logFieldDiffSizeBytesConstant, len(diffContents)),
		)
	}
	return diffContents, nil
}

// Patch replays a serialized difference onto the target directory.
//
// An empty difference is a no-op regardless of the remaining parameters.
// Paths matching an excluded glob are left untouched even when the difference
// contains hunks for them, and reverse application exactly undoes a prior
// non-reversed apply of the same difference.
func (engine *Engine) Patch(executionContext context.Context, targetDirectory string, diffContents []byte, excludedPaths []string, stripSlashes int, verbose bool, reverse bool) error {
	if stripSlashes < 0 {
		return InvalidArgumentError{Message: negativeStripMessageConstant}
	}
	if len(diffContents) == 0 {
		engine.logger.Debug(
			patchSkippedEmptyLogMessageConstant,
			zap.String(logFieldTargetDirectoryConstant, targetDirectory),
		)
		return nil
	}

	applyArguments := []string{
		gitApplySubcommandConstant,
		fmt.Sprintf(gitStripPrefixFlagTemplateConstant, stripSlashes),
	}
	for _, excludedPath := range excludedPaths {
		applyArguments = append(applyArguments, fmt.Sprintf(gitExcludePathFlagTemplateConstant, excludedPath))
	}
	if reverse {
		applyArguments = append(applyArguments, gitReverseFlagConstant)
	}
	if verbose {
		applyArguments = append(applyArguments, gitVerboseFlagConstant)
	}

	_, executionError := engine.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        applyArguments,
		WorkingDirectory: targetDirectory,
		StandardInput:    diffContents,
	})
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return PatchConflictError{
				TargetDirectory: targetDirectory,
				Details:         commandFailure.Result.StandardError,
			}
		}
		return fmt.Errorf(patchExecutionErrorTemplateConstant, executionError)
	}

	if verbose {
		engine.logger.Debug(
			patchAppliedLogMessageConstant,
			zap.String(logFieldTargetDirectoryConstant, targetDirectory),
			zap.Int(logFieldDiffSizeBytesConstant, len(diffContents)),
			zap.Int(logFieldExcludedPathCountConstant, len(excludedPaths)),
			zap.Bool(logFieldReverseApplicationConstant, reverse),
		)
	}
	return nil
}
