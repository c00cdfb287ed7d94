package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	gitToolNameConstant                        = "git"
	loggerNotConfiguredMessageConstant         = "logger not configured"
	commandRunnerNotConfiguredMessageConstant  = "command runner not configured"
	commandFailedErrorTemplateConstant         = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant      = "%s could not be executed: %v"
	standardErrorDetailTemplateConstant        = ": %s"
	commandStartedLogMessageConstant           = "Shell command started"
	commandCompletedLogMessageConstant         = "Shell command completed"
	commandExecutionFailedLogMessageConstant   = "Shell command execution failed"
	logFieldCommandNameConstant                = "command_name"
	logFieldCommandArgumentsConstant           = "command_arguments"
	logFieldCommandWorkingDirectoryConstant    = "working_directory"
	logFieldCommandExitCodeConstant            = "exit_code"
	logFieldCommandStandardErrorConstant       = "standard_error"
	commandArgumentsDisplaySeparatorConstant   = " "
	humanReadableCommandLabelPartsJoinConstant = " "
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandGit CommandName = CommandName(gitToolNameConstant)
)

// CommandDetails describes a tool invocation. StandardInput feeds the
// process, which is how serialized tree differences reach git apply.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
	StandardInput    []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Exported sentinel errors for executor construction.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command completing with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including trailing standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorDetail := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that never produced an exit code.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, describeCommand(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsDisplaySeparatorConstant))
	}
	return strings.Join(commandParts, humanReadableCommandLabelPartsJoinConstant)
}
