package execshell

import (
	"context"

	"go.uber.org/zap"
)

// ShellExecutor coordinates command construction, execution, and lifecycle logging.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
	eventObserver        CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor around the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
		eventObserver:        noopCommandEventObserver{},
	}, nil
}

// SetCommandEventObserver registers an observer receiving command lifecycle notifications.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, logging its lifecycle and translating failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logCommandStarted(command)
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logExecutionFailure(command, runError)
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, executionFailure
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logCommandFailed(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logCommandCompleted(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) logCommandStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
		return
	}
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldCommandWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logCommandCompleted(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
		return
	}
	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldCommandExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logCommandFailed(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageFormatter.BuildFailureMessage(command, result))
		return
	}
	executor.logger.Error(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldCommandExitCodeConstant, result.ExitCode),
		zap.String(logFieldCommandStandardErrorConstant, result.StandardError),
	)
}

func (executor *ShellExecutor) logExecutionFailure(command ShellCommand, failure error) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, failure))
		return
	}
	executor.logger.Error(
		commandExecutionFailedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Error(failure),
	)
}
