package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitDiffSubcommandNameConstant     = "diff"
	gitApplySubcommandNameConstant    = "apply"
	gitLogSubcommandNameConstant      = "log"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitStatusSubcommandNameConstant   = "status"
	gitCommitSubcommandNameConstant   = "commit"
	gitReverseApplyFlagConstant       = "-R"
	gitMessageFlagConstant            = "-m"
)

const (
	gitDiffStartTemplateConstant             = "Comparing trees in %s"
	gitDiffSuccessTemplateConstant           = "Compared trees in %s"
	gitDiffFailureTemplateConstant           = "Failed to compare trees in %s (exit code %d%s)"
	gitDiffExecutionFailureTemplateConstant  = "Unable to compare trees in %s: %s"
	gitApplyStartTemplateConstant            = "Applying patch to %s"
	gitApplyReverseStartTemplateConstant     = "Reversing patch in %s"
	gitApplySuccessTemplateConstant          = "Applied patch to %s"
	gitApplyReverseSuccessTemplateConstant   = "Reversed patch in %s"
	gitApplyFailureTemplateConstant          = "Failed to apply patch to %s (exit code %d%s)"
	gitApplyExecutionFailureTemplateConstant = "Unable to apply patch to %s: %s"
	gitLogStartTemplateConstant              = "Reading change history in %s"
	gitLogSuccessTemplateConstant            = "Read change history in %s"
	gitLogFailureTemplateConstant            = "Failed to read change history in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant   = "Unable to read change history in %s: %s"
	gitRevisionStartTemplateConstant         = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant       = "%s in %s resolved to %s"
	gitRevisionEmptySuccessTemplateConstant  = "%s in %s did not resolve to a revision"
	gitRevisionFailureTemplateConstant       = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureConstant      = "Unable to resolve %s in %s: %s"
	gitStatusStartTemplateConstant           = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant         = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant         = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureConstant        = "Unable to review working tree status in %s: %s"
	gitCommitStartTemplateConstant           = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant         = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant         = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureConstant        = "Unable to create commit in %s with message %q: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitDiffSubcommandNameConstant:
		return formatter.describeSimpleGitMessage(command, result, failure, stage,
			gitDiffStartTemplateConstant, gitDiffSuccessTemplateConstant, gitDiffFailureTemplateConstant, gitDiffExecutionFailureTemplateConstant)
	case gitApplySubcommandNameConstant:
		return formatter.describeGitApplyMessage(command, result, failure, stage)
	case gitLogSubcommandNameConstant:
		return formatter.describeSimpleGitMessage(command, result, failure, stage,
			gitLogStartTemplateConstant, gitLogSuccessTemplateConstant, gitLogFailureTemplateConstant, gitLogExecutionFailureTemplateConstant)
	case gitStatusSubcommandNameConstant:
		return formatter.describeSimpleGitMessage(command, result, failure, stage,
			gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureConstant)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeSimpleGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(executionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitApplyMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	reverseApply := containsArgument(command.Details.Arguments, gitReverseApplyFlagConstant)
	switch stage {
	case messageStageStart:
		if reverseApply {
			return fmt.Sprintf(gitApplyReverseStartTemplateConstant, workingDirectory)
		}
		return fmt.Sprintf(gitApplyStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		if reverseApply {
			return fmt.Sprintf(gitApplyReverseSuccessTemplateConstant, workingDirectory)
		}
		return fmt.Sprintf(gitApplySuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitApplyFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitApplyExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	reference := formatter.resolveRevisionReference(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 {
			return fmt.Sprintf(gitRevisionEmptySuccessTemplateConstant, reference, workingDirectory)
		}
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, trimmed)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureConstant, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) resolveRevisionReference(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmedArgument := strings.TrimSpace(arguments[index])
		if len(trimmedArgument) == 0 {
			continue
		}
		if strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		return trimmedArgument
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
