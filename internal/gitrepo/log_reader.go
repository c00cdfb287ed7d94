package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/repoport/internal/execshell"
	"github.com/temirov/repoport/internal/history"
)

const (
	gitLogSubcommandConstant           = "log"
	gitLogFormatFlagConstant           = "--pretty=format:%H%x1f%an%x1f%ae%x1f%B%x1e"
	gitLogSingleChangeFlagConstant     = "-1"
	logRecordSeparatorConstant         = "\x1e"
	logFieldSeparatorConstant          = "\x1f"
	logRecordFieldCountConstant        = 4
	labelTrailerSeparatorConstant      = ": "
	malformedLogRecordTemplateConstant = "malformed log record for %s: expected %d fields, found %d"
	changeNotFoundTemplateConstant     = "no change found for reference %s"
	logExecutionErrorTemplateConstant  = "reading history of %s failed: %w"
	referenceRangeTemplateConstant     = "%s..%s"
	executorRequiredMessageConstant    = "command executor not configured"
	repositoryPathRequiredMessage      = "repository path must be provided"
)

// CommandExecutor abstracts the external git invocation used by this package.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// LogReader reads change history from a local Git repository.
type LogReader struct {
	executor       CommandExecutor
	repositoryPath string
}

// NewLogReader constructs a LogReader bound to the repository at the path.
func NewLogReader(executor CommandExecutor, repositoryPath string) (*LogReader, error) {
	if executor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(repositoryPathRequiredMessage)
	}
	return &LogReader{executor: executor, repositoryPath: trimmedPath}, nil
}

// Change returns the single change identified by the reference.
func (reader *LogReader) Change(executionContext context.Context, reference string) (history.Change, error) {
	loggedChanges, logError := reader.readLog(executionContext, []string{gitLogSingleChangeFlagConstant, reference})
	if logError != nil {
		return history.Change{}, logError
	}
	if len(loggedChanges) == 0 {
		return history.Change{}, fmt.Errorf(changeNotFoundTemplateConstant, reference)
	}
	return loggedChanges[0], nil
}

// VisitChanges walks history starting at the reference, most recent first,
// calling the visitor for each change until it terminates the walk or history
// is exhausted.
func (reader *LogReader) VisitChanges(executionContext context.Context, reference string, visitor history.ChangeVisitor) error {
	loggedChanges, logError := reader.readLog(executionContext, []string{reference})
	if logError != nil {
		return logError
	}
	for _, loggedChange := range loggedChanges {
		if visitor(loggedChange) == history.VisitTerminate {
			return nil
		}
	}
	return nil
}

// ChangesBetween lists changes reachable from the upper reference but not the
// lower one, most recent first. An empty lower reference lists the full
// history up to the upper reference.
func (reader *LogReader) ChangesBetween(executionContext context.Context, lowerReference string, upperReference string) ([]history.Change, error) {
	rangeSelector := upperReference
	if len(strings.TrimSpace(lowerReference)) > 0 {
		rangeSelector = fmt.Sprintf(referenceRangeTemplateConstant, lowerReference, upperReference)
	}
	return reader.readLog(executionContext, []string{rangeSelector})
}

func (reader *LogReader) readLog(executionContext context.Context, selectorArguments []string) ([]history.Change, error) {
	logArguments := append([]string{gitLogSubcommandConstant, gitLogFormatFlagConstant}, selectorArguments...)
	executionResult, executionError := reader.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        logArguments,
		WorkingDirectory: reader.repositoryPath,
	})
	if executionError != nil {
		return nil, fmt.Errorf(logExecutionErrorTemplateConstant, reader.repositoryPath, executionError)
	}
	return parseLogRecords(executionResult.StandardOutput)
}

func parseLogRecords(logOutput string) ([]history.Change, error) {
	parsedChanges := make([]history.Change, 0)
	for _, rawRecord := range strings.Split(logOutput, logRecordSeparatorConstant) {
		trimmedRecord := strings.TrimLeft(rawRecord, "\n")
		if len(strings.TrimSpace(trimmedRecord)) == 0 {
			continue
		}
		recordFields := strings.SplitN(trimmedRecord, logFieldSeparatorConstant, logRecordFieldCountConstant)
		if len(recordFields) != logRecordFieldCountConstant {
			return nil, fmt.Errorf(malformedLogRecordTemplateConstant, recordFields[0], logRecordFieldCountConstant, len(recordFields))
		}
		changeMessage := strings.TrimRight(recordFields[3], "\n")
		parsedChanges = append(parsedChanges, history.NewChange(
			recordFields[0],
			changeMessage,
			history.Identity{Name: recordFields[1], Email: recordFields[2]},
			parseLabelTrailers(changeMessage),
		))
	}
	return parsedChanges, nil
}

// parseLabelTrailers extracts "Key: value" trailer lines from the final
// paragraph of a change message. Keys may contain letters, digits, hyphens,
// and underscores; anything else ends the trailer block.
func parseLabelTrailers(changeMessage string) map[string]string {
	messageLines := strings.Split(changeMessage, "\n")
	parsedLabels := map[string]string{}
	for lineIndex := len(messageLines) - 1; lineIndex >= 0; lineIndex-- {
		currentLine := messageLines[lineIndex]
		if len(strings.TrimSpace(currentLine)) == 0 {
			if len(parsedLabels) > 0 {
				break
			}
			continue
		}
		labelName, labelValue, isTrailer := splitLabelTrailer(currentLine)
		if !isTrailer {
			break
		}
		if _, alreadySeen := parsedLabels[labelName]; !alreadySeen {
			parsedLabels[labelName] = labelValue
		}
	}
	if len(parsedLabels) == 0 {
		return nil
	}
	return parsedLabels
}

func splitLabelTrailer(line string) (string, string, bool) {
	separatorIndex := strings.Index(line, labelTrailerSeparatorConstant)
	if separatorIndex <= 0 {
		return "", "", false
	}
	candidateName := line[:separatorIndex]
	for _, nameCharacter := range candidateName {
		isWordCharacter := nameCharacter == '-' || nameCharacter == '_' ||
			(nameCharacter >= 'a' && nameCharacter <= 'z') ||
			(nameCharacter >= 'A' && nameCharacter <= 'Z') ||
			(nameCharacter >= '0' && nameCharacter <= '9')
		if !isWordCharacter {
			return "", "", false
		}
	}
	return candidateName, strings.TrimSpace(line[separatorIndex+len(labelTrailerSeparatorConstant):]), true
}
