package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repoport/internal/execshell"
	"github.com/temirov/repoport/internal/gitrepo"
	"github.com/temirov/repoport/internal/workflow"
)

const (
	testOriginLabelNameConstant     = "RepoOrigin-RevId"
	testResolvedReferenceConstant   = "ddd444"
	testCommittedReferenceConstant  = "eee555"
	testImportedFileNameConstant    = "file.txt"
	testImportedFileContentConstant = "incoming content\n"
	testMigrationDiffOutputConstant = "diff --git a/current/file.txt b/incoming/file.txt\n"
	testCommitMessageConstant       = "Import of ddd444"
	testOriginRemoteURLConstant     = "git@github.com:temirov/origin.git"
	testCanonicalRemoteURLConstant  = "https://github.com/temirov/origin.git"
)

// migrationExecutor scripts the git invocations a migration run performs and
// creates the scratch worktree directory the run expects to materialize.
type migrationExecutor struct {
	testInstance     *testing.T
	diffOutput       string
	destination      string
	destinationLog   string
	originLog        string
	worktreeStatus   string
	recordedCommands []execshell.CommandDetails
}

func (executor *migrationExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	joinedArguments := strings.Join(details.Arguments, " ")

	switch {
	case strings.HasPrefix(joinedArguments, "rev-parse --verify"):
		return execshell.ExecutionResult{StandardOutput: testResolvedReferenceConstant + "\n"}, nil
	case strings.HasPrefix(joinedArguments, "rev-parse"):
		return execshell.ExecutionResult{StandardOutput: testCommittedReferenceConstant + "\n"}, nil
	case strings.HasPrefix(joinedArguments, "status --porcelain"):
		return execshell.ExecutionResult{StandardOutput: executor.worktreeStatus}, nil
	case strings.HasPrefix(joinedArguments, "worktree add"):
		worktreePath := details.Arguments[3]
		require.NoError(executor.testInstance, os.MkdirAll(worktreePath, 0o755))
		importedFilePath := filepath.Join(worktreePath, testImportedFileNameConstant)
		require.NoError(executor.testInstance, os.WriteFile(importedFilePath, []byte(testImportedFileContentConstant), 0o644))
		return execshell.ExecutionResult{}, nil
	case strings.HasPrefix(joinedArguments, "worktree remove"):
		return execshell.ExecutionResult{}, nil
	case strings.HasPrefix(joinedArguments, "diff"):
		if len(executor.diffOutput) == 0 {
			return execshell.ExecutionResult{}, nil
		}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit},
			Result:  execshell.ExecutionResult{StandardOutput: executor.diffOutput, ExitCode: 1},
		}
	case strings.HasPrefix(joinedArguments, "remote get-url"):
		return execshell.ExecutionResult{StandardOutput: testOriginRemoteURLConstant + "\n"}, nil
	case strings.HasPrefix(joinedArguments, "log"):
		if details.WorkingDirectory == executor.destination {
			return execshell.ExecutionResult{StandardOutput: executor.destinationLog}, nil
		}
		return execshell.ExecutionResult{StandardOutput: executor.originLog}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *migrationExecutor) commandsWithPrefix(prefix string) []execshell.CommandDetails {
	matched := []execshell.CommandDetails{}
	for _, recordedCommand := range executor.recordedCommands {
		if strings.HasPrefix(strings.Join(recordedCommand.Arguments, " "), prefix) {
			matched = append(matched, recordedCommand)
		}
	}
	return matched
}

func newMigrationHelper(testInstance *testing.T, executor *migrationExecutor, dryRun bool) *gitrepo.GitRunHelper {
	originPath := testInstance.TempDir()
	destinationPath := testInstance.TempDir()
	executor.destination = destinationPath
	require.NoError(testInstance, os.WriteFile(filepath.Join(destinationPath, testImportedFileNameConstant), []byte("current content\n"), 0o644))

	runHelper, helperError := gitrepo.NewGitRunHelper(context.Background(), gitrepo.RunHelperConfiguration{
		Executor:        executor,
		Logger:          zap.NewNop(),
		OriginPath:      originPath,
		DestinationPath: destinationPath,
		OriginLabelName: testOriginLabelNameConstant,
		ExcludedPaths:   []string{"*.tmp"},
		DryRun:          dryRun,
	})
	require.NoError(testInstance, helperError)
	return runHelper
}

func TestGitRunHelperResolvesRequestedReference(testInstance *testing.T) {
	executor := &migrationExecutor{testInstance: testInstance}
	runHelper := newMigrationHelper(testInstance, executor, false)

	require.Equal(testInstance, testResolvedReferenceConstant, runHelper.ResolvedReference())
	require.Equal(testInstance, testOriginLabelNameConstant, runHelper.DestinationOriginLabelName())

	resolveCommands := executor.commandsWithPrefix("rev-parse --verify")
	require.Len(testInstance, resolveCommands, 1)
	require.Equal(testInstance, "HEAD", resolveCommands[0].Arguments[2])
}

func TestGitRunHelperChangesSinceLastImportUsesDestinationLabel(testInstance *testing.T) {
	executor := &migrationExecutor{testInstance: testInstance}
	executor.destinationLog = logRecord("dest999", "Imported earlier\n\n"+testOriginLabelNameConstant+": "+testOldestReferenceConstant)
	executor.originLog = logRecord(testNewestReferenceConstant, testUnlabeledMessageConstant)
	runHelper := newMigrationHelper(testInstance, executor, false)

	pendingChanges, listError := runHelper.ChangesSinceLastImport(context.Background())
	require.NoError(testInstance, listError)
	require.Len(testInstance, pendingChanges, 1)
	require.Equal(testInstance, testNewestReferenceConstant, pendingChanges[0].Reference())

	originLogCommands := executor.commandsWithPrefix("log")
	require.NotEmpty(testInstance, originLogCommands)
	lastLogCommand := originLogCommands[len(originLogCommands)-1]
	expectedRange := testOldestReferenceConstant + ".." + testResolvedReferenceConstant
	require.Equal(testInstance, expectedRange, lastLogCommand.Arguments[len(lastLogCommand.Arguments)-1])
}

func TestGitRunHelperMigrateReportsEmptyChange(testInstance *testing.T) {
	executor := &migrationExecutor{testInstance: testInstance}
	runHelper := newMigrationHelper(testInstance, executor, false)

	_, migrationError := runHelper.Migrate(context.Background(), workflow.MigrationRequest{
		Reference: testResolvedReferenceConstant,
		Metadata:  workflow.Metadata{Message: testCommitMessageConstant},
	})

	require.Error(testInstance, migrationError)
	var emptyChange workflow.EmptyChangeError
	require.ErrorAs(testInstance, migrationError, &emptyChange)
	require.Equal(testInstance, testResolvedReferenceConstant, emptyChange.Reference)
	require.Empty(testInstance, executor.commandsWithPrefix("apply"))
	require.Empty(testInstance, executor.commandsWithPrefix("commit"))
}

func TestGitRunHelperMigrateAppliesAndCommits(testInstance *testing.T) {
	executor := &migrationExecutor{testInstance: testInstance, diffOutput: testMigrationDiffOutputConstant}
	runHelper := newMigrationHelper(testInstance, executor, false)

	writerResult, migrationError := runHelper.Migrate(context.Background(), workflow.MigrationRequest{
		Reference: testResolvedReferenceConstant,
		Metadata: workflow.Metadata{
			Message: testCommitMessageConstant,
			Author:  runHelper.DefaultAuthor(),
		},
	})

	require.NoError(testInstance, migrationError)
	require.Equal(testInstance, workflow.WriterResultOK, writerResult)

	applyCommands := executor.commandsWithPrefix("apply")
	require.Len(testInstance, applyCommands, 1)
	require.Contains(testInstance, applyCommands[0].Arguments, "-p2")
	require.Contains(testInstance, applyCommands[0].Arguments, "--exclude=*.tmp")
	require.Equal(testInstance, []byte(testMigrationDiffOutputConstant), applyCommands[0].StandardInput)

	require.Len(testInstance, executor.commandsWithPrefix("add -A"), 1)

	commitCommands := executor.commandsWithPrefix("commit")
	require.Len(testInstance, commitCommands, 1)
	commitMessage := commitCommands[0].Arguments[len(commitCommands[0].Arguments)-1]
	require.Contains(testInstance, commitMessage, testCommitMessageConstant)
	require.Contains(testInstance, commitMessage, testOriginLabelNameConstant+": "+testResolvedReferenceConstant)
	require.Contains(testInstance, commitMessage, "RepoOrigin-Url: "+testCanonicalRemoteURLConstant)

	require.Len(testInstance, executor.commandsWithPrefix("worktree remove"), 1)
}

func TestGitRunHelperMigrateDryRunSkipsDestinationWrites(testInstance *testing.T) {
	executor := &migrationExecutor{testInstance: testInstance, diffOutput: testMigrationDiffOutputConstant}
	runHelper := newMigrationHelper(testInstance, executor, true)

	writerResult, migrationError := runHelper.Migrate(context.Background(), workflow.MigrationRequest{
		Reference: testResolvedReferenceConstant,
		Metadata:  workflow.Metadata{Message: testCommitMessageConstant},
	})

	require.NoError(testInstance, migrationError)
	require.Equal(testInstance, workflow.WriterResultOK, writerResult)
	require.Empty(testInstance, executor.commandsWithPrefix("apply"))
	require.Empty(testInstance, executor.commandsWithPrefix("commit"))
}

// promptingConsole records console traffic and answers confirmation prompts
// from a scripted sequence.
type promptingConsole struct {
	warnMessages    []string
	infoMessages    []string
	prompts         []string
	promptResponses []bool
}

func (consoleInstance *promptingConsole) Info(message string) {
	consoleInstance.infoMessages = append(consoleInstance.infoMessages, message)
}

func (consoleInstance *promptingConsole) Warn(message string) {
	consoleInstance.warnMessages = append(consoleInstance.warnMessages, message)
}

func (consoleInstance *promptingConsole) Error(message string) {}

func (consoleInstance *promptingConsole) PromptConfirmation(prompt string) bool {
	consoleInstance.prompts = append(consoleInstance.prompts, prompt)
	if len(consoleInstance.promptResponses) == 0 {
		return true
	}
	response := consoleInstance.promptResponses[0]
	consoleInstance.promptResponses = consoleInstance.promptResponses[1:]
	return response
}

func TestGitRunHelperMigrateDirtyWorktreeDeclinedWritesNothing(testInstance *testing.T) {
	executor := &migrationExecutor{
		testInstance:   testInstance,
		diffOutput:     testMigrationDiffOutputConstant,
		worktreeStatus: " M local.txt\n",
	}
	runHelper := newMigrationHelper(testInstance, executor, false)
	operatorConsole := &promptingConsole{promptResponses: []bool{false}}

	_, migrationError := runHelper.Migrate(context.Background(), workflow.MigrationRequest{
		Reference: testResolvedReferenceConstant,
		Metadata:  workflow.Metadata{Message: testCommitMessageConstant},
		Console:   operatorConsole,
	})

	require.Error(testInstance, migrationError)
	var rejection workflow.ChangeRejectedError
	require.ErrorAs(testInstance, migrationError, &rejection)
	require.Contains(testInstance, rejection.Reason, testResolvedReferenceConstant)

	// The declined migration never touches the destination, so pre-existing
	// local modifications cannot leak into a recorded change.
	require.Empty(testInstance, executor.commandsWithPrefix("apply"))
	require.Empty(testInstance, executor.commandsWithPrefix("add -A"))
	require.Empty(testInstance, executor.commandsWithPrefix("commit"))

	require.Len(testInstance, operatorConsole.warnMessages, 1)
	require.Len(testInstance, operatorConsole.prompts, 1)
}

func TestGitRunHelperMigrateDirtyWorktreeConfirmedPromptsBeforeNextChange(testInstance *testing.T) {
	executor := &migrationExecutor{
		testInstance:   testInstance,
		diffOutput:     testMigrationDiffOutputConstant,
		worktreeStatus: "?? local.txt\n",
	}
	runHelper := newMigrationHelper(testInstance, executor, false)
	operatorConsole := &promptingConsole{promptResponses: []bool{true}}

	writerResult, migrationError := runHelper.Migrate(context.Background(), workflow.MigrationRequest{
		Reference: testResolvedReferenceConstant,
		Metadata:  workflow.Metadata{Message: testCommitMessageConstant},
		Console:   operatorConsole,
	})

	require.NoError(testInstance, migrationError)
	require.Equal(testInstance, workflow.WriterResultPromptToContinue, writerResult)
	require.Len(testInstance, operatorConsole.warnMessages, 1)
	require.Len(testInstance, operatorConsole.prompts, 1)
	require.Len(testInstance, executor.commandsWithPrefix("apply"), 1)
	require.Len(testInstance, executor.commandsWithPrefix("commit"), 1)
}
