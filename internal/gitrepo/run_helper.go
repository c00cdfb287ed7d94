package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoport/internal/console"
	"github.com/temirov/repoport/internal/history"
	"github.com/temirov/repoport/internal/treediff"
	"github.com/temirov/repoport/internal/workflow"
)

const (
	scratchDirectoryPatternConstant        = "repoport-migrate-*"
	scratchCurrentDirectoryNameConstant    = "current"
	scratchIncomingDirectoryNameConstant   = "incoming"
	scratchWorktreeDirectoryNameConstant   = "materialized"
	scratchStripComponentCountConstant     = 2
	gitMetadataDirectoryNameConstant       = ".git"
	originRemoteNameConstant               = "origin"
	originURLLabelNameConstant             = "RepoOrigin-Url"
	labelTrailerTemplateConstant           = "%s%s: %s\n"
	trailerBlockSeparatorConstant          = "\n"
	scratchCreationErrorTemplateConstant   = "preparing scratch directories failed: %w"
	treeCopyErrorTemplateConstant          = "copying %s into %s failed: %w"
	dryRunSummaryTemplateConstant          = "Dry run: change %s would modify the destination (%d diff bytes)"
	migrationRecordedTemplateConstant      = "Recorded destination change %s"
	dirtyWorktreeWarningMessageConstant    = "Destination worktree carries local modifications that would be absorbed into the migration"
	dirtyWorktreePromptConstant            = "Continue and absorb the local modifications into the next destination change?"
	dirtyWorktreeRejectedTemplateConstant  = "Migration of %s rejected: destination worktree carries local modifications"
	helperLoggerFieldReferenceConstant     = "reference"
	helperLoggerFieldDestinationConstant   = "destination"
	runHelperConfigErrorTemplateConstant   = "invalid run helper configuration: %s"
	originPathRequiredMessageConstant      = "origin repository path must be provided"
	destinationPathRequiredMessageConstant = "destination repository path must be provided"
	requestedReferenceDefaultConstant      = "HEAD"
)

// RunHelperConfiguration carries construction inputs for GitRunHelper.
type RunHelperConfiguration struct {
	Executor           CommandExecutor
	Logger             *zap.Logger
	Console            console.Console
	OriginPath         string
	DestinationPath    string
	RequestedReference string
	OriginLabelName    string
	DefaultAuthor      history.Identity
	ExcludedPaths      []string
	BaselineOverride   string
	DryRun             bool
}

// GitRunHelper supplies migration runs with origin history, reference
// resolution, and a destination writer backed by two local Git repositories.
type GitRunHelper struct {
	executor          CommandExecutor
	logger            *zap.Logger
	console           console.Console
	originPath        string
	destinationPath   string
	resolvedReference string
	originLabelName   string
	defaultAuthor     history.Identity
	excludedPaths     []string
	baselineOverride  string
	dryRun            bool
	originReader      *LogReader
	destinationReader *LogReader
	repositoryManager *RepositoryManager
	differenceEngine  *treediff.Engine
}

// NewGitRunHelper constructs a GitRunHelper, resolving the requested origin
// reference eagerly so every strategy sees the same snapshot of the origin.
func NewGitRunHelper(executionContext context.Context, configuration RunHelperConfiguration) (*GitRunHelper, error) {
	if configuration.Executor == nil {
		return nil, fmt.Errorf(runHelperConfigErrorTemplateConstant, executorRequiredMessageConstant)
	}
	if len(strings.TrimSpace(configuration.OriginPath)) == 0 {
		return nil, fmt.Errorf(runHelperConfigErrorTemplateConstant, originPathRequiredMessageConstant)
	}
	if len(strings.TrimSpace(configuration.DestinationPath)) == 0 {
		return nil, fmt.Errorf(runHelperConfigErrorTemplateConstant, destinationPathRequiredMessageConstant)
	}
	if configuration.Logger == nil {
		configuration.Logger = zap.NewNop()
	}

	originReader, originReaderError := NewLogReader(configuration.Executor, configuration.OriginPath)
	if originReaderError != nil {
		return nil, originReaderError
	}
	destinationReader, destinationReaderError := NewLogReader(configuration.Executor, configuration.DestinationPath)
	if destinationReaderError != nil {
		return nil, destinationReaderError
	}
	repositoryManager, managerError := NewRepositoryManager(configuration.Executor)
	if managerError != nil {
		return nil, managerError
	}
	differenceEngine, engineError := treediff.NewEngine(configuration.Executor, configuration.Logger)
	if engineError != nil {
		return nil, engineError
	}

	requestedReference := strings.TrimSpace(configuration.RequestedReference)
	if len(requestedReference) == 0 {
		requestedReference = requestedReferenceDefaultConstant
	}
	resolvedReference, resolveError := repositoryManager.ResolveReference(executionContext, configuration.OriginPath, requestedReference)
	if resolveError != nil {
		return nil, resolveError
	}

	return &GitRunHelper{
		executor:          configuration.Executor,
		logger:            configuration.Logger,
		console:           configuration.Console,
		originPath:        configuration.OriginPath,
		destinationPath:   configuration.DestinationPath,
		resolvedReference: resolvedReference,
		originLabelName:   configuration.OriginLabelName,
		defaultAuthor:     configuration.DefaultAuthor,
		excludedPaths:     configuration.ExcludedPaths,
		baselineOverride:  configuration.BaselineOverride,
		dryRun:            configuration.DryRun,
		originReader:      originReader,
		destinationReader: destinationReader,
		repositoryManager: repositoryManager,
		differenceEngine:  differenceEngine,
	}, nil
}

// ResolvedReference returns the origin reference selected for this run.
func (helper *GitRunHelper) ResolvedReference() string {
	return helper.resolvedReference
}

// Reader exposes origin change history.
func (helper *GitRunHelper) Reader() history.Reader {
	return helper.originReader
}

// DefaultAuthor returns the authorship recorded when origin authorship is not
// preserved.
func (helper *GitRunHelper) DefaultAuthor() history.Identity {
	return helper.defaultAuthor
}

// DestinationOriginLabelName returns the label under which destination
// changes record the origin reference they imported.
func (helper *GitRunHelper) DestinationOriginLabelName() string {
	return helper.originLabelName
}

// Console returns the interactive console for the run.
func (helper *GitRunHelper) Console() console.Console {
	return helper.console
}

// Logger returns the structured logger for the run.
func (helper *GitRunHelper) Logger() *zap.Logger {
	return helper.logger
}

// BaselineOverride returns the operator-supplied destination baseline.
func (helper *GitRunHelper) BaselineOverride() string {
	return helper.baselineOverride
}

// ChangesSinceLastImport lists origin changes newer than the last migrated
// reference, most recent first.
//
// The last migrated reference is discovered from the destination history: the
// most recent destination change carrying the origin label names the origin
// reference it imported. A destination without any labeled change yields the
// full origin history up to the resolved reference.
func (helper *GitRunHelper) ChangesSinceLastImport(executionContext context.Context) ([]history.Change, error) {
	lastImportedReference := ""
	visitError := helper.destinationReader.VisitChanges(
		executionContext,
		requestedReferenceDefaultConstant,
		func(visitedChange history.Change) history.VisitDecision {
			labelValue, labelFound := visitedChange.Label(helper.originLabelName)
			if !labelFound {
				return history.VisitContinue
			}
			lastImportedReference = labelValue
			return history.VisitTerminate
		},
	)
	if visitError != nil {
		return nil, visitError
	}
	return helper.originReader.ChangesBetween(executionContext, lastImportedReference, helper.resolvedReference)
}

// Migrate writes a single migration into the destination.
//
// The origin state at the requested reference is materialized next to a copy
// of the current destination state, the difference between the two sibling
// trees is computed, and that difference is replayed onto the destination
// worktree before the result is recorded with the supplied metadata. A
// migration that produces no difference fails with EmptyChangeError and
// leaves the destination untouched. A destination carrying local
// modifications must be confirmed by the operator before the first write, and
// the recorded result asks the caller to confirm again before the next
// change.
func (helper *GitRunHelper) Migrate(executionContext context.Context, request workflow.MigrationRequest) (workflow.WriterResult, error) {
	worktreeWasDirty, dirtyCheckError := helper.repositoryManager.IsWorktreeDirty(executionContext, helper.destinationPath)
	if dirtyCheckError != nil {
		return workflow.WriterResultOK, dirtyCheckError
	}

	differenceContents, diffError := helper.computeMigrationDifference(executionContext, request.Reference)
	if diffError != nil {
		return workflow.WriterResultOK, diffError
	}
	if len(differenceContents) == 0 {
		return workflow.WriterResultOK, workflow.EmptyChangeError{Reference: request.Reference}
	}

	if helper.dryRun {
		if request.Console != nil {
			request.Console.Info(fmt.Sprintf(dryRunSummaryTemplateConstant, request.Reference, len(differenceContents)))
		}
		return workflow.WriterResultOK, nil
	}

	// A dirty destination must be confirmed before anything is written: the
	// subsequent stage-all sweep would fold local modifications into the
	// migration change under the origin author's identity.
	if worktreeWasDirty {
		promptConsole := request.Console
		if promptConsole == nil {
			promptConsole = helper.console
		}
		if promptConsole != nil {
			promptConsole.Warn(dirtyWorktreeWarningMessageConstant)
			if !promptConsole.PromptConfirmation(dirtyWorktreePromptConstant) {
				return workflow.WriterResultOK, workflow.ChangeRejectedError{
					Reason: fmt.Sprintf(dirtyWorktreeRejectedTemplateConstant, request.Reference),
				}
			}
		}
	}

	patchError := helper.differenceEngine.Patch(
		executionContext,
		helper.destinationPath,
		differenceContents,
		helper.excludedPaths,
		scratchStripComponentCountConstant,
		false,
		false,
	)
	if patchError != nil {
		return workflow.WriterResultOK, patchError
	}

	if stageError := helper.repositoryManager.StageAllChanges(executionContext, helper.destinationPath); stageError != nil {
		return workflow.WriterResultOK, stageError
	}

	commitMessage := helper.composeCommitMessage(executionContext, request)
	recordedReference, commitError := helper.repositoryManager.CommitChanges(
		executionContext,
		helper.destinationPath,
		commitMessage,
		request.Metadata.Author,
	)
	if commitError != nil {
		return workflow.WriterResultOK, commitError
	}

	if request.Console != nil {
		request.Console.Info(fmt.Sprintf(migrationRecordedTemplateConstant, recordedReference))
	}
	helper.logger.Info(
		fmt.Sprintf(migrationRecordedTemplateConstant, recordedReference),
		zap.String(helperLoggerFieldReferenceConstant, request.Reference),
		zap.String(helperLoggerFieldDestinationConstant, helper.destinationPath),
	)

	if worktreeWasDirty {
		return workflow.WriterResultPromptToContinue, nil
	}
	return workflow.WriterResultOK, nil
}

// computeMigrationDifference builds two sibling scratch trees, the current
// destination state and the origin state at the reference, and returns the
// serialized difference between them.
func (helper *GitRunHelper) computeMigrationDifference(executionContext context.Context, reference string) ([]byte, error) {
	scratchParent, scratchError := os.MkdirTemp("", scratchDirectoryPatternConstant)
	if scratchError != nil {
		return nil, fmt.Errorf(scratchCreationErrorTemplateConstant, scratchError)
	}
	defer func() { _ = os.RemoveAll(scratchParent) }()

	currentTreePath := filepath.Join(scratchParent, scratchCurrentDirectoryNameConstant)
	incomingTreePath := filepath.Join(scratchParent, scratchIncomingDirectoryNameConstant)
	materializedPath := filepath.Join(scratchParent, scratchWorktreeDirectoryNameConstant)

	if copyError := copyTreeWithoutGitMetadata(helper.destinationPath, currentTreePath); copyError != nil {
		return nil, copyError
	}

	if materializeError := helper.repositoryManager.MaterializeReference(executionContext, helper.originPath, reference, materializedPath); materializeError != nil {
		return nil, materializeError
	}
	defer func() {
		_ = helper.repositoryManager.RemoveWorktree(executionContext, helper.originPath, materializedPath)
	}()
	if copyError := copyTreeWithoutGitMetadata(materializedPath, incomingTreePath); copyError != nil {
		return nil, copyError
	}

	return helper.differenceEngine.Diff(executionContext, currentTreePath, incomingTreePath, false)
}

// composeCommitMessage appends the origin label trailer, and when the origin
// has a canonical remote, a trailer naming it, so later runs can discover the
// last imported reference from destination history alone.
func (helper *GitRunHelper) composeCommitMessage(executionContext context.Context, request workflow.MigrationRequest) string {
	messageBuilder := strings.Builder{}
	messageBuilder.WriteString(strings.TrimRight(request.Metadata.Message, "\n"))
	messageBuilder.WriteString(trailerBlockSeparatorConstant)
	messageBuilder.WriteString(fmt.Sprintf(labelTrailerTemplateConstant, trailerBlockSeparatorConstant, helper.originLabelName, request.Reference))

	remoteURL, remoteError := helper.repositoryManager.GetRemoteURL(executionContext, helper.originPath, originRemoteNameConstant)
	if remoteError == nil {
		if parsedRemote, parseError := ParseRemoteURL(remoteURL); parseError == nil {
			parsedRemote.Protocol = RemoteProtocolHTTPS
			if canonicalURL, formatError := FormatRemoteURL(parsedRemote); formatError == nil {
				messageBuilder.WriteString(fmt.Sprintf(labelTrailerTemplateConstant, "", originURLLabelNameConstant, canonicalURL))
			}
		}
	}

	return messageBuilder.String()
}

// copyTreeWithoutGitMetadata replicates a directory tree, skipping repository
// metadata so materialized trees diff purely on content.
func copyTreeWithoutGitMetadata(sourceRoot string, targetRoot string) error {
	walkError := filepath.WalkDir(sourceRoot, func(currentPath string, directoryEntry os.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		relativePath, relativeError := filepath.Rel(sourceRoot, currentPath)
		if relativeError != nil {
			return relativeError
		}
		if directoryEntry.IsDir() {
			if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(targetRoot, relativePath), 0o755)
		}
		if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
			// Linked worktrees carry a .git file instead of a directory.
			return nil
		}
		fileContents, readError := os.ReadFile(currentPath)
		if readError != nil {
			return readError
		}
		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			return informationError
		}
		return os.WriteFile(filepath.Join(targetRoot, relativePath), fileContents, entryInformation.Mode().Perm())
	})
	if walkError != nil {
		return fmt.Errorf(treeCopyErrorTemplateConstant, sourceRoot, targetRoot, walkError)
	}
	return nil
}

var _ workflow.RunHelper = (*GitRunHelper)(nil)
var _ history.Reader = (*LogReader)(nil)
