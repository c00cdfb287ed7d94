package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repoport/internal/console"
	"github.com/temirov/repoport/internal/history"
	"github.com/temirov/repoport/internal/workflow"
)

const (
	testResolvedReferenceConstant  = "ddd444"
	testOriginLabelNameConstant    = "RepoOrigin-RevId"
	testDefaultAuthorNameConstant  = "Importer"
	testDefaultAuthorEmailConstant = "importer@example.com"
	testOldestReferenceConstant    = "aaa111"
	testMiddleReferenceConstant    = "bbb222"
	testNewestReferenceConstant    = "ccc333"
	testBaselineOverrideConstant   = "override-baseline"
	testDiscoveredBaselineConstant = "destination-baseline-x"
	testStaleBaselineConstant      = "destination-baseline-y"
	testChangeMessageConstant      = "Describe the change"
	testChangeAuthorNameConstant   = "Origin Author"
	testChangeAuthorEmailConstant  = "origin@example.com"
)

type recordingConsole struct {
	infoMessages    []string
	warnMessages    []string
	errorMessages   []string
	prompts         []string
	promptResponses []bool
}

func (consoleInstance *recordingConsole) Info(message string) { consoleInstance.infoMessages = append(consoleInstance.infoMessages, message) }
func (consoleInstance *recordingConsole) Warn(message string) { consoleInstance.warnMessages = append(consoleInstance.warnMessages, message) }
func (consoleInstance *recordingConsole) Error(message string) { consoleInstance.errorMessages = append(consoleInstance.errorMessages, message) }

func (consoleInstance *recordingConsole) PromptConfirmation(prompt string) bool {
	consoleInstance.prompts = append(consoleInstance.prompts, prompt)
	if len(consoleInstance.promptResponses) == 0 {
		return true
	}
	response := consoleInstance.promptResponses[0]
	consoleInstance.promptResponses = consoleInstance.promptResponses[1:]
	return response
}

type stubReader struct {
	changesByReference map[string]history.Change
	visitSequence      []history.Change
	changeError        error
}

func (reader *stubReader) Change(executionContext context.Context, reference string) (history.Change, error) {
	if reader.changeError != nil {
		return history.Change{}, reader.changeError
	}
	foundChange, exists := reader.changesByReference[reference]
	if !exists {
		return history.Change{}, fmt.Errorf("no change found for reference %s", reference)
	}
	return foundChange, nil
}

func (reader *stubReader) VisitChanges(executionContext context.Context, reference string, visitor history.ChangeVisitor) error {
	for _, visitedChange := range reader.visitSequence {
		if visitor(visitedChange) == history.VisitTerminate {
			return nil
		}
	}
	return nil
}

type recordedMigration struct {
	request workflow.MigrationRequest
}

type fakeRunHelper struct {
	resolvedReference string
	pendingChanges    []history.Change
	pendingChangesErr error
	reader            *stubReader
	migrations        []recordedMigration
	migrationResults  []workflow.WriterResult
	migrationErrors   []error
	defaultAuthor     history.Identity
	originLabelName   string
	runConsole        console.Console
	baselineOverride  string
}

func (helper *fakeRunHelper) ResolvedReference() string { return helper.resolvedReference }

func (helper *fakeRunHelper) ChangesSinceLastImport(context.Context) ([]history.Change, error) {
	return helper.pendingChanges, helper.pendingChangesErr
}

func (helper *fakeRunHelper) Reader() history.Reader { return helper.reader }

func (helper *fakeRunHelper) Migrate(executionContext context.Context, request workflow.MigrationRequest) (workflow.WriterResult, error) {
	migrationIndex := len(helper.migrations)
	helper.migrations = append(helper.migrations, recordedMigration{request: request})

	var migrationError error
	if migrationIndex < len(helper.migrationErrors) {
		migrationError = helper.migrationErrors[migrationIndex]
	}
	migrationResult := workflow.WriterResultOK
	if migrationIndex < len(helper.migrationResults) {
		migrationResult = helper.migrationResults[migrationIndex]
	}
	return migrationResult, migrationError
}

func (helper *fakeRunHelper) DefaultAuthor() history.Identity { return helper.defaultAuthor }

func (helper *fakeRunHelper) DestinationOriginLabelName() string { return helper.originLabelName }

func (helper *fakeRunHelper) Console() console.Console { return helper.runConsole }

func (helper *fakeRunHelper) Logger() *zap.Logger { return zap.NewNop() }

func (helper *fakeRunHelper) BaselineOverride() string { return helper.baselineOverride }

func originChange(reference string, labels map[string]string) history.Change {
	return history.NewChange(
		reference,
		testChangeMessageConstant,
		history.Identity{Name: testChangeAuthorNameConstant, Email: testChangeAuthorEmailConstant},
		labels,
	)
}

func newFakeRunHelper() *fakeRunHelper {
	return &fakeRunHelper{
		resolvedReference: testResolvedReferenceConstant,
		reader:            &stubReader{changesByReference: map[string]history.Change{}},
		defaultAuthor:     history.Identity{Name: testDefaultAuthorNameConstant, Email: testDefaultAuthorEmailConstant},
		originLabelName:   testOriginLabelNameConstant,
		runConsole:        &recordingConsole{},
	}
}

func TestParseModeAcceptsSupportedNames(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedMode workflow.Mode
		expectError  bool
	}{
		{name: "squash", candidate: "squash", expectedMode: workflow.ModeSquash},
		{name: "iterative_uppercase", candidate: "ITERATIVE", expectedMode: workflow.ModeIterative},
		{name: "change_request_padded", candidate: " change_request ", expectedMode: workflow.ModeChangeRequest},
		{name: "mirror", candidate: "mirror", expectedMode: workflow.ModeMirror},
		{name: "unknown", candidate: "replicate", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedMode, parseError := workflow.ParseMode(testCase.candidate)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				var validationError workflow.ValidationError
				require.ErrorAs(testInstance, parseError, &validationError)
			} else {
				require.NoError(testInstance, parseError)
				require.Equal(testInstance, testCase.expectedMode, parsedMode)
			}
		})
	}
}

func TestSquashMigratesOnceWithSyntheticMetadata(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChanges = []history.Change{
		originChange(testNewestReferenceConstant, nil),
		originChange(testOldestReferenceConstant, nil),
	}

	runError := workflow.ModeSquash.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 1)

	request := helper.migrations[0].request
	require.Equal(testInstance, testResolvedReferenceConstant, request.Reference)
	require.Contains(testInstance, request.Metadata.Message, testResolvedReferenceConstant)
	require.Equal(testInstance, helper.defaultAuthor, request.Metadata.Author)
	require.Empty(testInstance, request.Baseline)

	currentChanges := request.Changes.Current()
	require.Len(testInstance, currentChanges, 2)
	require.Equal(testInstance, testOldestReferenceConstant, currentChanges[0].Reference())
	require.Equal(testInstance, testNewestReferenceConstant, currentChanges[1].Reference())
}

func TestSquashHistoryFailureDegradesToEmptySequence(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChangesErr = errors.New("previous reference missing")

	runError := workflow.ModeSquash.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 1)
	require.Empty(testInstance, helper.migrations[0].request.Changes.Current())
}

func TestIterativeMigratesOldestFirstWithProgressPrefixes(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChanges = []history.Change{
		originChange(testNewestReferenceConstant, nil),
		originChange(testMiddleReferenceConstant, nil),
		originChange(testOldestReferenceConstant, nil),
	}

	runError := workflow.ModeIterative.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 3)

	require.Equal(testInstance, testOldestReferenceConstant, helper.migrations[0].request.Reference)
	require.Equal(testInstance, testMiddleReferenceConstant, helper.migrations[1].request.Reference)
	require.Equal(testInstance, testNewestReferenceConstant, helper.migrations[2].request.Reference)

	lastRequest := helper.migrations[2].request
	require.Equal(testInstance, testChangeAuthorNameConstant, lastRequest.Metadata.Author.Name)

	migratedView := lastRequest.Changes.Migrated()
	require.Len(testInstance, migratedView, 2)
	require.Equal(testInstance, testMiddleReferenceConstant, migratedView[0].Reference())
	require.Equal(testInstance, testOldestReferenceConstant, migratedView[1].Reference())

	recordingOutput := helper.runConsole.(*recordingConsole)
	require.NotEmpty(testInstance, recordingOutput.infoMessages)
	require.Contains(testInstance, recordingOutput.infoMessages[0], fmt.Sprintf("Change 1 of 3 (%s): ", testOldestReferenceConstant))
}

func TestIterativeWithoutPendingChangesFailsAsEmpty(testInstance *testing.T) {
	helper := newFakeRunHelper()

	runError := workflow.ModeIterative.Run(context.Background(), helper)
	require.Error(testInstance, runError)
	var emptyChange workflow.EmptyChangeError
	require.ErrorAs(testInstance, runError, &emptyChange)
	require.Equal(testInstance, testResolvedReferenceConstant, emptyChange.Reference)
}

func TestIterativeSkipsEmptyChangesAndContinues(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChanges = []history.Change{
		originChange(testMiddleReferenceConstant, nil),
		originChange(testOldestReferenceConstant, nil),
	}
	helper.migrationErrors = []error{workflow.EmptyChangeError{Reference: testOldestReferenceConstant}}

	runError := workflow.ModeIterative.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 2)

	recordingOutput := helper.runConsole.(*recordingConsole)
	require.NotEmpty(testInstance, recordingOutput.warnMessages)
	// The skipped change never joins the migrated set of the next request.
	require.Empty(testInstance, helper.migrations[1].request.Changes.Migrated())
}

func TestIterativeDeclinedPromptAbortsRun(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChanges = []history.Change{
		originChange(testNewestReferenceConstant, nil),
		originChange(testMiddleReferenceConstant, nil),
		originChange(testOldestReferenceConstant, nil),
	}
	helper.migrationResults = []workflow.WriterResult{workflow.WriterResultPromptToContinue}
	helper.runConsole = &recordingConsole{promptResponses: []bool{false}}

	runError := workflow.ModeIterative.Run(context.Background(), helper)
	require.Error(testInstance, runError)
	var rejection workflow.ChangeRejectedError
	require.ErrorAs(testInstance, runError, &rejection)
	abortedProgressPrefix := fmt.Sprintf("Change 1 of 3 (%s): ", testOldestReferenceConstant)
	require.Contains(testInstance, rejection.Reason, abortedProgressPrefix)
	require.Len(testInstance, helper.migrations, 1)

	recordingOutput := helper.runConsole.(*recordingConsole)
	require.Equal(testInstance, []string{"Continue importing next change?"}, recordingOutput.prompts)
	require.Len(testInstance, recordingOutput.warnMessages, 1)
	require.Equal(testInstance, rejection.Reason, recordingOutput.warnMessages[0])
}

func TestIterativeFinalChangeNeverPrompts(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.pendingChanges = []history.Change{originChange(testOldestReferenceConstant, nil)}
	helper.migrationResults = []workflow.WriterResult{workflow.WriterResultPromptToContinue}

	runError := workflow.ModeIterative.Run(context.Background(), helper)
	require.NoError(testInstance, runError)

	recordingOutput := helper.runConsole.(*recordingConsole)
	require.Empty(testInstance, recordingOutput.prompts)
}

func TestChangeRequestUsesBaselineOverride(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.baselineOverride = testBaselineOverrideConstant
	helper.reader.changesByReference[testResolvedReferenceConstant] = originChange(testResolvedReferenceConstant, nil)

	runError := workflow.ModeChangeRequest.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 1)

	request := helper.migrations[0].request
	require.Equal(testInstance, testBaselineOverrideConstant, request.Baseline)
	require.Equal(testInstance, testChangeMessageConstant, request.Metadata.Message)
	require.Len(testInstance, request.Changes.Current(), 1)
}

func TestChangeRequestDiscoversBaselineFromFirstLabeledChange(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.reader.changesByReference[testResolvedReferenceConstant] = originChange(testResolvedReferenceConstant, nil)
	helper.reader.visitSequence = []history.Change{
		originChange(testResolvedReferenceConstant, nil),
		originChange(testNewestReferenceConstant, map[string]string{testOriginLabelNameConstant: testDiscoveredBaselineConstant}),
		originChange(testOldestReferenceConstant, map[string]string{testOriginLabelNameConstant: testStaleBaselineConstant}),
	}

	runError := workflow.ModeChangeRequest.Run(context.Background(), helper)
	require.NoError(testInstance, runError)
	require.Len(testInstance, helper.migrations, 1)
	require.Equal(testInstance, testDiscoveredBaselineConstant, helper.migrations[0].request.Baseline)
}

func TestChangeRequestWithoutBaselineFailsValidation(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.reader.changesByReference[testResolvedReferenceConstant] = originChange(testResolvedReferenceConstant, nil)
	helper.reader.visitSequence = []history.Change{originChange(testResolvedReferenceConstant, nil)}

	runError := workflow.ModeChangeRequest.Run(context.Background(), helper)
	require.Error(testInstance, runError)
	var validationError workflow.ValidationError
	require.ErrorAs(testInstance, runError, &validationError)
	require.Contains(testInstance, runError.Error(), testOriginLabelNameConstant)
	require.Contains(testInstance, runError.Error(), "--baseline")
	require.Empty(testInstance, helper.migrations)
}

func TestChangeRequestPropagatesChangeLookupFailure(testInstance *testing.T) {
	helper := newFakeRunHelper()
	helper.baselineOverride = testBaselineOverrideConstant
	helper.reader.changeError = errors.New("object not found")

	runError := workflow.ModeChangeRequest.Run(context.Background(), helper)
	require.Error(testInstance, runError)
	require.Empty(testInstance, helper.migrations)
}

func TestMirrorModeFailsWithDistinctError(testInstance *testing.T) {
	helper := newFakeRunHelper()

	runError := workflow.ModeMirror.Run(context.Background(), helper)
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, workflow.ErrMirrorModeNotImplemented)
	require.Empty(testInstance, helper.migrations)
}
