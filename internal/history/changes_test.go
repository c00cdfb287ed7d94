package history_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoport/internal/history"
)

const (
	testFirstReferenceConstant  = "aaa111"
	testSecondReferenceConstant = "bbb222"
	testAuthorNameConstant      = "Test Author"
	testAuthorEmailConstant     = "author@example.com"
	testChangeMessageConstant   = "Fix the frobnicator\n\nLonger explanation."
)

func testChange(reference string) history.Change {
	return history.NewChange(
		reference,
		testChangeMessageConstant,
		history.Identity{Name: testAuthorNameConstant, Email: testAuthorEmailConstant},
		nil,
	)
}

func TestLazyChangesComputesOnce(testInstance *testing.T) {
	loaderCallCount := 0
	lazyChanges := history.NewLazyChanges(context.Background(), zap.NewNop(), func(context.Context) ([]history.Change, error) {
		loaderCallCount++
		return []history.Change{testChange(testFirstReferenceConstant), testChange(testSecondReferenceConstant)}, nil
	})

	firstAccess := lazyChanges.Current()
	secondAccess := lazyChanges.Current()

	require.Equal(testInstance, 1, loaderCallCount)
	require.Len(testInstance, firstAccess, 2)
	require.Equal(testInstance, firstAccess, secondAccess)
	require.Empty(testInstance, lazyChanges.Migrated())
}

func TestLazyChangesConcurrentAccessComputesOnce(testInstance *testing.T) {
	loaderCallCount := 0
	lazyChanges := history.NewLazyChanges(context.Background(), zap.NewNop(), func(context.Context) ([]history.Change, error) {
		loaderCallCount++
		return []history.Change{testChange(testFirstReferenceConstant)}, nil
	})

	var accessGroup sync.WaitGroup
	for accessIndex := 0; accessIndex < 8; accessIndex++ {
		accessGroup.Add(1)
		go func() {
			defer accessGroup.Done()
			require.Len(testInstance, lazyChanges.Current(), 1)
		}()
	}
	accessGroup.Wait()

	require.Equal(testInstance, 1, loaderCallCount)
}

func TestLazyChangesLoaderFailureDegradesToEmpty(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.WarnLevel)
	loaderCallCount := 0
	lazyChanges := history.NewLazyChanges(context.Background(), zap.New(observerCore), func(context.Context) ([]history.Change, error) {
		loaderCallCount++
		return nil, errors.New("reference not found")
	})

	require.Empty(testInstance, lazyChanges.Current())
	require.Empty(testInstance, lazyChanges.Current())

	require.Equal(testInstance, 1, loaderCallCount)
	require.Equal(testInstance, 1, observedLogs.Len())
}

func TestComputedChangesCopiesSequences(testInstance *testing.T) {
	currentChanges := []history.Change{testChange(testFirstReferenceConstant)}
	migratedChanges := []history.Change{testChange(testSecondReferenceConstant)}

	computedChanges := history.NewComputedChanges(currentChanges, migratedChanges)
	currentChanges[0] = testChange(testSecondReferenceConstant)

	require.Equal(testInstance, testFirstReferenceConstant, computedChanges.Current()[0].Reference())
	require.Equal(testInstance, testSecondReferenceConstant, computedChanges.Migrated()[0].Reference())

	returnedCurrent := computedChanges.Current()
	returnedCurrent[0] = testChange(testSecondReferenceConstant)
	require.Equal(testInstance, testFirstReferenceConstant, computedChanges.Current()[0].Reference())
}

func TestReverseChangesReversesWithoutMutatingInput(testInstance *testing.T) {
	orderedChanges := []history.Change{testChange(testFirstReferenceConstant), testChange(testSecondReferenceConstant)}

	reversedChanges := history.ReverseChanges(orderedChanges)

	require.Equal(testInstance, testSecondReferenceConstant, reversedChanges[0].Reference())
	require.Equal(testInstance, testFirstReferenceConstant, reversedChanges[1].Reference())
	require.Equal(testInstance, testFirstReferenceConstant, orderedChanges[0].Reference())
}
