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
	headReferenceNameConstant            = "HEAD"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitRevParseVerifyFlagConstant        = "--verify"
	gitStatusSubcommandConstant          = "status"
	gitStatusPorcelainFlagConstant       = "--porcelain"
	gitAddSubcommandConstant             = "add"
	gitAddAllFlagConstant                = "-A"
	gitCommitSubcommandConstant          = "commit"
	gitCommitMessageFlagConstant         = "-m"
	gitCommitAuthorFlagTemplateConstant  = "--author=%s"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitWorktreeSubcommandConstant        = "worktree"
	gitWorktreeAddSubcommandConstant     = "add"
	gitWorktreeRemoveSubcommandConstant  = "remove"
	gitWorktreeDetachFlagConstant        = "--detach"
	gitWorktreeForceFlagConstant         = "--force"
	resolveReferenceErrorTemplate        = "resolving %s in %s failed: %w"
	worktreeStatusErrorTemplateConstant  = "reading worktree status of %s failed: %w"
	stageChangesErrorTemplateConstant    = "staging changes in %s failed: %w"
	commitChangesErrorTemplateConstant   = "recording change in %s failed: %w"
	remoteURLLookupErrorTemplateConstant = "reading remote %s of %s failed: %w"
	worktreeCreateErrorTemplateConstant  = "materializing %s of %s failed: %w"
	worktreeRemoveErrorTemplateConstant  = "removing scratch worktree %s failed: %w"
)

// RepositoryManager performs structured operations on a local Git repository.
type RepositoryManager struct {
	executor CommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the executor.
func NewRepositoryManager(executor CommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}
	return &RepositoryManager{executor: executor}, nil
}

// ResolveReference converts a symbolic reference into a change identifier.
func (manager *RepositoryManager) ResolveReference(executionContext context.Context, repositoryPath string, reference string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitRevParseVerifyFlagConstant, reference},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(resolveReferenceErrorTemplate, reference, repositoryPath, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsWorktreeDirty reports whether the repository worktree carries staged or
// unstaged modifications.
func (manager *RepositoryManager) IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, fmt.Errorf(worktreeStatusErrorTemplateConstant, repositoryPath, executionError)
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// StageAllChanges stages every worktree modification including removals.
func (manager *RepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, gitAddAllFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(stageChangesErrorTemplateConstant, repositoryPath, executionError)
	}
	return nil
}

// CommitChanges records the staged changes with the supplied message and
// author, returning the identifier of the new change.
func (manager *RepositoryManager) CommitChanges(executionContext context.Context, repositoryPath string, message string, author history.Identity) (string, error) {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitCommitSubcommandConstant,
			fmt.Sprintf(gitCommitAuthorFlagTemplateConstant, author.String()),
			gitCommitMessageFlagConstant,
			message,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(commitChangesErrorTemplateConstant, repositoryPath, executionError)
	}
	return manager.ResolveReference(executionContext, repositoryPath, headReferenceNameConstant)
}

// GetRemoteURL returns the URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(remoteURLLookupErrorTemplateConstant, remoteName, repositoryPath, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// MaterializeReference checks the files of a reference out into a detached
// scratch worktree at the target path. Callers must release the worktree
// through RemoveWorktree when finished.
func (manager *RepositoryManager) MaterializeReference(executionContext context.Context, repositoryPath string, reference string, targetPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitWorktreeSubcommandConstant,
			gitWorktreeAddSubcommandConstant,
			gitWorktreeDetachFlagConstant,
			targetPath,
			reference,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(worktreeCreateErrorTemplateConstant, reference, repositoryPath, executionError)
	}
	return nil
}

// RemoveWorktree releases a scratch worktree created by MaterializeReference.
func (manager *RepositoryManager) RemoveWorktree(executionContext context.Context, repositoryPath string, worktreePath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitWorktreeSubcommandConstant,
			gitWorktreeRemoveSubcommandConstant,
			gitWorktreeForceFlagConstant,
			worktreePath,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(worktreeRemoveErrorTemplateConstant, worktreePath, executionError)
	}
	return nil
}
