package execshell

// CommandEventObserver receives lifecycle notifications for the git
// invocations a migration run performs. Observers see every invocation,
// including the ones whose non-zero exit the caller later recovers from.
type CommandEventObserver interface {
	// CommandStarted notifies observers that a git invocation is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the captured result once the process exits.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports invocations that never produced an exit code.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
