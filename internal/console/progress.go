package console

// ProgressPrefixConsole decorates another console so every message carries a
// fixed prefix, keeping interleaved output from sequential migrations
// attributable to the change that produced it.
type ProgressPrefixConsole struct {
	prefix   string
	delegate Console
}

// NewProgressPrefixConsole wraps the delegate console with the supplied prefix.
func NewProgressPrefixConsole(prefix string, delegate Console) *ProgressPrefixConsole {
	return &ProgressPrefixConsole{prefix: prefix, delegate: delegate}
}

// Info reports routine progress with the configured prefix.
func (consoleInstance *ProgressPrefixConsole) Info(message string) {
	consoleInstance.delegate.Info(consoleInstance.prefix + message)
}

// Warn reports a recoverable condition with the configured prefix.
func (consoleInstance *ProgressPrefixConsole) Warn(message string) {
	consoleInstance.delegate.Warn(consoleInstance.prefix + message)
}

// Error reports a failure condition with the configured prefix.
func (consoleInstance *ProgressPrefixConsole) Error(message string) {
	consoleInstance.delegate.Error(consoleInstance.prefix + message)
}

// PromptConfirmation delegates to the wrapped console without prefixing so
// prompts remain easy to spot.
func (consoleInstance *ProgressPrefixConsole) PromptConfirmation(prompt string) bool {
	return consoleInstance.delegate.PromptConfirmation(prompt)
}
