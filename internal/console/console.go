package console

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	promptLogMessageTemplateConstant = "%s [y/N]"
	confirmationYesShortConstant     = "y"
	confirmationYesLongConstant      = "yes"
)

// Console is the sink for operator-facing migration output.
type Console interface {
	// Info reports routine progress.
	Info(message string)
	// Warn reports a recoverable condition the operator should see.
	Warn(message string)
	// Error reports a failure condition.
	Error(message string)
	// PromptConfirmation asks the operator a yes/no question and blocks until
	// an answer arrives. A closed or unreadable input is a decline.
	PromptConfirmation(prompt string) bool
}

// ZapConsole renders console output through a zap logger and reads
// confirmation answers from the supplied input stream.
type ZapConsole struct {
	logger      *zap.Logger
	inputReader *bufio.Reader
	promptGuard sync.Mutex
}

// NewZapConsole constructs a console backed by the supplied logger and input stream.
func NewZapConsole(logger *zap.Logger, input io.Reader) *ZapConsole {
	if logger == nil {
		logger = zap.NewNop()
	}
	var inputReader *bufio.Reader
	if input != nil {
		inputReader = bufio.NewReader(input)
	}
	return &ZapConsole{logger: logger, inputReader: inputReader}
}

// Info reports routine progress.
func (consoleInstance *ZapConsole) Info(message string) {
	consoleInstance.logger.Info(message)
}

// Warn reports a recoverable condition.
func (consoleInstance *ZapConsole) Warn(message string) {
	consoleInstance.logger.Warn(message)
}

// Error reports a failure condition.
func (consoleInstance *ZapConsole) Error(message string) {
	consoleInstance.logger.Error(message)
}

// PromptConfirmation asks the operator a yes/no question. Only an explicit
// affirmative answer continues; everything else, including a closed input,
// declines.
func (consoleInstance *ZapConsole) PromptConfirmation(prompt string) bool {
	consoleInstance.promptGuard.Lock()
	defer consoleInstance.promptGuard.Unlock()

	consoleInstance.logger.Sugar().Infof(promptLogMessageTemplateConstant, prompt)

	if consoleInstance.inputReader == nil {
		return false
	}

	answerLine, readError := consoleInstance.inputReader.ReadString('\n')
	if readError != nil && len(strings.TrimSpace(answerLine)) == 0 {
		return false
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	return normalizedAnswer == confirmationYesShortConstant || normalizedAnswer == confirmationYesLongConstant
}
