package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	warningLinePrefixConstant  = "WARNING: "
	errorLinePrefixConstant    = "ERROR: "
	promptLineTemplateConstant = "%s [y/N] "
)

// WriterConsole renders console output directly onto the supplied writers,
// for interactive sessions where structured log framing would get in the way.
type WriterConsole struct {
	outputWriter io.Writer
	errorWriter  io.Writer
	inputReader  *bufio.Reader
	promptGuard  sync.Mutex
}

// NewWriterConsole constructs a console over the supplied output streams.
func NewWriterConsole(outputWriter io.Writer, errorWriter io.Writer, input io.Reader) *WriterConsole {
	if errorWriter == nil {
		errorWriter = outputWriter
	}
	var inputReader *bufio.Reader
	if input != nil {
		inputReader = bufio.NewReader(input)
	}
	return &WriterConsole{
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
		inputReader:  inputReader,
	}
}

// Info reports routine progress.
func (consoleInstance *WriterConsole) Info(message string) {
	fmt.Fprintln(consoleInstance.outputWriter, message)
}

// Warn reports a recoverable condition.
func (consoleInstance *WriterConsole) Warn(message string) {
	fmt.Fprintln(consoleInstance.errorWriter, warningLinePrefixConstant+message)
}

// Error reports a failure condition.
func (consoleInstance *WriterConsole) Error(message string) {
	fmt.Fprintln(consoleInstance.errorWriter, errorLinePrefixConstant+message)
}

// PromptConfirmation asks the operator a yes/no question. Only an explicit
// affirmative answer continues; everything else, including a closed input,
// declines.
func (consoleInstance *WriterConsole) PromptConfirmation(prompt string) bool {
	consoleInstance.promptGuard.Lock()
	defer consoleInstance.promptGuard.Unlock()

	fmt.Fprintf(consoleInstance.outputWriter, promptLineTemplateConstant, prompt)

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
