package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repoport/internal/utils"
)

func TestCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logLevel    utils.LogLevel
		logFormat   utils.LogFormat
		expectError bool
	}{
		{name: "structured_info", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured},
		{name: "console_debug", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatConsole},
		{name: "structured_error", logLevel: utils.LogLevelError, logFormat: utils.LogFormatStructured},
		{name: "unsupported_level", logLevel: utils.LogLevel("verbose"), logFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormat("plain"), expectError: true},
	}

	factory := utils.NewLoggerFactory()

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
			} else {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, logger)
			}
		})
	}
}
