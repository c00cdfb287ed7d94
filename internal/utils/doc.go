// Package utils exposes reusable helpers consumed across the repoport CLI.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging, plus small
// context and writer helpers shared by commands.
package utils
