// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with lifecycle logging via ShellExecutor, exposes
// OSCommandRunner for default process execution, and defines the abstractions
// repoport uses to drive git in a testable manner.
package execshell
