// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and keeps git invocations testable by accepting
// any CommandRunner implementation.
package execshell
