package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterCheckoutMessages(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"checkout", "4f2a9c1"}, WorkingDirectory: "/srv/manifests"},
	}

	require.Equal(t, "Checking out 4f2a9c1 in /srv/manifests", formatter.BuildStartedMessage(command))
	require.Equal(t, "Checked out 4f2a9c1 in /srv/manifests", formatter.BuildSuccessMessage(command))
	require.Equal(t,
		"Failed to check out 4f2a9c1 in /srv/manifests (exit code 1: error: pathspec did not match)",
		formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "error: pathspec did not match\n"}),
	)
	require.Equal(t,
		"Unable to check out 4f2a9c1 in /srv/manifests: boom",
		formatter.BuildExecutionFailureMessage(command, errors.New("boom")),
	)
}

func TestCommandMessageFormatterGenericMessages(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status", "--porcelain"}}}

	require.Equal(t, "Running git status --porcelain", formatter.BuildStartedMessage(command))
	require.Equal(t, "git status --porcelain failed with exit code 2", formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 2}))
	require.Equal(t, "git status --porcelain failed: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}

func TestCommandMessageFormatterCheckoutWithoutRevision(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"checkout"}}}

	require.Equal(t, "Checking out unknown in current directory", formatter.BuildStartedMessage(command))
}
