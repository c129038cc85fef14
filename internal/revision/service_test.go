package revision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/kelm/internal/execshell"
	"github.com/temirov/kelm/internal/palette"
)

type stubGitExecutor struct {
	recorded []execshell.CommandDetails
	err      error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if executor.err != nil {
		return execshell.ExecutionResult{}, executor.err
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewServiceRequiresExecutor(t *testing.T) {
	_, err := NewService(ServiceDependencies{})
	require.ErrorIs(t, err, ErrGitExecutorNotConfigured)
}

func TestCheckoutRunsGitInRootFolder(t *testing.T) {
	executor := &stubGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RootFolder: "/srv/manifests", HashSum: `"4f2a9c1"`, Version: "'1.2.3'"})
	require.NoError(t, checkoutError)
	require.Equal(t, Result{Version: "1.2.3", CheckedOut: true}, result)

	require.Len(t, executor.recorded, 1)
	require.Equal(t, []string{"checkout", "4f2a9c1"}, executor.recorded[0].Arguments)
	require.Equal(t, "/srv/manifests", executor.recorded[0].WorkingDirectory)
	require.Equal(t, "0", executor.recorded[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestCheckoutWithoutHashSumOnlyReturnsVersion(t *testing.T) {
	executor := &stubGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RootFolder: ".", Version: "2.0.0"})
	require.NoError(t, checkoutError)
	require.Equal(t, Result{Version: "2.0.0"}, result)
	require.Empty(t, executor.recorded)
}

func TestCheckoutDryRunSkipsGit(t *testing.T) {
	executor := &stubGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RootFolder: ".", HashSum: "abc", DryRun: true})
	require.NoError(t, checkoutError)
	require.False(t, result.CheckedOut)
	require.Empty(t, executor.recorded)
}

func TestCheckoutSurfacesCapturedStandardError(t *testing.T) {
	commandFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "error: pathspec 'abc' did not match any file(s) known to git\n"},
	}
	service, err := NewService(ServiceDependencies{GitExecutor: &stubGitExecutor{err: commandFailure}})
	require.NoError(t, err)

	_, checkoutError := service.Checkout(context.Background(), Options{RootFolder: ".", HashSum: "abc"})
	require.EqualError(t, checkoutError, "git checkout failed: error: pathspec 'abc' did not match any file(s) known to git")

	var failure execshell.CommandFailedError
	require.ErrorAs(t, checkoutError, &failure)
}

func TestCheckoutSurfacesExecutionFailure(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	service, err := NewService(ServiceDependencies{GitExecutor: &stubGitExecutor{err: cause}})
	require.NoError(t, err)

	_, checkoutError := service.Checkout(context.Background(), Options{RootFolder: ".", HashSum: "abc"})
	require.ErrorIs(t, checkoutError, cause)
	require.EqualError(t, checkoutError, "git checkout failed: executable file not found in $PATH")
}

func TestResolveVersion(t *testing.T) {
	configuration, parseError := palette.Parse([]byte("[git]\nversion = \"1.2.3\"\n"))
	require.NoError(t, parseError)

	version, versionError := ResolveVersion(configuration)
	require.NoError(t, versionError)
	require.Equal(t, "1.2.3", version)

	emptyConfiguration, parseError := palette.Parse([]byte("[conf]\nroot_folder = .\n"))
	require.NoError(t, parseError)

	_, versionError = ResolveVersion(emptyConfiguration)
	require.ErrorIs(t, versionError, ErrVersionNotConfigured)
}
