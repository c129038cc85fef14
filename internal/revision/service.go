// Package revision switches the manifest working tree to a configured git
// revision and exposes the palette version string.
package revision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/kelm/internal/execshell"
	"github.com/temirov/kelm/internal/palette"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	versionNotConfiguredMessageConstant      = "version info not found in config under [git]"
	gitCheckoutFailureTemplateConstant       = "git checkout failed: %v"
	gitCheckoutSubcommandConstant            = "checkout"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
	dryRunCheckoutMessageConstant            = "checkout skipped in dry run"
	logFieldHashSumConstant                  = "hash_sum"
	logFieldRootFolderConstant               = "root_folder"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrVersionNotConfigured indicates the palette carries no [git] version.
var ErrVersionNotConfigured = errors.New(versionNotConfiguredMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	GitExecutor GitExecutor
	Logger      *zap.Logger
}

// Options configure a checkout.
type Options struct {
	RootFolder string
	HashSum    string
	Version    string
	DryRun     bool
}

// Result captures the outcome of a checkout.
type Result struct {
	Version    string
	CheckedOut bool
}

// Service checks out palette revisions.
type Service struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{executor: dependencies.GitExecutor, logger: logger}, nil
}

// Checkout switches RootFolder to HashSum when one is configured and returns the version to print.
func (service *Service) Checkout(executionContext context.Context, options Options) (Result, error) {
	result := Result{Version: palette.TrimValue(options.Version)}

	hashSum := palette.TrimValue(options.HashSum)
	if len(hashSum) == 0 {
		return result, nil
	}

	if options.DryRun {
		service.logger.Info(
			dryRunCheckoutMessageConstant,
			zap.String(logFieldHashSumConstant, hashSum),
			zap.String(logFieldRootFolderConstant, options.RootFolder),
		)
		return result, nil
	}

	_, checkoutError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCheckoutSubcommandConstant, hashSum},
		WorkingDirectory:     options.RootFolder,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue},
	})
	if checkoutError != nil {
		return Result{}, CheckoutError{HashSum: hashSum, Cause: checkoutError}
	}

	result.CheckedOut = true
	return result, nil
}

// ResolveVersion returns the configured version for the standalone version query.
func ResolveVersion(configuration palette.Configuration) (string, error) {
	version, found := palette.Version(configuration)
	if !found {
		return "", ErrVersionNotConfigured
	}
	return version, nil
}

// CheckoutError reports a failed git checkout with the captured error output.
type CheckoutError struct {
	HashSum string
	Cause   error
}

// Error renders the captured standard error of git, or the cause when git could not run.
func (checkoutError CheckoutError) Error() string {
	var commandFailure execshell.CommandFailedError
	if errors.As(checkoutError.Cause, &commandFailure) {
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, strings.TrimSpace(commandFailure.Result.StandardError))
	}
	return fmt.Sprintf(gitCheckoutFailureTemplateConstant, checkoutError.Cause)
}

// Unwrap exposes the executor failure.
func (checkoutError CheckoutError) Unwrap() error {
	return checkoutError.Cause
}
