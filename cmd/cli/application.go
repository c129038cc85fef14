package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/kelm/internal/execshell"
	"github.com/temirov/kelm/internal/images"
	"github.com/temirov/kelm/internal/palette"
	"github.com/temirov/kelm/internal/revision"
	"github.com/temirov/kelm/internal/summary"
	"github.com/temirov/kelm/internal/utils"
)

const (
	applicationNameConstant             = "kelm"
	applicationShortDescriptionConstant = "Rewrite manifest image references from a palette file"
	applicationLongDescriptionConstant  = "kelm reads a palette file, optionally checks out the git revision it names, and rewrites the image: lines of every manifest listed in its [images] section."
	applicationExampleConstant          = "kelm --config deploy/palette.conf\nkelm -c palette.conf --palletes_version"
	paletteFlagNameConstant             = "config"
	paletteFlagShorthandConstant        = "c"
	paletteFlagUsageConstant            = "Path to the palette file."
	defaultPaletteFileNameConstant      = "palette.conf"
	versionFlagNameConstant             = "palletes_version"
	versionFlagUsageConstant            = "Print the version from the [git] section and exit without touching manifests."
	dryRunFlagNameConstant              = "dry-run"
	dryRunFlagUsageConstant             = "Report the replacements without checking out revisions or writing manifests."
	summaryFormatFlagNameConstant       = "summary-format"
	summaryFormatFlagUsageConstant      = "Summary output format (%s)."
	logLevelFlagNameConstant            = "log-level"
	logLevelFlagUsageConstant           = "Override the configured log level."
	logFormatFlagNameConstant           = "log-format"
	logFormatFlagUsageConstant          = "Override the configured log format (structured or console)."
	commonLogLevelSettingsKeyConstant   = "common.log_level"
	commonLogFormatSettingsKeyConstant  = "common.log_format"
	summaryFormatSettingsKeyConstant    = "summary.format"
	environmentPrefixConstant           = "KELM"
	settingsNameConstant                = "kelm"
	settingsTypeConstant                = "yaml"
	workingDirectorySearchPathConstant  = "."
	settingsLoadErrorTemplateConstant   = "unable to load settings: %w"
	loggerCreationErrorTemplateConstant = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant     = "unable to flush logger: %w"
	settingsInitializedMessageConstant  = "settings initialized"
	paletteLoadedMessageConstant        = "palette loaded"
	replacementCompletedMessageConstant = "replacement completed"
	logFieldLogLevelConstant            = "log_level"
	logFieldLogFormatConstant           = "log_format"
	logFieldSettingsFileConstant        = "settings_file"
	logFieldPaletteFileConstant         = "palette_file"
	logFieldSectionsConstant            = "sections"
	logFieldRootFolderConstant          = "root_folder"
	logFieldManifestCountConstant       = "manifest_count"
	logFieldReplacedCountConstant       = "replaced"
	logFieldWarningCountConstant        = "warnings"
	logFieldInformationCountConstant    = "unchanged"
	logFieldErrorCountConstant          = "errors"
	logFieldDryRunConstant              = "dry_run"
	summaryFormatListSeparatorConstant  = ", "
)

// ApplicationConfiguration describes the application settings resolved by Viper.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration  `mapstructure:"common"`
	Summary ApplicationSummaryConfiguration `mapstructure:"summary"`
}

// ApplicationCommonConfiguration stores logging settings.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationSummaryConfiguration stores summary rendering settings.
type ApplicationSummaryConfiguration struct {
	Format string `mapstructure:"format"`
}

// Application wires the Cobra root command, settings loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	settingsLoader         *utils.SettingsLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	settingsMetadata       utils.LoadedSettings
	summaryFormat          summary.Format
	paletteFilePath        string
	versionRequested       bool
	dryRun                 bool
	summaryFormatFlagValue string
	logLevelFlagValue      string
	logFormatFlagValue     string
	gitExecutor            revision.GitExecutor
	fileSystem             images.FileSystem
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	settingsLoader := utils.NewSettingsLoader(settingsNameConstant, settingsTypeConstant, environmentPrefixConstant, settingsSearchPaths())
	settingsLoader.SetEmbeddedSettings(EmbeddedDefaultSettings())

	application := &Application{
		settingsLoader: settingsLoader,
		loggerFactory:  utils.NewLoggerFactory(),
		logger:         zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Example:       applicationExampleConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runPalette(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	flagSet := cobraCommand.Flags()
	flagSet.StringVarP(&application.paletteFilePath, paletteFlagNameConstant, paletteFlagShorthandConstant, defaultPaletteFileNameConstant, paletteFlagUsageConstant)
	flagSet.BoolVar(&application.versionRequested, versionFlagNameConstant, false, versionFlagUsageConstant)
	flagSet.BoolVar(&application.dryRun, dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	flagSet.StringVar(&application.summaryFormatFlagValue, summaryFormatFlagNameConstant, "", fmt.Sprintf(summaryFormatFlagUsageConstant, strings.Join(summary.Formats(), summaryFormatListSeparatorConstant)))
	flagSet.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	flagSet.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelSettingsKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatSettingsKeyConstant: string(utils.LogFormatConsole),
		summaryFormatSettingsKeyConstant:   string(summary.FormatText),
	}

	loadedSettings, loadError := application.settingsLoader.LoadSettings(defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(settingsLoadErrorTemplateConstant, loadError)
	}
	application.settingsMetadata = loadedSettings

	if flagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if flagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if flagChanged(command, summaryFormatFlagNameConstant) {
		application.configuration.Summary.Format = application.summaryFormatFlagValue
	}

	summaryFormat, formatError := summary.ParseFormat(application.configuration.Summary.Format)
	if formatError != nil {
		return formatError
	}
	application.summaryFormat = summaryFormat

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		zapcore.AddSync(command.ErrOrStderr()),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		settingsInitializedMessageConstant,
		zap.String(logFieldLogLevelConstant, application.configuration.Common.LogLevel),
		zap.String(logFieldLogFormatConstant, application.configuration.Common.LogFormat),
		zap.String(logFieldSettingsFileConstant, application.settingsMetadata.SettingsFileUsed),
	)

	return nil
}

func (application *Application) runPalette(command *cobra.Command) error {
	configuration, loadError := palette.Load(application.paletteFilePath)
	if loadError != nil {
		return loadError
	}

	application.logger.Debug(
		paletteLoadedMessageConstant,
		zap.String(logFieldPaletteFileConstant, application.paletteFilePath),
		zap.Strings(logFieldSectionsConstant, configuration.SectionNames()),
	)

	output := command.OutOrStdout()

	if application.versionRequested {
		version, versionError := revision.ResolveVersion(configuration)
		if versionError != nil {
			return versionError
		}
		fmt.Fprintln(output, version)
		return nil
	}

	rootFolder, rootFolderError := palette.RootFolder(configuration)
	if rootFolderError != nil {
		return rootFolderError
	}

	gitSettings, gitConfigured, gitError := palette.Git(configuration)
	if gitError != nil {
		return gitError
	}
	if gitConfigured {
		version, checkoutError := application.checkoutRevision(command.Context(), rootFolder, gitSettings)
		if checkoutError != nil {
			return checkoutError
		}
		if len(version) > 0 {
			fmt.Fprintln(output, version)
		}
	}

	mapping, mappingError := palette.ImageMapping(configuration)
	if mappingError != nil {
		return mappingError
	}

	replacer := images.NewReplacer(images.Dependencies{FileSystem: application.fileSystem, Logger: application.logger})
	entries := replacer.Replace(images.Options{RootFolder: rootFolder, DryRun: application.dryRun}, mapping)

	counts := summary.Counts(entries)
	application.logger.Info(
		replacementCompletedMessageConstant,
		zap.String(logFieldRootFolderConstant, rootFolder),
		zap.Int(logFieldManifestCountConstant, len(mapping)),
		zap.Int(logFieldReplacedCountConstant, counts[summary.StatusOK]),
		zap.Int(logFieldWarningCountConstant, counts[summary.StatusWarn]),
		zap.Int(logFieldInformationCountConstant, counts[summary.StatusInfo]),
		zap.Int(logFieldErrorCountConstant, counts[summary.StatusError]),
		zap.Bool(logFieldDryRunConstant, application.dryRun),
	)

	return summary.NewReporter(application.summaryFormat).Report(output, entries)
}

func (application *Application) checkoutRevision(executionContext context.Context, rootFolder string, gitSettings palette.GitSettings) (string, error) {
	gitExecutor, executorError := application.resolveGitExecutor()
	if executorError != nil {
		return "", executorError
	}

	service, serviceError := revision.NewService(revision.ServiceDependencies{GitExecutor: gitExecutor, Logger: application.logger})
	if serviceError != nil {
		return "", serviceError
	}

	result, checkoutError := service.Checkout(executionContext, revision.Options{
		RootFolder: rootFolder,
		HashSum:    gitSettings.HashSum,
		Version:    gitSettings.Version,
		DryRun:     application.dryRun,
	})
	if checkoutError != nil {
		return "", checkoutError
	}
	return result.Version, nil
}

func (application *Application) resolveGitExecutor() (revision.GitExecutor, error) {
	if application.gitExecutor != nil {
		return application.gitExecutor, nil
	}
	shellExecutor, creationError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func flagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	for _, flagSet := range []*pflag.FlagSet{command.Flags(), command.PersistentFlags()} {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

func settingsSearchPaths() []string {
	searchPaths := []string{workingDirectorySearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, settingsNameConstant))
	}
	return searchPaths
}
