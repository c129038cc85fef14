package images

import (
	"errors"
	"io/fs"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/temirov/kelm/internal/filesystem"
	"github.com/temirov/kelm/internal/palette"
	"github.com/temirov/kelm/internal/summary"
)

const (
	fileNotFoundTemplateConstant     = "File not found: %s"
	readFailureTemplateConstant      = "Cannot read '%s': %v"
	writeFailureTemplateConstant     = "Cannot write '%s': %v"
	noMatchesTemplateConstant        = "No 'image:' lines replaced in %s"
	replacedTemplateConstant         = "Replaced %d occurrence(s) in %s"
	dryRunReplacedTemplateConstant   = "Would replace %d occurrence(s) in %s"
	manifestProcessedMessageConstant = "manifest processed"
	manifestSkippedMessageConstant   = "manifest skipped"
	logFieldManifestPathConstant     = "manifest_path"
	logFieldImageReferenceConstant   = "image_reference"
	logFieldReplacementCountConstant = "replacement_count"
	logFieldDryRunConstant           = "dry_run"
	logFieldStatusConstant           = "status"
	invalidEncodingMessageConstant   = "content is not valid UTF-8"
)

// ErrInvalidEncoding indicates a manifest could not be decoded as UTF-8.
var ErrInvalidEncoding = errors.New(invalidEncodingMessageConstant)

// FileSystem exposes the file operations used while rewriting manifests.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// Dependencies enumerates collaborators of the Replacer.
type Dependencies struct {
	FileSystem FileSystem
	Logger     *zap.Logger
}

// Options tune a replacement run.
type Options struct {
	RootFolder string
	DryRun     bool
}

// Replacer rewrites image declarations across manifests.
type Replacer struct {
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewReplacer builds a Replacer, falling back to the OS filesystem and a no-op logger.
func NewReplacer(dependencies Dependencies) *Replacer {
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replacer{fileSystem: fileSystem, logger: logger}
}

// Replace processes every assignment in mapping order and returns one entry per manifest.
// Per-manifest failures are recorded in the returned entries and never stop the batch.
func (replacer *Replacer) Replace(options Options, mapping palette.Mapping) []summary.Entry {
	entries := make([]summary.Entry, 0, len(mapping))
	for _, assignment := range mapping {
		manifestPath := filepath.Join(options.RootFolder, assignment.Manifest)
		entry := replacer.replaceManifest(manifestPath, assignment.Image, options.DryRun)
		entries = append(entries, entry)
	}
	return entries
}

func (replacer *Replacer) replaceManifest(manifestPath string, imageReference string, dryRun bool) summary.Entry {
	fileInfo, statError := replacer.fileSystem.Stat(manifestPath)
	if statError != nil || !fileInfo.Mode().IsRegular() {
		return replacer.skipped(manifestPath, summary.NewEntry(summary.StatusWarn, fileNotFoundTemplateConstant, manifestPath))
	}

	contents, readError := replacer.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		return replacer.skipped(manifestPath, summary.NewEntry(summary.StatusError, readFailureTemplateConstant, manifestPath, readError))
	}
	if !utf8.Valid(contents) {
		return replacer.skipped(manifestPath, summary.NewEntry(summary.StatusError, readFailureTemplateConstant, manifestPath, ErrInvalidEncoding))
	}

	updatedContents, replacementCount := ReplaceImageReferences(string(contents), imageReference)
	if replacementCount == 0 {
		return replacer.skipped(manifestPath, summary.NewEntry(summary.StatusInfo, noMatchesTemplateConstant, manifestPath))
	}

	processedFields := []zap.Field{
		zap.String(logFieldManifestPathConstant, manifestPath),
		zap.String(logFieldImageReferenceConstant, imageReference),
		zap.Int(logFieldReplacementCountConstant, replacementCount),
		zap.Bool(logFieldDryRunConstant, dryRun),
	}

	if dryRun {
		replacer.logger.Info(manifestProcessedMessageConstant, processedFields...)
		return summary.NewEntry(summary.StatusOK, dryRunReplacedTemplateConstant, replacementCount, manifestPath)
	}

	if writeError := replacer.fileSystem.WriteFile(manifestPath, []byte(updatedContents), fileInfo.Mode().Perm()); writeError != nil {
		return replacer.skipped(manifestPath, summary.NewEntry(summary.StatusError, writeFailureTemplateConstant, manifestPath, writeError))
	}

	replacer.logger.Info(manifestProcessedMessageConstant, processedFields...)
	return summary.NewEntry(summary.StatusOK, replacedTemplateConstant, replacementCount, manifestPath)
}

func (replacer *Replacer) skipped(manifestPath string, entry summary.Entry) summary.Entry {
	replacer.logger.Debug(
		manifestSkippedMessageConstant,
		zap.String(logFieldManifestPathConstant, manifestPath),
		zap.String(logFieldStatusConstant, string(entry.Status)),
	)
	return entry
}
