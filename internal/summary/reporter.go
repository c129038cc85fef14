package summary

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatTextStringConstant           = "text"
	formatYAMLStringConstant           = "yaml"
	unsupportedFormatTemplateConstant  = "unsupported summary format: %s"
	writerNotConfiguredMessageConstant = "summary writer not configured"
	yamlEncodeErrorTemplateConstant    = "failed to encode summary: %w"
	yamlIndentConstant                 = 2
)

// Format selects how summary entries are rendered.
type Format string

// Supported summary formats.
const (
	FormatText Format = Format(formatTextStringConstant)
	FormatYAML Format = Format(formatYAMLStringConstant)
)

// ErrWriterNotConfigured indicates Report was called without an output writer.
var ErrWriterNotConfigured = errors.New(writerNotConfiguredMessageConstant)

// Formats lists the supported formats.
func Formats() []string {
	return []string{formatTextStringConstant, formatYAMLStringConstant}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case formatTextStringConstant:
		return FormatText, nil
	case formatYAMLStringConstant:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// Reporter prints summary entries in the order they were recorded.
type Reporter struct {
	format Format
}

// NewReporter builds a Reporter for the given format.
func NewReporter(format Format) *Reporter {
	return &Reporter{format: format}
}

// Report writes every entry to writer.
func (reporter *Reporter) Report(writer io.Writer, entries []Entry) error {
	if writer == nil {
		return ErrWriterNotConfigured
	}

	switch reporter.format {
	case FormatYAML:
		if len(entries) == 0 {
			return nil
		}
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(entries); encodeError != nil {
			return fmt.Errorf(yamlEncodeErrorTemplateConstant, encodeError)
		}
		return encoder.Close()
	case FormatText, "":
		for _, entry := range entries {
			if _, writeError := fmt.Fprintln(writer, entry.String()); writeError != nil {
				return writeError
			}
		}
		return nil
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, reporter.format)
	}
}
