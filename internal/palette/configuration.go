package palette

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/ini.v1"
)

const (
	configurationNotFoundMessageConstant    = "config file not found"
	configurationNotFoundTemplateConstant   = "config file '%s' not found"
	configurationParseErrorTemplateConstant = "failed to parse config file: %w"
	missingSectionHeaderMessageConstant     = "file contains no section headers"
	duplicateSectionMessageConstant         = "duplicate section"
	duplicateSectionTemplateConstant        = "%w [%s]"
	duplicateOptionMessageConstant          = "duplicate option"
	duplicateOptionTemplateConstant         = "%w '%s' in section [%s]"
	sectionDecodeErrorTemplateConstant      = "failed to decode [%s] section: %w"
	keyValueDelimitersConstant              = "=:"
	doubleQuoteCharacterConstant            = `"`
	singleQuoteCharacterConstant            = `'`
	mapstructureTagNameConstant             = "mapstructure"
	byteOrderMarkConstant                   = "\ufeff"
	lineSeparatorConstant                   = "\n"
	hashCommentPrefixConstant               = "#"
	semicolonCommentPrefixConstant          = ";"
	sectionHeaderPrefixConstant             = "["
)

// ErrConfigurationNotFound indicates the palette file does not exist or is not a regular file.
var ErrConfigurationNotFound = errors.New(configurationNotFoundMessageConstant)

// ErrMissingSectionHeader indicates a key appears before any section header.
var ErrMissingSectionHeader = errors.New(missingSectionHeaderMessageConstant)

// ErrDuplicateSection indicates a section header repeats.
var ErrDuplicateSection = errors.New(duplicateSectionMessageConstant)

// ErrDuplicateOption indicates a key repeats within one section.
var ErrDuplicateOption = errors.New(duplicateOptionMessageConstant)

// configurationNotFoundError keeps the offending path in the message while matching ErrConfigurationNotFound.
type configurationNotFoundError struct {
	path string
}

func (notFound configurationNotFoundError) Error() string {
	return fmt.Sprintf(configurationNotFoundTemplateConstant, notFound.path)
}

func (notFound configurationNotFoundError) Unwrap() error {
	return ErrConfigurationNotFound
}

// Section is an ordered mapping of literal keys to raw values.
type Section struct {
	name   string
	keys   []string
	values map[string]string
}

// Configuration is an ordered set of named sections.
type Configuration struct {
	sectionNames []string
	sections     map[string]Section
}

// Load reads and parses the palette file at path.
func Load(path string) (Configuration, error) {
	fileInfo, statError := os.Stat(path)
	if statError != nil || !fileInfo.Mode().IsRegular() {
		return Configuration{}, configurationNotFoundError{path: path}
	}

	contents, readError := os.ReadFile(path)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, readError)
	}

	return Parse(contents)
}

// Parse builds a Configuration from palette file contents.
//
// Inline comments and backslash continuations are not recognized, so image
// references and Windows paths are read literally. Duplicate sections,
// duplicate keys within a section, and keys before the first section header
// are rejected.
func Parse(contents []byte) (Configuration, error) {
	if headerError := requireLeadingSectionHeader(contents); headerError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, headerError)
	}

	iniFile, parseError := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:        true,
		IgnoreContinuation:         true,
		AllowPythonMultilineValues: true,
		PreserveSurroundedQuote:    true,
		AllowShadows:               true,
		AllowDuplicateShadowValues: true,
		AllowNonUniqueSections:     true,
		KeyValueDelimiters:         keyValueDelimitersConstant,
	}, contents)
	if parseError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, parseError)
	}

	configuration := Configuration{sections: map[string]Section{}}
	for _, iniSection := range iniFile.Sections() {
		sectionName := iniSection.Name()
		iniKeys := iniSection.Keys()

		section, sectionSeen := configuration.sections[sectionName]
		switch {
		case !sectionSeen:
			if sectionName == ini.DefaultSection && len(iniKeys) == 0 {
				continue
			}
			section = Section{name: sectionName, values: make(map[string]string, len(iniKeys))}
			configuration.sectionNames = append(configuration.sectionNames, sectionName)
		case sectionName != ini.DefaultSection:
			duplicateError := fmt.Errorf(duplicateSectionTemplateConstant, ErrDuplicateSection, sectionName)
			return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, duplicateError)
		}

		for _, iniKey := range iniKeys {
			keyName := iniKey.Name()
			_, keySeen := section.values[keyName]
			if keySeen || len(iniKey.ValueWithShadows()) > 1 {
				duplicateError := fmt.Errorf(duplicateOptionTemplateConstant, ErrDuplicateOption, keyName, sectionName)
				return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, duplicateError)
			}
			section.keys = append(section.keys, keyName)
			section.values[keyName] = iniKey.Value()
		}

		configuration.sections[sectionName] = section
	}

	return configuration, nil
}

// requireLeadingSectionHeader fails when the first line that is neither blank
// nor a comment is not a section header.
func requireLeadingSectionHeader(contents []byte) error {
	text := strings.TrimPrefix(string(contents), byteOrderMarkConstant)
	for _, line := range strings.Split(text, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, hashCommentPrefixConstant) || strings.HasPrefix(trimmedLine, semicolonCommentPrefixConstant) {
			continue
		}
		if strings.HasPrefix(trimmedLine, sectionHeaderPrefixConstant) {
			return nil
		}
		return ErrMissingSectionHeader
	}
	return nil
}

// SectionNames lists section names in file order.
func (configuration Configuration) SectionNames() []string {
	return append([]string{}, configuration.sectionNames...)
}

// Section looks up a section by its exact name.
func (configuration Configuration) Section(name string) (Section, bool) {
	section, exists := configuration.sections[name]
	return section, exists
}

// Keys lists keys in file order.
func (section Section) Keys() []string {
	return append([]string{}, section.keys...)
}

// Value returns the value stored under key with whitespace and surrounding quotes removed.
func (section Section) Value(key string) (string, bool) {
	rawValue, exists := section.values[key]
	if !exists {
		return "", false
	}
	return TrimValue(rawValue), true
}

// Decode populates target from the section using exact key matching on mapstructure tags.
func (section Section) Decode(target any) error {
	trimmedValues := make(map[string]any, len(section.values))
	for key := range section.values {
		trimmedValue, _ := section.Value(key)
		trimmedValues[key] = trimmedValue
	}

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		Result:           target,
		WeaklyTypedInput: true,
		MatchName: func(mapKey string, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if decoderError != nil {
		return fmt.Errorf(sectionDecodeErrorTemplateConstant, section.name, decoderError)
	}

	if decodeError := decoder.Decode(trimmedValues); decodeError != nil {
		return fmt.Errorf(sectionDecodeErrorTemplateConstant, section.name, decodeError)
	}
	return nil
}

// TrimValue strips surrounding whitespace, then every leading and trailing
// double quote, then every leading and trailing single quote.
func TrimValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	trimmedValue = strings.Trim(trimmedValue, doubleQuoteCharacterConstant)
	return strings.Trim(trimmedValue, singleQuoteCharacterConstant)
}
