package palette

import (
	"errors"
	"strings"
)

const (
	confSectionNameConstant              = "conf"
	gitSectionNameConstant               = "git"
	imagesSectionNameConstant            = "images"
	rootFolderKeyConstant                = "root_folder"
	versionKeyConstant                   = "version"
	defaultRootFolderConstant            = "."
	rootFolderRequiredMessageConstant    = "[conf] section with 'root_folder' is required in config"
	imagesSectionRequiredMessageConstant = "[images] section is required in config"
)

// ErrRootFolderRequired indicates the [conf] section or its root_folder key is missing.
var ErrRootFolderRequired = errors.New(rootFolderRequiredMessageConstant)

// ErrImagesSectionRequired indicates the [images] section is missing.
var ErrImagesSectionRequired = errors.New(imagesSectionRequiredMessageConstant)

// ConfSettings mirrors the [conf] section.
type ConfSettings struct {
	RootFolder string `mapstructure:"root_folder"`
}

// GitSettings mirrors the optional [git] section.
type GitSettings struct {
	HashSum string `mapstructure:"hash_sum"`
	Version string `mapstructure:"version"`
}

// ImageAssignment pairs a manifest path relative to the root folder with its new image reference.
type ImageAssignment struct {
	Manifest string
	Image    string
}

// Mapping lists image assignments in the order they appear in the [images] section.
type Mapping []ImageAssignment

// RootFolder resolves the root folder from [conf]; an empty value means the current directory.
func RootFolder(configuration Configuration) (string, error) {
	confSection, sectionExists := configuration.Section(confSectionNameConstant)
	if !sectionExists {
		return "", ErrRootFolderRequired
	}
	if _, keyExists := confSection.Value(rootFolderKeyConstant); !keyExists {
		return "", ErrRootFolderRequired
	}

	var settings ConfSettings
	if decodeError := confSection.Decode(&settings); decodeError != nil {
		return "", decodeError
	}

	if len(settings.RootFolder) == 0 {
		return defaultRootFolderConstant, nil
	}
	return settings.RootFolder, nil
}

// Git returns the [git] settings and whether the section exists.
func Git(configuration Configuration) (GitSettings, bool, error) {
	gitSection, sectionExists := configuration.Section(gitSectionNameConstant)
	if !sectionExists {
		return GitSettings{}, false, nil
	}

	var settings GitSettings
	if decodeError := gitSection.Decode(&settings); decodeError != nil {
		return GitSettings{}, true, decodeError
	}
	return settings, true, nil
}

// Version returns the configured [git] version and whether it is set to a non-empty value.
func Version(configuration Configuration) (string, bool) {
	gitSection, sectionExists := configuration.Section(gitSectionNameConstant)
	if !sectionExists {
		return "", false
	}
	version, keyExists := gitSection.Value(versionKeyConstant)
	if !keyExists || len(version) == 0 {
		return "", false
	}
	return version, true
}

// ImageMapping derives manifest assignments from [images], dropping entries whose
// manifest name or image reference is empty after trimming.
func ImageMapping(configuration Configuration) (Mapping, error) {
	imagesSection, sectionExists := configuration.Section(imagesSectionNameConstant)
	if !sectionExists {
		return nil, ErrImagesSectionRequired
	}

	sectionKeys := imagesSection.Keys()
	mapping := make(Mapping, 0, len(sectionKeys))
	for _, key := range sectionKeys {
		manifestName := strings.TrimSpace(key)
		imageReference, _ := imagesSection.Value(key)
		if len(manifestName) == 0 || len(imageReference) == 0 {
			continue
		}
		mapping = append(mapping, ImageAssignment{Manifest: manifestName, Image: imageReference})
	}
	return mapping, nil
}
