package domain

import (
	"github.com/Masterminds/semver/v3"
)

// UpdateType classifies a candidate version relative to the current one.
type UpdateType string

const (
	UpdateTypeMajor UpdateType = "major"
	UpdateTypeMinor UpdateType = "minor"
	UpdateTypePatch UpdateType = "patch"
)

// ParseVersion parses a chart version string. Chart versions carry no "v"
// prefix, but one is tolerated since registries mix both spellings.
func ParseVersion(version string) (*semver.Version, error) {
	return semver.NewVersion(version)
}

// IsValidVersion reports whether the string parses as a semantic version.
func IsValidVersion(version string) bool {
	_, err := semver.NewVersion(version)
	return err == nil
}

// ClassifyUpdate returns the bump type of candidate relative to current:
// major when the major components differ, minor when only the minor
// component differs, patch otherwise.
func ClassifyUpdate(current, candidate *semver.Version) UpdateType {
	switch {
	case candidate.Major() != current.Major():
		return UpdateTypeMajor
	case candidate.Minor() != current.Minor():
		return UpdateTypeMinor
	default:
		return UpdateTypePatch
	}
}

// IsPrerelease reports whether the version carries a pre-release suffix.
func IsPrerelease(version *semver.Version) bool {
	return version.Prerelease() != ""
}
