package domain

import (
	"github.com/Masterminds/semver/v3"
)

// SelectUpdate picks at most one proposed version for a dependency from the
// versions available in its repository. It is a pure function of its
// inputs: repeated evaluation always yields the same selection.
//
// Candidates are narrowed in order: valid semver only, strictly greater
// than the current version, pre-releases excluded unless the policy allows
// them, bump type admitted by the strategy, then ignore rules. The highest
// remaining version wins; ok is false when nothing remains or the current
// version itself is not valid semver.
func SelectUpdate(dep Dependency, available []ChartVersionInfo, policy UpdatePolicy) (string, bool) {
	current, err := ParseVersion(dep.CurrentVersion)
	if err != nil {
		return "", false
	}

	var selected *semver.Version
	for _, info := range available {
		candidate, parseErr := ParseVersion(info.Version)
		if parseErr != nil {
			continue
		}
		if !candidate.GreaterThan(current) {
			continue
		}
		if IsPrerelease(candidate) && !policy.AllowPrereleases {
			continue
		}

		updateType := ClassifyUpdate(current, candidate)
		if !strategyAllows(policy.Strategy, updateType) {
			continue
		}
		if isIgnored(dep.Name, updateType, policy.Ignore) {
			continue
		}

		if selected == nil || candidate.GreaterThan(selected) {
			selected = candidate
		}
	}

	if selected == nil {
		return "", false
	}
	return selected.Original(), true
}

// strategyAllows reports whether the strategy admits the bump type.
// Strategies nest: patch admits only patch, minor adds minor, and both
// major and all admit everything.
func strategyAllows(strategy UpdateStrategy, updateType UpdateType) bool {
	switch strategy {
	case StrategyPatch:
		return updateType == UpdateTypePatch
	case StrategyMinor:
		return updateType == UpdateTypePatch || updateType == UpdateTypeMinor
	case StrategyMajor, StrategyAll:
		return true
	default:
		return true
	}
}

// isIgnored reports whether an ignore rule suppresses this candidate. A
// rule without update types suppresses every update for the dependency.
func isIgnored(depName string, updateType UpdateType, rules []IgnoreRule) bool {
	for _, rule := range rules {
		if rule.DependencyName != depName {
			continue
		}
		if len(rule.UpdateTypes) == 0 {
			return true
		}
		for _, t := range rule.UpdateTypes {
			if t == updateType {
				return true
			}
		}
	}
	return false
}
