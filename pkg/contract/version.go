package contract

import (
	"strings"

	"golang.org/x/mod/semver"
)

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// IsValidVersion reports whether v is a semantic version, with or without
// a leading "v".
func IsValidVersion(v string) bool {
	return semver.IsValid(canonicalVersion(v))
}

// CompareVersions returns -1, 0 or +1 as a is older than, equal to or newer
// than b. Invalid versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}

// MajorBump reports whether newer has a higher major version than older.
// Breaking changes are expected across a major bump.
func MajorBump(older, newer string) bool {
	if !IsValidVersion(older) || !IsValidVersion(newer) {
		return false
	}
	return semver.Compare(semver.Major(canonicalVersion(newer)), semver.Major(canonicalVersion(older))) > 0
}
