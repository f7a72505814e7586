package conda

import (
	"regexp"
	"strings"
)

var constraintStart = regexp.MustCompile(`~=|<=|>=|==|!=|<|>|=`)

// SplitMatchSpec splits a conda match spec into the package name and the
// version constraint that follows it, e.g. "numpy>=1.8,<2" gives
// ("numpy", ">=1.8,<2"). A bare name has an empty constraint.
func SplitMatchSpec(spec string) (name, constraint string) {
	loc := constraintStart.FindStringIndex(spec)
	if loc == nil {
		return strings.TrimSpace(spec), ""
	}
	return strings.TrimSpace(spec[:loc[0]]), strings.TrimSpace(spec[loc[0]:])
}

// PackageName is the name part of a match spec.
func PackageName(spec string) string {
	name, _ := SplitMatchSpec(spec)
	return name
}
