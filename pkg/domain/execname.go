package domain

import (
	"fmt"
	"strings"
)

// ExecNameSeparator delimits the segments of an execName.
const ExecNameSeparator = "/"

// RootLevel is the hierarchy level of a root (page) component: "/page" splits into ["", "page"].
const RootLevel = 2

// HierarchyLevel returns the number of segments of execName, counted the same
// way strings.Split counts them (the leading empty segment included).
func HierarchyLevel(execName string) int {
	return len(strings.Split(execName, ExecNameSeparator))
}

// IsRootName reports whether execName names a root component.
func IsRootName(execName string) bool {
	return HierarchyLevel(execName) == RootLevel
}

// ParentName returns the execName of the direct parent, or "" for a root.
func ParentName(execName string) string {
	if IsRootName(execName) {
		return ""
	}
	idx := strings.LastIndex(execName, ExecNameSeparator)
	if idx <= 0 {
		return ""
	}
	return execName[:idx]
}

// ValidateExecName checks that execName is absolute and has no empty segment.
func ValidateExecName(execName string) error {
	if !strings.HasPrefix(execName, ExecNameSeparator) {
		return fmt.Errorf("%w: %q must start with %q", ErrInvalidExecName, execName, ExecNameSeparator)
	}
	for _, seg := range strings.Split(execName, ExecNameSeparator)[1:] {
		if seg == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidExecName, execName)
		}
	}
	return nil
}
