package kube

import (
	"regexp"
	"strings"
)

const (
	maxNameLength  = 63
	goalSetIDChars = 7
)

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// JobName returns "<container>-job-<goalSetId[:7]>-<goal name>" as a valid
// DNS-1123 label.
func JobName(container, goalSetID, goalName string) string {
	if len(goalSetID) > goalSetIDChars {
		goalSetID = goalSetID[:goalSetIDChars]
	}
	return sanitizeName(container + "-job-" + goalSetID + "-" + goalName)
}

func sanitizeName(s string) string {
	s = invalidNameChars.ReplaceAllString(strings.ToLower(s), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if len(s) > maxNameLength {
		s = strings.TrimRight(s[:maxNameLength], "-")
	}
	return s
}

var invalidLabelChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// labelValue makes s usable as a label value: at most 63 characters from
// [A-Za-z0-9._-], starting and ending alphanumeric.
func labelValue(s string) string {
	s = invalidLabelChars.ReplaceAllString(s, "_")
	if len(s) > maxNameLength {
		s = s[:maxNameLength]
	}
	return strings.Trim(s, "._-")
}
