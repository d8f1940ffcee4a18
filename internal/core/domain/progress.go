package domain

import "strings"

// ProgressLogPath returns the hierarchical location of a goal's progress log:
// workspace, owner, repo, sha, environment, goal name, goal set id, correlation id.
// Empty segments are replaced with "_" so the depth stays fixed.
func ProgressLogPath(workspaceID string, g Goal, correlationID string) []string {
	segments := []string{
		workspaceID,
		g.Repo.Owner,
		g.Repo.Name,
		g.SHA,
		g.Environment,
		g.Name,
		g.GoalSetID,
		correlationID,
	}
	for i, s := range segments {
		s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(s))
		if s == "" {
			s = "_"
		}
		segments[i] = s
	}
	return segments
}
