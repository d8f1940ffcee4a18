package domain

import "sort"

// GoalSet groups the goals planned for one push.
type GoalSet struct {
	ID    string
	Goals []Goal
}

// NewGoalSet groups goals under id, keeping only the highest version per unique name.
func NewGoalSet(id string, goals []Goal) GoalSet {
	latest := make(map[string]Goal, len(goals))
	for _, g := range goals {
		if g.GoalSetID != id {
			continue
		}
		if cur, ok := latest[g.UniqueName]; !ok || g.Version > cur.Version {
			latest[g.UniqueName] = g
		}
	}

	set := GoalSet{ID: id, Goals: make([]Goal, 0, len(latest))}
	for _, g := range latest {
		set.Goals = append(set.Goals, g)
	}
	sort.Slice(set.Goals, func(i, j int) bool {
		return set.Goals[i].UniqueName < set.Goals[j].UniqueName
	})
	return set
}

// Lookup returns a GoalLookup over the members of the set.
func (s GoalSet) Lookup() GoalLookup {
	return func(key GoalKey) (Goal, bool) {
		if key.GoalSetID != "" && key.GoalSetID != s.ID {
			return Goal{}, false
		}
		for _, g := range s.Goals {
			if g.UniqueName == key.UniqueName {
				return g, true
			}
		}
		return Goal{}, false
	}
}

// State aggregates member states: failure wins over waiting, waiting over
// in-process. Once every member is terminal the set is canceled if any member
// was canceled, and successful otherwise.
func (s GoalSet) State() GoalState {
	var waitingApproval, waitingPreApproval, pending, canceled bool
	for _, g := range s.Goals {
		switch {
		case g.State == StateFailure && !g.RetryFeasible:
			return StateFailure
		case g.State == StateWaitingForApproval:
			waitingApproval = true
		case g.State == StateWaitingForPreApproval:
			waitingPreApproval = true
		case g.State == StateCanceled:
			canceled = true
		case !g.State.IsTerminal():
			pending = true
		}
	}

	switch {
	case waitingApproval:
		return StateWaitingForApproval
	case waitingPreApproval:
		return StateWaitingForPreApproval
	case pending:
		return StateInProcess
	case canceled:
		return StateCanceled
	default:
		return StateSuccess
	}
}

// GoalSetDocument is the file format accepted when submitting a goal set.
// Repository fields apply to every goal that does not set its own.
type GoalSetDocument struct {
	GoalSetID    string `yaml:"goalSetId" toml:"goalSetId"`
	Registration string `yaml:"registration" toml:"registration"`
	Repo         Repo   `yaml:"repo" toml:"repo"`
	SHA          string `yaml:"sha" toml:"sha"`
	Branch       string `yaml:"branch" toml:"branch"`
	Goals        []Goal `yaml:"goals" toml:"goals"`
}
