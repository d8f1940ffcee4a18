package domain

import (
	"slices"
	"strings"
	"time"
)

// FulfillmentMethod describes who is responsible for executing a goal.
type FulfillmentMethod string

const (
	// MethodSideEffect goals are fulfilled by some other system; the dispatcher ignores them.
	MethodSideEffect FulfillmentMethod = "side-effect"
	// MethodOther goals have no known fulfillment and fail when dispatched.
	MethodOther FulfillmentMethod = "other"
	// MethodManaged goals are executed by a registered implementation.
	MethodManaged FulfillmentMethod = "sdm-managed"
)

// Fulfillment names how and by which implementation a goal is executed.
type Fulfillment struct {
	Method FulfillmentMethod `json:"method" yaml:"method" toml:"method"`
	Name   string            `json:"name" yaml:"name" toml:"name"`
}

// GoalKey identifies a goal. Uniqueness is by GoalSetID and UniqueName;
// Environment and Name are carried for display and precondition matching.
type GoalKey struct {
	GoalSetID   string `json:"goalSetId,omitempty" yaml:"goalSetId,omitempty" toml:"goalSetId"`
	UniqueName  string `json:"uniqueName" yaml:"uniqueName" toml:"uniqueName"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" toml:"environment"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
}

// ID returns the stable identifier "<goalSetId>/<uniqueName>".
func (k GoalKey) ID() string {
	return k.GoalSetID + "/" + k.UniqueName
}

// Repo identifies the repository a goal set was planned for.
type Repo struct {
	ProviderID string `json:"providerId,omitempty" yaml:"providerId,omitempty" toml:"providerId"`
	Owner      string `json:"owner" yaml:"owner" toml:"owner"`
	Name       string `json:"name" yaml:"name" toml:"name"`
}

// Slug returns "owner/name".
func (r Repo) Slug() string {
	return r.Owner + "/" + r.Name
}

// ExternalURL links a goal to a page outside goalkeeper, such as a deployment.
type ExternalURL struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label"`
	URL   string `json:"url" yaml:"url" toml:"url"`
}

// Provenance records one writer of a goal version.
type Provenance struct {
	Registration  string    `json:"registration" yaml:"registration" toml:"registration"`
	Version       string    `json:"version" yaml:"version" toml:"version"`
	CorrelationID string    `json:"correlationId" yaml:"correlationId" toml:"correlationId"`
	Timestamp     time.Time `json:"ts" yaml:"ts" toml:"ts"`
	Actor         string    `json:"actor,omitempty" yaml:"actor,omitempty" toml:"actor"`
}

// Goal is one immutable version of a unit of delivery work.
// Mutations produce a new value through Next; a stored Goal is never edited in place.
type Goal struct {
	GoalSetID   string `json:"goalSetId" yaml:"goalSetId" toml:"goalSetId"`
	UniqueName  string `json:"uniqueName" yaml:"uniqueName" toml:"uniqueName"`
	Environment string `json:"environment" yaml:"environment" toml:"environment"`
	Name        string `json:"name" yaml:"name" toml:"name"`

	Version   int64     `json:"version" yaml:"version" toml:"version"`
	Timestamp time.Time `json:"ts" yaml:"ts" toml:"ts"`
	State     GoalState `json:"state" yaml:"state" toml:"state"`

	Fulfillment   Fulfillment `json:"fulfillment" yaml:"fulfillment" toml:"fulfillment"`
	PreConditions []GoalKey   `json:"preConditions,omitempty" yaml:"preConditions,omitempty" toml:"preConditions"`

	RetryFeasible       bool `json:"retryFeasible" yaml:"retryFeasible" toml:"retryFeasible"`
	ApprovalRequired    bool `json:"approvalRequired" yaml:"approvalRequired" toml:"approvalRequired"`
	PreApprovalRequired bool `json:"preApprovalRequired" yaml:"preApprovalRequired" toml:"preApprovalRequired"`

	Data       string       `json:"data,omitempty" yaml:"data,omitempty" toml:"data"`
	Provenance []Provenance `json:"provenance,omitempty" yaml:"provenance,omitempty" toml:"provenance"`

	Registration string `json:"registration" yaml:"registration" toml:"registration"`
	Repo         Repo   `json:"repo" yaml:"repo" toml:"repo"`
	SHA          string `json:"sha" yaml:"sha" toml:"sha"`
	Branch       string `json:"branch,omitempty" yaml:"branch,omitempty" toml:"branch"`

	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Phase       string `json:"phase,omitempty" yaml:"phase,omitempty" toml:"phase"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty" toml:"url"`

	ExternalURLs []ExternalURL `json:"externalUrls,omitempty" yaml:"externalUrls,omitempty" toml:"externalUrls"`

	Signature   string `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature"`
	SignerKeyID string `json:"signerKeyId,omitempty" yaml:"signerKeyId,omitempty" toml:"signerKeyId"`
}

// Key returns the goal's identity.
func (g Goal) Key() GoalKey {
	return GoalKey{
		GoalSetID:   g.GoalSetID,
		UniqueName:  g.UniqueName,
		Environment: g.Environment,
		Name:        g.Name,
	}
}

// ID returns "<goalSetId>/<uniqueName>".
func (g Goal) ID() string {
	return g.Key().ID()
}

// Validate checks that the identity fields are present.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.GoalSetID) == "" || strings.TrimSpace(g.UniqueName) == "" {
		return ErrMissingGoalKey
	}
	return nil
}

// Clone returns a deep copy so the slices of the receiver are never shared.
func (g Goal) Clone() Goal {
	g.PreConditions = slices.Clone(g.PreConditions)
	g.Provenance = slices.Clone(g.Provenance)
	g.ExternalURLs = slices.Clone(g.ExternalURLs)
	return g
}

// GoalPatch describes the changes carried by one goal mutation.
// Empty strings leave the corresponding field unchanged.
type GoalPatch struct {
	State         GoalState
	Description   string
	Phase         string
	URL           string
	ExternalURLs  []ExternalURL
	Data          *string
	RetryFeasible *bool
	Provenance    Provenance
}

// Next returns the successor version of g with the patch applied.
// The signature is cleared because it covered the previous version.
func (g Goal) Next(patch GoalPatch, now time.Time) Goal {
	next := g.Clone()
	next.Version = g.Version + 1
	next.Timestamp = now
	if patch.State != "" {
		next.State = patch.State
	}
	if patch.Description != "" {
		next.Description = patch.Description
	}
	if patch.Phase != "" {
		next.Phase = patch.Phase
	}
	if patch.URL != "" {
		next.URL = patch.URL
	}
	if patch.ExternalURLs != nil {
		next.ExternalURLs = slices.Clone(patch.ExternalURLs)
	}
	if patch.Data != nil {
		next.Data = *patch.Data
	}
	if patch.RetryFeasible != nil {
		next.RetryFeasible = *patch.RetryFeasible
	}
	prov := patch.Provenance
	if prov.Timestamp.IsZero() {
		prov.Timestamp = now
	}
	next.Provenance = append(next.Provenance, prov)
	next.Signature = ""
	next.SignerKeyID = ""
	return next
}

// GoalQuery selects the latest versions of goals in a store.
// Zero-valued fields do not constrain the result.
type GoalQuery struct {
	GoalSetID    string
	UniqueName   string
	Registration string
	States       []GoalState
	Limit        int
}

// Matches reports whether g satisfies the query filters, ignoring Limit.
func (q GoalQuery) Matches(g Goal) bool {
	if q.GoalSetID != "" && g.GoalSetID != q.GoalSetID {
		return false
	}
	if q.UniqueName != "" && g.UniqueName != q.UniqueName {
		return false
	}
	if q.Registration != "" && g.Registration != q.Registration {
		return false
	}
	if len(q.States) > 0 && !slices.Contains(q.States, g.State) {
		return false
	}
	return true
}
