// Package signing signs and verifies goal versions with RSA keys.
package signing

import (
	"github.com/fxamacker/cbor/v2"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same goal
// always produces the same bytes regardless of who encodes it.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("signing: CBOR encoder initialization failed: " + err.Error())
	}
}

type canonicalKey struct {
	UniqueName  string `cbor:"1,keyasint"`
	Environment string `cbor:"2,keyasint,omitempty"`
	Name        string `cbor:"3,keyasint,omitempty"`
	GoalSetID   string `cbor:"4,keyasint,omitempty"`
}

type canonicalExternalURL struct {
	Label string `cbor:"1,keyasint,omitempty"`
	URL   string `cbor:"2,keyasint"`
}

type canonicalProvenance struct {
	Registration  string `cbor:"1,keyasint"`
	Version       string `cbor:"2,keyasint"`
	CorrelationID string `cbor:"3,keyasint"`
	Timestamp     int64  `cbor:"4,keyasint"`
	Actor         string `cbor:"5,keyasint,omitempty"`
}

// canonicalGoal lists every signed field. Signature and SignerKeyID are excluded.
// Field numbers are part of the signature format and must never be reused.
type canonicalGoal struct {
	GoalSetID           string                 `cbor:"1,keyasint"`
	UniqueName          string                 `cbor:"2,keyasint"`
	Environment         string                 `cbor:"3,keyasint"`
	Name                string                 `cbor:"4,keyasint"`
	Version             int64                  `cbor:"5,keyasint"`
	Timestamp           int64                  `cbor:"6,keyasint"`
	State               string                 `cbor:"7,keyasint"`
	FulfillmentMethod   string                 `cbor:"8,keyasint"`
	FulfillmentName     string                 `cbor:"9,keyasint"`
	PreConditions       []canonicalKey         `cbor:"10,keyasint"`
	RetryFeasible       bool                   `cbor:"11,keyasint"`
	ApprovalRequired    bool                   `cbor:"12,keyasint"`
	PreApprovalRequired bool                   `cbor:"13,keyasint"`
	Data                string                 `cbor:"14,keyasint"`
	Registration        string                 `cbor:"15,keyasint"`
	RepoProviderID      string                 `cbor:"16,keyasint"`
	RepoOwner           string                 `cbor:"17,keyasint"`
	RepoName            string                 `cbor:"18,keyasint"`
	SHA                 string                 `cbor:"19,keyasint"`
	Branch              string                 `cbor:"20,keyasint"`
	Description         string                 `cbor:"21,keyasint"`
	Phase               string                 `cbor:"22,keyasint"`
	URL                 string                 `cbor:"23,keyasint"`
	Provenance          []canonicalProvenance  `cbor:"24,keyasint"`
	ExternalURLs        []canonicalExternalURL `cbor:"25,keyasint,omitempty"`
}

// Canonical returns the deterministic byte encoding of g that signatures cover.
func Canonical(g domain.Goal) ([]byte, error) {
	c := canonicalGoal{
		GoalSetID:           g.GoalSetID,
		UniqueName:          g.UniqueName,
		Environment:         g.Environment,
		Name:                g.Name,
		Version:             g.Version,
		Timestamp:           g.Timestamp.UnixMilli(),
		State:               string(g.State),
		FulfillmentMethod:   string(g.Fulfillment.Method),
		FulfillmentName:     g.Fulfillment.Name,
		PreConditions:       make([]canonicalKey, 0, len(g.PreConditions)),
		RetryFeasible:       g.RetryFeasible,
		ApprovalRequired:    g.ApprovalRequired,
		PreApprovalRequired: g.PreApprovalRequired,
		Data:                g.Data,
		Registration:        g.Registration,
		RepoProviderID:      g.Repo.ProviderID,
		RepoOwner:           g.Repo.Owner,
		RepoName:            g.Repo.Name,
		SHA:                 g.SHA,
		Branch:              g.Branch,
		Description:         g.Description,
		Phase:               g.Phase,
		URL:                 g.URL,
		Provenance:          make([]canonicalProvenance, 0, len(g.Provenance)),
	}
	for _, k := range g.PreConditions {
		c.PreConditions = append(c.PreConditions, canonicalKey{
			UniqueName:  k.UniqueName,
			Environment: k.Environment,
			Name:        k.Name,
			GoalSetID:   k.GoalSetID,
		})
	}
	for _, u := range g.ExternalURLs {
		c.ExternalURLs = append(c.ExternalURLs, canonicalExternalURL{Label: u.Label, URL: u.URL})
	}
	for _, p := range g.Provenance {
		c.Provenance = append(c.Provenance, canonicalProvenance{
			Registration:  p.Registration,
			Version:       p.Version,
			CorrelationID: p.CorrelationID,
			Timestamp:     p.Timestamp.UnixMilli(),
			Actor:         p.Actor,
		})
	}

	data, err := encMode.Marshal(c)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCanonicalEncodingFailed.Error())
	}
	return data, nil
}
