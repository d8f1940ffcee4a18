package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// Submit stores the goal set described by the YAML or TOML file at path and
// requests the goals whose preconditions are already satisfied.
func (a *App) Submit(ctx context.Context, path string) (domain.GoalSet, error) {
	var doc domain.GoalSetDocument
	if err := config.DecodeFile(path, &doc); err != nil {
		return domain.GoalSet{}, err
	}
	return a.SubmitDocument(ctx, doc)
}

// SubmitDocument stores every goal of doc as a new planned goal.
func (a *App) SubmitDocument(ctx context.Context, doc domain.GoalSetDocument) (domain.GoalSet, error) {
	if len(doc.Goals) == 0 {
		return domain.GoalSet{}, domain.ErrEmptyGoalSet
	}
	if doc.GoalSetID == "" {
		doc.GoalSetID = uuid.NewString()
	}

	now := a.clock.Now()
	var errs []error
	for _, g := range doc.Goals {
		g = a.prepare(doc, g)
		g.Timestamp = now

		if a.signer != nil {
			signed, err := a.signer.Sign(g)
			if err != nil {
				errs = append(errs, zerr.With(zerr.Wrap(err, "failed to sign goal"), "goal", g.ID()))
				continue
			}
			g = signed
		}

		if err := a.store.Create(ctx, g); err != nil {
			errs = append(errs, zerr.With(zerr.Wrap(err, "failed to store goal"), "goal", g.ID()))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return domain.GoalSet{}, err
	}

	a.logger.Info(fmt.Sprintf("Submitted %d goals as goal set %s", len(doc.Goals), doc.GoalSetID))
	if _, err := a.promoter.Promote(ctx, doc.GoalSetID); err != nil {
		return domain.GoalSet{}, err
	}

	goals, err := a.store.Query(ctx, domain.GoalQuery{GoalSetID: doc.GoalSetID})
	if err != nil {
		return domain.GoalSet{}, zerr.Wrap(err, "failed to load goal set")
	}
	return domain.NewGoalSet(doc.GoalSetID, goals), nil
}

// prepare fills the document defaults into a submitted goal.
func (a *App) prepare(doc domain.GoalSetDocument, g domain.Goal) domain.Goal {
	g = g.Clone()
	g.GoalSetID = doc.GoalSetID
	g.Version = 1
	if g.Name == "" {
		g.Name = g.UniqueName
	}
	if g.State == "" {
		g.State = domain.StatePlanned
	}
	if g.Fulfillment.Method == "" {
		g.Fulfillment.Method = domain.MethodManaged
	}
	if g.Registration == "" {
		g.Registration = doc.Registration
	}
	if g.Registration == "" {
		g.Registration = a.cfg.Registration
	}
	if g.Repo == (domain.Repo{}) {
		g.Repo = doc.Repo
	}
	if g.SHA == "" {
		g.SHA = doc.SHA
	}
	if g.Branch == "" {
		g.Branch = doc.Branch
	}
	g.Provenance = []domain.Provenance{{
		Registration: a.cfg.Registration,
		Version:      a.version,
		Actor:        Actor,
	}}
	g.Signature = ""
	g.SignerKeyID = ""
	return g
}
