package dispatcher

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// PushEligible reports whether the artifact cache may be used for goal.
// An empty branch list allows every branch.
func PushEligible(goal domain.Goal, opts domain.CacheOptions) bool {
	if len(opts.Branches) == 0 {
		return true
	}
	return slices.Contains(opts.Branches, goal.Branch)
}

func (d *Dispatcher) cacheEnabled(inv *domain.Invocation) bool {
	return d.Cache != nil && d.cfg.Cache.Enabled && PushEligible(inv.Goal, inv.Implementation.Cache)
}

func cacheKey(goal domain.Goal, classifier string) domain.CacheKey {
	return domain.CacheKey{Repo: goal.Repo, SHA: goal.SHA, Classifier: classifier}
}

// restoreCache restores every configured classifier. A miss runs the
// implementation's OnMiss command once for that classifier instead.
func (d *Dispatcher) restoreCache(ctx context.Context, inv *domain.Invocation) error {
	opts := inv.Implementation.Cache
	if len(opts.Restore) == 0 || !d.cacheEnabled(inv) {
		return nil
	}

	for _, classifier := range opts.Restore {
		found, err := d.Cache.Get(ctx, cacheKey(inv.Goal, classifier), inv.Workdir, inv.Progress)
		if err != nil {
			d.Logger.Warn(fmt.Sprintf("Restoring cache '%s' for %s failed: %v", classifier, inv.Goal.ID(), err))
			found = false
		}
		if found {
			continue
		}
		if err := d.runOnMiss(ctx, inv, classifier); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) runOnMiss(ctx context.Context, inv *domain.Invocation, classifier string) error {
	onMiss := inv.Implementation.Cache.OnMiss
	if len(onMiss) == 0 {
		return nil
	}

	env := commandEnvironment(inv)
	env[domain.EnvCacheClassifier] = classifier
	cmd := domain.Command{
		Name:        onMiss[0],
		Args:        onMiss[1:],
		Dir:         inv.Workdir,
		Environment: env,
	}
	_, _ = fmt.Fprintf(inv.Progress, "Running cache fallback for '%s'\n", classifier)
	if err := d.Executor.Execute(ctx, cmd, inv.Progress, inv.Progress); err != nil {
		return zerr.With(zerr.Wrap(err, "cache fallback failed"), "classifier", classifier)
	}
	return nil
}

// captureCache stores the configured entries after a successful run.
// Failures are reported but never fail the goal.
func (d *Dispatcher) captureCache(ctx context.Context, inv *domain.Invocation) {
	if len(inv.Implementation.Cache.Entries) == 0 || !d.cacheEnabled(inv) {
		return
	}

	for _, entry := range inv.Implementation.Cache.Entries {
		key := cacheKey(inv.Goal, entry.Classifier)
		if err := d.Cache.Put(ctx, key, inv.Workdir, entry.Patterns, inv.Progress); err != nil {
			d.Logger.Error(zerr.With(zerr.Wrap(err, "failed to capture cache entry"), "classifier", entry.Classifier))
		}
	}
}
