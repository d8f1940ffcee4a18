package ports

import "go.trai.ch/goalkeeper/internal/core/domain"

// GoalSigner signs goal versions before they are written.
//
//go:generate mockgen -source=signing.go -destination=mocks/mock_signing.go -package=mocks
type GoalSigner interface {
	// Sign returns a copy of goal carrying a signature over its canonical bytes.
	Sign(goal domain.Goal) (domain.Goal, error)
}

// GoalVerifier checks goal signatures against trusted keys.
type GoalVerifier interface {
	// Verify returns the id of the key that verified the goal.
	Verify(goal domain.Goal) (string, error)
}
