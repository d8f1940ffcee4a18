package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/ui/style"
)

func TestForState(t *testing.T) {
	icon, color := style.ForState(domain.StateSuccess)
	assert.Equal(t, style.Check, icon)
	assert.Equal(t, style.Green, color)

	icon, color = style.ForState(domain.StateFailure)
	assert.Equal(t, style.Cross, icon)
	assert.Equal(t, style.Red, color)

	icon, _ = style.ForState(domain.StateWaitingForPreApproval)
	assert.Equal(t, style.Pause, icon)

	icon, _ = style.ForState(domain.StatePlanned)
	assert.Equal(t, style.Circle, icon)
}
