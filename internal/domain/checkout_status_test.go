package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from CheckoutStatus
		to   CheckoutStatus
		want bool
	}{
		{"idle to validating", CheckoutStatusIdle, CheckoutStatusValidating, true},
		{"validating to building", CheckoutStatusValidating, CheckoutStatusBuilding, true},
		{"building to dispatching", CheckoutStatusBuilding, CheckoutStatusDispatching, true},
		{"dispatching to succeeded", CheckoutStatusDispatching, CheckoutStatusSucceeded, true},
		{"any state to failed", CheckoutStatusDispatching, CheckoutStatusFailed, true},
		{"no skipping ahead", CheckoutStatusIdle, CheckoutStatusDispatching, false},
		{"no going back", CheckoutStatusDispatching, CheckoutStatusValidating, false},
		{"terminal success is final", CheckoutStatusSucceeded, CheckoutStatusValidating, false},
		{"terminal failure is final", CheckoutStatusFailed, CheckoutStatusValidating, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusSucceeded.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusDispatching.IsTerminal())
}
