package application

import (
	"time"

	"github.com/bnema/haggle/internal/domain"
)

// SetUtilityCommand installs the seller's cost model. A non-empty Profile.Name
// renames the agent; a non-empty RoundID becomes the current round id.
type SetUtilityCommand struct {
	RoundID string
	Profile domain.UtilityProfile
}

// StartRoundCommand opens a round. Zero values keep the previous duration and
// round id.
type StartRoundCommand struct {
	RoundID  string
	Duration time.Duration
}

// RejectionNotice reports that the environment refused to deliver one of our
// messages.
type RejectionNotice struct {
	Rationale string
	Bid       *domain.Bid
	Message   domain.MessageContext
}
