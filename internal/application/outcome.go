package application

import "github.com/bnema/haggle/internal/domain"

type OutcomeKind int

const (
	OutcomeSilent OutcomeKind = iota
	OutcomeResponded
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResponded:
		return "responded"
	case OutcomeFailed:
		return "failed"
	default:
		return "silent"
	}
}

// Outcome is the result of processing one inbound message. Only Responded
// outcomes carry a message; only Failed outcomes carry an error.
type Outcome struct {
	Kind    OutcomeKind
	Message *domain.OutboundMessage
	Err     error
}

func Responded(msg domain.OutboundMessage) Outcome {
	return Outcome{Kind: OutcomeResponded, Message: &msg}
}

func Silent() Outcome {
	return Outcome{Kind: OutcomeSilent}
}

func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}
