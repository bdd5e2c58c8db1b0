package application

import "github.com/bnema/haggle/internal/domain"

type UtilityReport struct {
	AgentID string
	RoundID string
	Profile domain.UtilityProfile
}

type AgentStatus struct {
	AgentID        string
	Polite         bool
	UtilitySet     bool
	Round          domain.RoundState
	Counterparties int
}
