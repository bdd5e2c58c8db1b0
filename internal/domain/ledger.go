package domain

import "sync"

// Ledger keeps the ordered negotiation history per counterparty. The mutex
// only protects the map; callers serialize read-modify-write sequences on a
// single counterparty themselves.
type Ledger struct {
	mu      sync.Mutex
	entries map[string][]NegotiationAct
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[string][]NegotiationAct{}}
}

// Append records act for counterparty, opening the entry if needed.
func (l *Ledger) Append(counterparty string, act NegotiationAct) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[counterparty] = append(l.entries[counterparty], act.Clone())
}

// LastSelfOffers returns the SellOffer acts authored by agentID, oldest first.
func (l *Ledger) LastSelfOffers(counterparty, agentID string) []NegotiationAct {
	l.mu.Lock()
	defer l.mu.Unlock()

	var offers []NegotiationAct
	for _, act := range l.entries[counterparty] {
		if act.Type == ActSellOffer && act.Metadata.Speaker == agentID {
			offers = append(offers, act.Clone())
		}
	}
	return offers
}

func (l *Ledger) History(counterparty string) []NegotiationAct {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := make([]NegotiationAct, 0, len(l.entries[counterparty]))
	for _, act := range l.entries[counterparty] {
		history = append(history, act.Clone())
	}
	return history
}

func (l *Ledger) Clear(counterparty string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, counterparty)
}

func (l *Ledger) HasOpen(counterparty string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.entries[counterparty]
	return ok
}

// Counterparties returns the number of open negotiations.
func (l *Ledger) Counterparties() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = map[string][]NegotiationAct{}
}
