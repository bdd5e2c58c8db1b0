package ports

import "github.com/bnema/haggle/internal/domain"

// Renderer produces the human-readable text for a bid. confirm selects the
// confirmation phrasing used when a buyer accepts one of our offers.
type Renderer interface {
	Render(bid domain.Bid, confirm bool) string
}
