package text

import (
	"fmt"
	"strings"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

// Renderer writes bids as plain English, picking among equivalent phrasings
// at random.
type Renderer struct {
	rand ports.Random
}

var _ ports.Renderer = (*Renderer)(nil)

func NewRenderer(random ports.Random) *Renderer {
	if random == nil {
		random = ports.NewRandom(0)
	}
	return &Renderer{rand: random}
}

func (r *Renderer) Render(bid domain.Bid, confirm bool) string {
	switch bid.Type {
	case domain.BidSellOffer:
		return composeBundle(sellOfferLead, bid)
	case domain.BidReject:
		return r.pick(rejectionPhrases)
	case domain.BidAccept:
		if confirm {
			return composeBundle(r.pick(confirmationPhrases), bid)
		}
		return composeBundle(r.pick(acceptancePhrases), bid)
	default:
		return ""
	}
}

func (r *Renderer) pick(phrases []string) string {
	return phrases[r.rand.IntN(len(phrases))]
}

func composeBundle(lead string, bid domain.Bid) string {
	var b strings.Builder
	b.WriteString(lead)
	b.WriteString(" ")
	b.WriteString(DescribeQuantity(bid.Quantity))
	if bid.Price != nil {
		fmt.Fprintf(&b, " for %s %s", bid.Price.Value.String(), bid.Price.Unit)
	}
	b.WriteString(".")
	return b.String()
}

// DescribeQuantity lists goods in name order with their unit nouns, joined
// with "and".
func DescribeQuantity(quantity domain.Quantity) string {
	parts := make([]string, 0, len(quantity))
	for _, good := range quantity.Goods() {
		parts = append(parts, describeGood(good, quantity[good].String()))
	}
	return strings.Join(parts, " and ")
}

func describeGood(good, amount string) string {
	if format, ok := unitFormats[good]; ok {
		return fmt.Sprintf(format, amount, good)
	}
	return amount + " " + good
}
