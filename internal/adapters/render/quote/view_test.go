package quote

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
)

func eggQuote() application.Quote {
	return application.Quote{
		Offer: domain.NegotiationAct{
			Type:     domain.ActBuyOffer,
			Quantity: domain.Quantity{"egg": decimal.NewFromInt(12)},
			Price:    &domain.Price{Value: decimal.NewFromInt(2), Unit: "USD"},
			Metadata: domain.Metadata{Speaker: "Jeff", Addressee: "Agent007"},
		},
		Bid: domain.Bid{
			Type:     domain.BidSellOffer,
			Quantity: domain.Quantity{"egg": decimal.NewFromInt(12)},
			Price:    &domain.Price{Value: decimal.RequireFromString("2.57"), Unit: "USD"},
		},
		Cost:    decimal.RequireFromString("1.2"),
		Utility: decimal.RequireFromString("0.8"),
		Markup:  0.8 / 1.2,
		Budget:  application.TimeBudget{Remaining: 150 * time.Second, Duration: 600 * time.Second},
		Text:    "How about 12 egg(s) for 2.57 USD.",
	}
}

func TestRenderCounteroffer(t *testing.T) {
	output, err := Render(eggQuote())

	require.NoError(t, err)
	assert.Contains(t, output, "Seller Quote")
	assert.Contains(t, output, "Jeff -> Agent007")
	assert.Contains(t, output, "12 egg(s) for 2 USD")
	assert.Contains(t, output, "1.20 USD")
	assert.Contains(t, output, "0.80 (markup 0.67)")
	assert.Contains(t, output, "25% left (2m30s remaining)")
	assert.Contains(t, output, "counter at 2.57 USD")
	assert.Contains(t, output, `"How about 12 egg(s) for 2.57 USD."`)
}

func TestRenderAcceptAndReject(t *testing.T) {
	accept := eggQuote()
	accept.Bid = domain.Bid{Type: domain.BidAccept, Price: &domain.Price{Value: decimal.NewFromInt(5), Unit: "USD"}}
	accept.Markup = math.Inf(1)

	output, err := Render(accept)
	require.NoError(t, err)
	assert.Contains(t, output, "accept at 5.00 USD")
	assert.Contains(t, output, "markup +inf")

	reject := eggQuote()
	reject.Bid = domain.Bid{Type: domain.BidReject}
	reject.Budget = application.TimeBudget{Remaining: -time.Second, Duration: time.Minute}

	output, err = Render(reject)
	require.NoError(t, err)
	assert.Contains(t, output, "reject")
	assert.Contains(t, output, "time is up")
}

func TestRenderUnpricedRequest(t *testing.T) {
	request := eggQuote()
	request.Offer.Type = domain.ActBuyRequest
	request.Offer.Price = nil
	request.Markup = math.NaN()

	output, err := Render(request)
	require.NoError(t, err)
	assert.Contains(t, output, "(no price)")
	assert.Contains(t, output, "utility:  n/a")
}

func TestRenderProgressBarClamps(t *testing.T) {
	s := newStyles()

	assert.Contains(t, renderProgressBar(1.5, 4, s), "====")
	assert.Contains(t, renderProgressBar(-1, 4, s), "----")
	assert.Empty(t, renderProgressBar(0.5, 0, s))
}
