package text

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bnema/haggle/internal/domain"
)

func usd(value string) *domain.Price {
	return &domain.Price{Value: decimal.RequireFromString(value), Unit: "USD"}
}

func TestRendererSellOffer(t *testing.T) {
	t.Parallel()

	r := NewRenderer(&fixedIndex{})
	got := r.Render(domain.Bid{
		Type: domain.BidSellOffer,
		Quantity: domain.Quantity{
			"egg":  decimal.NewFromInt(12),
			"milk": decimal.NewFromInt(2),
		},
		Price: usd("3.50"),
	}, false)

	assert.Equal(t, "Ok, how about if I sell you 12 egg(s) and 2 cup(s) of milk for 3.5 USD.", got)
}

func TestDescribeQuantityUnitNouns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		good string
		want string
	}{
		{good: "egg", want: "3 egg(s)"},
		{good: "flour", want: "3 cup(s) of flour"},
		{good: "sugar", want: "3 cup(s) of sugar"},
		{good: "chocolate", want: "3 ounce(s) of chocolate"},
		{good: "vanilla", want: "3 teaspoon(s) of vanilla"},
		{good: "blueberry", want: "3 packs(s) of blueberry"},
		{good: "butter", want: "3 butter"},
	}

	for _, tc := range tests {
		t.Run(tc.good, func(t *testing.T) {
			assert.Equal(t, tc.want, DescribeQuantity(domain.Quantity{tc.good: decimal.NewFromInt(3)}))
		})
	}
}

func TestRendererAcceptPhrasing(t *testing.T) {
	t.Parallel()

	bid := domain.Bid{Type: domain.BidAccept, Quantity: domain.Quantity{"egg": decimal.NewFromInt(12)}, Price: usd("5")}

	offer := NewRenderer(&fixedIndex{index: 0}).Render(bid, false)
	assert.Equal(t, "You've got a deal! I'll sell you 12 egg(s) for 5 USD.", offer)

	confirm := NewRenderer(&fixedIndex{index: 3}).Render(bid, true)
	assert.Equal(t, "Okay! I'm selling you 12 egg(s) for 5 USD.", confirm)
}

func TestRendererRejectUsesPhraseTable(t *testing.T) {
	t.Parallel()

	r := NewRenderer(&fixedIndex{index: 6})
	assert.Equal(t, "No deal!", r.Render(domain.Bid{Type: domain.BidReject}, false))
}

func TestRendererEveryPhraseIsReachable(t *testing.T) {
	t.Parallel()

	bid := domain.Bid{Type: domain.BidAccept, Quantity: domain.Quantity{"egg": decimal.NewFromInt(1)}, Price: usd("1")}
	for i := range confirmationPhrases {
		got := NewRenderer(&fixedIndex{index: i}).Render(bid, true)
		assert.True(t, strings.HasPrefix(got, confirmationPhrases[i]+" 1 egg(s)"), got)
		assert.NotContains(t, got, "  ")
	}
}

type fixedIndex struct {
	index int
}

func (f *fixedIndex) Float64() float64 {
	return 0
}

func (f *fixedIndex) IntN(n int) int {
	return f.index % n
}
