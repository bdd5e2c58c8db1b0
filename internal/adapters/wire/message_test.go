package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/domain"
)

func TestRoundIDAcceptsNumbersAndStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want RoundID
	}{
		{name: "number", in: `{"roundId":3}`, want: "3"},
		{name: "string", in: `{"roundId":" r-7 "}`, want: "r-7"},
		{name: "null", in: `{"roundId":null}`, want: ""},
		{name: "missing", in: `{}`, want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var msg Message
			require.NoError(t, json.Unmarshal([]byte(tc.in), &msg))
			assert.Equal(t, tc.want, msg.RoundID)
		})
	}

	var msg Message
	require.Error(t, json.Unmarshal([]byte(`{"roundId":true}`), &msg))
}

func TestRoundIDEncodesIntegersAsNumbers(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(struct {
		A RoundID `json:"a"`
		B RoundID `json:"b"`
	}{A: "12", B: "007"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12,"b":"007"}`, string(encoded))
}

func TestFromOutboundCarriesBid(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	msg := FromOutbound(domain.OutboundMessage{
		ID:            "m-1",
		Text:          "How about 12 eggs for 2.57 USD.",
		Speaker:       "Agent007",
		Addressee:     "Jeff",
		Role:          domain.RoleSeller,
		RoundID:       "2",
		EnvironmentID: "env-1",
		Timestamp:     stamp,
		Bid: &domain.Bid{
			Type:     domain.BidSellOffer,
			Quantity: domain.Quantity{"egg": decimal.NewFromInt(12)},
			Price:    &domain.Price{Value: decimal.RequireFromString("2.57"), Unit: "USD"},
		},
	})

	encoded, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"m-1",
		"text":"How about 12 eggs for 2.57 USD.",
		"speaker":"Agent007",
		"addressee":"Jeff",
		"role":"seller",
		"roundId":2,
		"environmentUUID":"env-1",
		"timeStamp":"2026-10-16T09:00:00Z",
		"bid":{"type":"SellOffer","price":{"value":2.57,"unit":"USD"},"quantity":{"egg":12}}
	}`, string(encoded))
}

func TestInboundAndBidDomain(t *testing.T) {
	t.Parallel()

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"text":"12 eggs for $5","speaker":"Jeff","addressee":"Agent007","role":"Buyer",
		"roundId":4,"environmentUUID":"env-2",
		"bid":{"type":"Accept","price":{"value":5,"unit":"USD"},"quantity":{"egg":12}}
	}`), &msg))

	in := msg.Inbound()
	assert.Equal(t, "12 eggs for $5", in.Text)
	assert.Equal(t, domain.MessageContext{
		Speaker: "Jeff", Addressee: "Agent007", Role: domain.RoleBuyer, RoundID: "4", EnvironmentID: "env-2",
	}, in.MessageContext)

	require.NotNil(t, msg.Bid)
	bid := msg.Bid.Domain()
	assert.Equal(t, domain.BidAccept, bid.Type)
	require.NotNil(t, bid.Price)
	assert.True(t, decimal.NewFromInt(5).Equal(bid.Price.Value))
	assert.True(t, decimal.NewFromInt(12).Equal(bid.Quantity["egg"]))
}

func TestFromActWithoutPrice(t *testing.T) {
	t.Parallel()

	act := FromAct(domain.NegotiationAct{Type: domain.ActNotUnderstood}, "5")
	encoded, err := json.Marshal(act)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"NotUnderstood","quantity":{},"roundId":5}`, string(encoded))
}
