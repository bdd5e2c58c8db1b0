package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type ActType string

const (
	ActBuyOffer      ActType = "BuyOffer"
	ActBuyRequest    ActType = "BuyRequest"
	ActSellOffer     ActType = "SellOffer"
	ActSellRequest   ActType = "SellRequest"
	ActAcceptOffer   ActType = "AcceptOffer"
	ActRejectOffer   ActType = "RejectOffer"
	ActInformation   ActType = "Information"
	ActNotUnderstood ActType = "NotUnderstood"
)

// ConcludesDeal reports whether the act closes a negotiation in either direction.
func (t ActType) ConcludesDeal() bool {
	return t == ActAcceptOffer || t == ActRejectOffer
}

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Quantity maps a good identifier to the amount requested or offered.
type Quantity map[string]decimal.Decimal

// Clone returns an independent copy. A nil quantity clones to an empty map.
func (q Quantity) Clone() Quantity {
	out := make(Quantity, len(q))
	for good, amount := range q {
		out[good] = amount
	}
	return out
}

// Goods returns the good identifiers in lexical order.
func (q Quantity) Goods() []string {
	goods := make([]string, 0, len(q))
	for good := range q {
		goods = append(goods, good)
	}
	sort.Strings(goods)
	return goods
}

type Price struct {
	Value decimal.Decimal
	Unit  string
}

func (p *Price) Clone() *Price {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Proposed reports whether the price carries a usable proposal. A zero value
// counts as no proposal.
func (p *Price) Proposed() bool {
	return p != nil && !p.Value.IsZero()
}

type Metadata struct {
	Speaker       string
	Addressee     string
	Role          Role
	RoundID       string
	EnvironmentID string
	Timestamp     time.Time
}

// NegotiationAct is one typed message of the negotiation protocol.
type NegotiationAct struct {
	Type     ActType
	Quantity Quantity
	Price    *Price
	Metadata Metadata
}

func (a NegotiationAct) Clone() NegotiationAct {
	return NegotiationAct{
		Type:     a.Type,
		Quantity: a.Quantity.Clone(),
		Price:    a.Price.Clone(),
		Metadata: a.Metadata,
	}
}

// Bundle is the part of an act that carries goods and price.
func (a NegotiationAct) Bundle() Bundle {
	return Bundle{Quantity: a.Quantity, Price: a.Price}
}

type Bundle struct {
	Quantity Quantity
	Price    *Price
}

type BidType string

const (
	BidAccept    BidType = "Accept"
	BidReject    BidType = "Reject"
	BidSellOffer BidType = "SellOffer"
)

// Bid is the seller's decided answer to a buyer offer.
type Bid struct {
	Type     BidType
	Quantity Quantity
	Price    *Price
}

// MessageContext is the envelope of an inbound message before interpretation.
type MessageContext struct {
	Speaker       string
	Addressee     string
	Role          Role
	RoundID       string
	EnvironmentID string
}

type InboundMessage struct {
	Text string
	MessageContext
}

// OutboundMessage is what the agent hands to the transport.
type OutboundMessage struct {
	ID            string
	Text          string
	Speaker       string
	Addressee     string
	Role          Role
	RoundID       string
	EnvironmentID string
	Timestamp     time.Time
	Bid           *Bid
}
