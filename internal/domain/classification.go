package domain

type EntityKind string

const (
	EntityNumber    EntityKind = "number"
	EntityGood      EntityKind = "good"
	EntityCurrency  EntityKind = "currency"
	EntityAddressee EntityKind = "addressee"
	EntityOther     EntityKind = "other"
)

// Entity is one classifier entity. Number holds the numeric reading for
// number and currency entities; Unit is only meaningful for currency.
type Entity struct {
	Kind   EntityKind
	Value  string
	Number float64
	Unit   string
}

type Intent struct {
	Label      string
	Confidence float64
}

const (
	IntentOffer       = "Offer"
	IntentAcceptOffer = "AcceptOffer"
	IntentRejectOffer = "RejectOffer"
	IntentInformation = "Information"
)

// Classification is the classifier output: intents in the order returned and
// entities in textual order.
type Classification struct {
	Intents  []Intent
	Entities []Entity
}

// TopIntent returns the highest-confidence intent. Ties keep the earliest.
func (c Classification) TopIntent() (Intent, bool) {
	if len(c.Intents) == 0 {
		return Intent{}, false
	}

	top := c.Intents[0]
	for _, intent := range c.Intents[1:] {
		if intent.Confidence > top.Confidence {
			top = intent
		}
	}
	return top, true
}
