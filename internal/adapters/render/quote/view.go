package quote

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/haggle/internal/adapters/render/text"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
)

const budgetBarWidth = 24

func renderView(quote application.Quote, s styles) string {
	lines := []string{
		s.title.Render("Seller Quote"),
		s.header.Render(fmt.Sprintf("%s -> %s", quote.Offer.Metadata.Speaker, quote.Offer.Metadata.Addressee)),
		s.section.Render(renderOffer(quote, s)),
		s.section.Render(renderDecision(quote, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOffer(quote application.Quote, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		field("offer:", describeOffer(quote.Offer), s),
		field("cost:", fmt.Sprintf("%s %s", quote.Cost.StringFixed(2), currencyOf(quote)), s),
		field("utility:", utilityLine(quote), s),
		budgetLine(quote.Budget, s),
	)
}

func renderDecision(quote application.Quote, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		field("decision:", decisionLabel(quote.Bid, s), s),
		s.reply.Render(fmt.Sprintf("%q", quote.Text)),
	)
}

func field(label, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(fmt.Sprintf("%-9s", label)), " ", s.detail.Render(value))
}

func describeOffer(offer domain.NegotiationAct) string {
	bundle := text.DescribeQuantity(offer.Quantity)
	if !offer.Price.Proposed() {
		return bundle + " (no price)"
	}
	return fmt.Sprintf("%s for %s %s", bundle, offer.Price.Value.String(), offer.Price.Unit)
}

func utilityLine(quote application.Quote) string {
	if !quote.Priced() {
		return "n/a"
	}
	return fmt.Sprintf("%s (markup %s)", quote.Utility.StringFixed(2), formatMarkup(quote.Markup))
}

func formatMarkup(markup float64) string {
	switch {
	case math.IsNaN(markup):
		return "n/a"
	case math.IsInf(markup, 1):
		return "+inf"
	case math.IsInf(markup, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%.2f", markup)
	}
}

func decisionLabel(bid domain.Bid, s styles) string {
	switch bid.Type {
	case domain.BidAccept:
		return s.accept.Render(fmt.Sprintf("accept at %s", priceLabel(bid.Price)))
	case domain.BidReject:
		return s.reject.Render("reject")
	case domain.BidSellOffer:
		return s.counter.Render(fmt.Sprintf("counter at %s", priceLabel(bid.Price)))
	default:
		return string(bid.Type)
	}
}

func priceLabel(price *domain.Price) string {
	if price == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s %s", price.Value.StringFixed(2), price.Unit)
}

func currencyOf(quote application.Quote) string {
	if quote.Bid.Price != nil && quote.Bid.Price.Unit != "" {
		return quote.Bid.Price.Unit
	}
	if quote.Offer.Price != nil {
		return quote.Offer.Price.Unit
	}
	return ""
}

func budgetLine(budget application.TimeBudget, s styles) string {
	left := budget.RemainingFraction()
	meta := lipgloss.NewStyle().Foreground(interpolateColor(left, 0, 1)).
		Render(fmt.Sprintf("%2.0f%% left (%s)", left*100, formatRemaining(budget.Remaining)))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render(fmt.Sprintf("%-9s", "round:")),
		" ",
		renderProgressBar(left, budgetBarWidth, s),
		" ",
		meta,
	)
}

func formatRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "time is up"
	}
	return remaining.Round(time.Second).String() + " remaining"
}

func renderProgressBar(leftFraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * leftFraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

// interpolateColor fades from grey 240 at min to white 255 at max.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
