package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bnema/haggle/internal/adapters/profile"
	"github.com/bnema/haggle/internal/adapters/wire"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

type quoteOptions struct {
	profilePath string
	goods       []string
	price       string
	unit        string
	lastPrice   string
	buyer       string
	remaining   time.Duration
	duration    time.Duration
	seed        uint64
	asJSON      bool
	confirm     bool
}

type quoteOutput struct {
	Offer             wire.Act `json:"offer"`
	Bid               wire.Bid `json:"bid"`
	Cost              string   `json:"cost"`
	Utility           string   `json:"utility"`
	Markup            *float64 `json:"markup,omitempty"`
	RemainingFraction float64  `json:"remainingFraction"`
	Text              string   `json:"text"`
}

func newQuoteCmd(app *app) *cobra.Command {
	var opts quoteOptions

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Decide how the agent would answer a buyer offer",
		Long:  "quote evaluates one buyer offer against a utility profile file without contacting the classifier or the environment.",
		Example: `  haggle quote --profile bakery.toml --good egg=12 --price 5
  haggle quote --profile bakery.yaml --good egg=12 --good milk=2 --remaining 1m --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuote(cmd, app, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.profilePath, "profile", "", "Utility profile file (TOML or YAML)")
	flags.StringArrayVar(&opts.goods, "good", nil, "Requested good as name=amount (repeatable)")
	flags.StringVar(&opts.price, "price", "", "Price offered by the buyer (omit for a request)")
	flags.StringVar(&opts.unit, "unit", "", "Currency of --price (default: the profile currency)")
	flags.StringVar(&opts.lastPrice, "last-price", "", "Our last asking price in this negotiation")
	flags.StringVar(&opts.buyer, "buyer", "", "Buyer name used in the reply")
	flags.DurationVar(&opts.remaining, "remaining", -1, "Time left in the round (default: the whole round)")
	flags.DurationVar(&opts.duration, "duration", 0, "Round duration (default: round.default_duration)")
	flags.Uint64Var(&opts.seed, "seed", 0, "Random seed for a reproducible decision (default: random.seed)")
	flags.BoolVar(&opts.asJSON, "json", false, "Render JSON output")
	flags.BoolVar(&opts.confirm, "confirm", false, "Phrase an acceptance as a confirmation")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("good")

	return cmd
}

func runQuote(cmd *cobra.Command, app *app, opts quoteOptions) error {
	utility, err := profile.Load(opts.profilePath)
	if err != nil {
		return fmt.Errorf("load utility profile: %w", err)
	}

	req, err := buildQuoteRequest(opts, utility, app.cfg.Agent.Name, app.cfg.Round.DefaultDuration)
	if err != nil {
		return err
	}

	random := app.random
	if opts.seed != 0 {
		random = ports.NewRandom(opts.seed)
	}

	quote, err := app.quoter(random).Quote(req)
	if err != nil {
		return fmt.Errorf("quote offer: %w", err)
	}
	app.logger.Debug("quote decided", "bid", quote.Bid.Type, "cost", quote.Cost.String(), "utility", quote.Utility.String())

	if opts.asJSON {
		return writeQuoteJSON(cmd, quote)
	}

	rendered, err := app.quoteView(quote)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
	return err
}

func buildQuoteRequest(opts quoteOptions, utility domain.UtilityProfile, agentID string, defaultDuration time.Duration) (application.QuoteRequest, error) {
	quantity, err := parseGoods(opts.goods)
	if err != nil {
		return application.QuoteRequest{}, err
	}

	req := application.QuoteRequest{
		Profile:   utility,
		Buyer:     opts.buyer,
		Quantity:  quantity,
		AgentID:   agentID,
		Confirmed: opts.confirm,
	}

	if opts.price != "" {
		value, err := decimal.NewFromString(strings.TrimSpace(opts.price))
		if err != nil {
			return application.QuoteRequest{}, fmt.Errorf("parse --price %q: %w", opts.price, err)
		}
		unit := strings.TrimSpace(opts.unit)
		if unit == "" {
			unit = utility.CurrencyUnit
		}
		req.Price = &domain.Price{Value: value, Unit: unit}
	}

	if opts.lastPrice != "" {
		last, err := decimal.NewFromString(strings.TrimSpace(opts.lastPrice))
		if err != nil {
			return application.QuoteRequest{}, fmt.Errorf("parse --last-price %q: %w", opts.lastPrice, err)
		}
		req.LastAsk = &last
	}

	duration := opts.duration
	if duration <= 0 {
		duration = defaultDuration
	}
	remaining := opts.remaining
	if remaining < 0 {
		remaining = duration
	}
	req.Budget = application.TimeBudget{Remaining: remaining, Duration: duration}

	return req, nil
}

func parseGoods(values []string) (domain.Quantity, error) {
	if len(values) == 0 {
		return nil, errors.New("at least one --good is required")
	}

	quantity := make(domain.Quantity, len(values))
	for _, raw := range values {
		name, amount, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("parse --good %q: want name=amount", raw)
		}
		if _, dup := quantity[name]; dup {
			return nil, fmt.Errorf("parse --good %q: %s given twice", raw, name)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("parse --good %q: %w", raw, err)
		}
		if !value.IsPositive() {
			return nil, fmt.Errorf("parse --good %q: amount must be positive", raw)
		}
		quantity[name] = value
	}
	return quantity, nil
}

func writeQuoteJSON(cmd *cobra.Command, quote application.Quote) error {
	out := quoteOutput{
		Offer:             wire.FromAct(quote.Offer, ""),
		Bid:               wire.FromBid(quote.Bid),
		Cost:              quote.Cost.String(),
		Utility:           quote.Utility.String(),
		RemainingFraction: quote.Budget.RemainingFraction(),
		Text:              quote.Text,
	}
	if !math.IsNaN(quote.Markup) && !math.IsInf(quote.Markup, 0) {
		markup := quote.Markup
		out.Markup = &markup
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
