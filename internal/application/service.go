package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	DefaultAgentID = "Agent007"

	insufficientBudgetRationale = "insufficient budget"

	textNoOutstandingOffer   = "I'm sorry, but I'm not aware of any outstanding offers."
	textRejectionAcknowledge = "I'm sorry you rejected my bid. I hope we can do business in the near future."
	textRejectionConfusion   = "There must be some confusion; I'm not aware of any outstanding offers."
	textRejectionNoHistory   = "OK, but I didn't think we had any outstanding offers."
	textInformationAck       = "OK. Thanks for letting me know."
	textInsufficientBudget   = "I'm sorry, %s. I was ready to make a deal, but apparently you don't have enough money left."
)

type Options struct {
	AgentID         string
	Polite          bool
	DefaultCurrency string
	// RoundDuration applies to rounds started without an explicit duration.
	RoundDuration time.Duration
	Logger        *slog.Logger
}

// roundSession is everything that is reset when a round starts. A message
// keeps the session it was admitted under for its whole processing.
type roundSession struct {
	clock  *domain.RoundClock
	ledger *domain.Ledger
}

func newRoundSession() *roundSession {
	return &roundSession{clock: domain.NewRoundClock(), ledger: domain.NewLedger()}
}

// Admission is an inbound message that passed validation and the round
// check, bound to the session it was admitted under. It holds the message's
// place in its counterparty's queue, so every admission must be processed.
type Admission struct {
	Message domain.InboundMessage

	session *roundSession
	agentID string
	polite  bool
	profile *domain.UtilityProfile
	turn    *turn
}

// counterpartyKey is the speaker, or the addressee for our own messages.
func (a Admission) counterpartyKey() string {
	if a.Message.Speaker == a.agentID {
		return a.Message.Addressee
	}
	return a.Message.Speaker
}

// Service is the negotiation orchestrator. It owns the utility profile, the
// round session and the per-counterparty serialization.
type Service struct {
	classifier  ports.Classifier
	renderer    ports.Renderer
	interpreter *Interpreter
	bids        *BidEngine
	clock       ports.Clock
	logger      *slog.Logger
	locks       keyedLocks

	mu            sync.RWMutex
	agentID       string
	polite        bool
	profile       *domain.UtilityProfile
	roundID       string
	roundDuration time.Duration
	session       *roundSession
}

func NewService(classifier ports.Classifier, renderer ports.Renderer, random ports.Random, clock ports.Clock, opts Options) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if strings.TrimSpace(opts.AgentID) == "" {
		opts.AgentID = DefaultAgentID
	}
	if opts.RoundDuration <= 0 {
		opts.RoundDuration = domain.DefaultRoundDuration
	}

	return &Service{
		classifier:    classifier,
		renderer:      renderer,
		interpreter:   NewInterpreter(opts.DefaultCurrency, clock),
		bids:          NewBidEngine(random),
		clock:         clock,
		logger:        opts.Logger,
		agentID:       opts.AgentID,
		polite:        opts.Polite,
		roundDuration: opts.RoundDuration,
		session:       newRoundSession(),
	}
}

func (s *Service) SetUtility(_ context.Context, cmd SetUtilityCommand) (UtilityReport, error) {
	if err := cmd.Profile.Validate(); err != nil {
		return UtilityReport{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}

	profile := cmd.Profile
	profile.UnitCosts = make(map[string]decimal.Decimal, len(cmd.Profile.UnitCosts))
	for good, cost := range cmd.Profile.UnitCosts {
		profile.UnitCosts[good] = cost
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = &profile
	if name := strings.TrimSpace(profile.Name); name != "" && name != s.agentID {
		s.logger.Info("agent renamed", "from", s.agentID, "to", name)
		s.agentID = name
	}
	if cmd.RoundID != "" {
		s.roundID = cmd.RoundID
	}
	s.logger.Info("utility set", "agent", s.agentID, "currency", profile.CurrencyUnit, "goods", len(profile.UnitCosts))

	return UtilityReport{AgentID: s.agentID, RoundID: s.roundID, Profile: profile}, nil
}

// StartRound wipes every negotiation and opens a new round.
func (s *Service) StartRound(_ context.Context, cmd StartRoundCommand) domain.RoundState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Duration > 0 {
		s.roundDuration = cmd.Duration
	}
	if cmd.RoundID != "" {
		s.roundID = cmd.RoundID
	}

	session := newRoundSession()
	session.clock.Start(s.clock.Now(), s.roundDuration, s.roundID)
	s.session = session

	state := session.clock.State()
	s.logger.Info("round started", "round", state.RoundID, "duration", state.Duration, "stop", state.StopTime)
	return state
}

func (s *Service) EndRound(_ context.Context) domain.RoundState {
	session := s.currentSession()
	session.clock.Stop()

	state := session.clock.State()
	s.logger.Info("round ended", "round", state.RoundID)
	return state
}

func (s *Service) Status() AgentStatus {
	s.mu.RLock()
	status := AgentStatus{AgentID: s.agentID, Polite: s.polite, UtilitySet: s.profile != nil}
	session := s.session
	s.mu.RUnlock()

	status.Round = session.clock.State()
	status.Counterparties = session.ledger.Counterparties()
	return status
}

func (s *Service) ReportUtility() (UtilityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return UtilityReport{}, domain.ErrUtilityNotSet
	}
	return UtilityReport{AgentID: s.agentID, RoundID: s.roundID, Profile: *s.profile}, nil
}

// RoundID is the id stamped on outgoing messages.
func (s *Service) RoundID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.roundID
}

func (s *Service) Classify(ctx context.Context, req ports.ClassifyRequest) (domain.Classification, error) {
	if strings.TrimSpace(req.Text) == "" {
		return domain.Classification{}, fmt.Errorf("%w: text is required", domain.ErrMalformedInput)
	}

	classification, err := s.classifier.Classify(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrClassificationUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrClassificationUnavailable, err)
		}
		return domain.Classification{}, fmt.Errorf("classify message: %w", err)
	}
	return classification, nil
}

// Interpret maps a classification onto a negotiation act for the given
// message context.
func (s *Service) Interpret(classification domain.Classification, in domain.MessageContext) domain.NegotiationAct {
	return s.interpreter.Interpret(classification, in)
}

// ExtractAct classifies and interprets a message without touching any
// negotiation state.
func (s *Service) ExtractAct(ctx context.Context, in domain.InboundMessage) (domain.NegotiationAct, error) {
	classification, err := s.Classify(ctx, classifyRequest(in))
	if err != nil {
		return domain.NegotiationAct{}, err
	}
	return s.interpreter.Interpret(classification, in.MessageContext), nil
}

// HandleMessage admits and processes one inbound message synchronously.
func (s *Service) HandleMessage(ctx context.Context, in domain.InboundMessage) Outcome {
	admission, err := s.Admit(in)
	if err != nil {
		return Failed(err)
	}
	return s.Process(ctx, admission)
}

// Admit validates the message and checks the round. The returned admission
// pins the round session, so a round boundary crossed during processing does
// not change the decision.
func (s *Service) Admit(in domain.InboundMessage) (Admission, error) {
	if strings.TrimSpace(in.Text) == "" {
		return Admission{}, fmt.Errorf("%w: text is required", domain.ErrMalformedInput)
	}
	if strings.TrimSpace(in.Speaker) == "" {
		return Admission{}, fmt.Errorf("%w: speaker is required", domain.ErrMalformedInput)
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}

	s.mu.RLock()
	admission := Admission{
		Message: in,
		session: s.session,
		agentID: s.agentID,
		polite:  s.polite,
		profile: s.profile,
	}
	s.mu.RUnlock()

	// Our own messages are keyed by who we spoke to. Without an envelope
	// addressee the counterparty is only known after classification, too
	// late to serialize against that buyer.
	if in.Speaker == admission.agentID && strings.TrimSpace(in.Addressee) == "" {
		return Admission{}, fmt.Errorf("%w: addressee is required on messages from %s", domain.ErrMalformedInput, admission.agentID)
	}

	if !admission.session.clock.CheckActive(s.clock.Now()) {
		return Admission{}, domain.ErrRoundInactive
	}
	admission.turn = s.locks.reserve(admission.counterpartyKey())
	return admission, nil
}

func (s *Service) Process(ctx context.Context, a Admission) Outcome {
	in := a.Message
	t := a.turn
	if t == nil {
		t = s.locks.reserve(a.counterpartyKey())
	}
	t.wait()
	defer t.release()

	classification, err := s.Classify(ctx, classifyRequest(in))
	if err != nil {
		s.logger.Error("classification failed", "speaker", in.Speaker, "error", err)
		return Failed(err)
	}

	act := s.interpreter.Interpret(classification, in.MessageContext)
	s.logger.Debug("message interpreted", "speaker", act.Metadata.Speaker, "addressee", act.Metadata.Addressee, "type", act.Type)

	return s.respond(a, act)
}

func (s *Service) respond(a Admission, act domain.NegotiationAct) Outcome {
	ledger := a.session.ledger
	speaker := act.Metadata.Speaker
	addressee := act.Metadata.Addressee
	toMe := addressee == a.agentID

	if speaker == a.agentID {
		switch {
		case act.Type.ConcludesDeal():
			ledger.Clear(addressee)
		case ledger.HasOpen(addressee):
			ledger.Append(addressee, act)
		}
		return Silent()
	}

	switch act.Metadata.Role {
	case domain.RoleSeller:
		s.logger.Debug("ignoring peer seller", "speaker", speaker, "type", act.Type)
		return Silent()
	case domain.RoleBuyer:
	default:
		return Silent()
	}

	switch {
	case toMe && act.Type == domain.ActAcceptOffer:
		offers := ledger.LastSelfOffers(speaker, a.agentID)
		if len(offers) == 0 {
			return Responded(s.reply(a, act, textNoOutstandingOffer, nil))
		}
		accepted := offers[len(offers)-1]
		bid := domain.Bid{Type: domain.BidAccept, Quantity: accepted.Quantity, Price: accepted.Price}
		ledger.Clear(speaker)
		s.logger.Info("offer accepted", "buyer", speaker, "price", priceString(bid.Price))
		return Responded(s.reply(a, act, s.renderer.Render(bid, true), &bid))

	case toMe && act.Type == domain.ActRejectOffer:
		if !ledger.HasOpen(speaker) {
			return Responded(s.reply(a, act, textRejectionNoHistory, nil))
		}
		if len(ledger.LastSelfOffers(speaker, a.agentID)) == 0 {
			return Responded(s.reply(a, act, textRejectionConfusion, nil))
		}
		ledger.Clear(speaker)
		return Responded(s.reply(a, act, textRejectionAcknowledge, nil))

	case toMe && act.Type == domain.ActInformation:
		return Responded(s.reply(a, act, textInformationAck, nil))

	case toMe && act.Type == domain.ActNotUnderstood:
		return Silent()

	case act.Type == domain.ActBuyOffer || act.Type == domain.ActBuyRequest:
		if !a.mayRespond(act) {
			s.logger.Debug("not responding to offer", "buyer", speaker, "addressee", addressee)
			return Silent()
		}
		return s.decide(a, act)
	}

	return Silent()
}

func (s *Service) decide(a Admission, act domain.NegotiationAct) Outcome {
	if a.profile == nil {
		return Failed(domain.ErrUtilityNotSet)
	}

	speaker := act.Metadata.Speaker
	a.session.ledger.Append(speaker, act)

	if act.Price != nil && act.Price.Unit != a.profile.CurrencyUnit {
		s.logger.Warn("currency units do not match", "offer", act.Price.Unit, "profile", a.profile.CurrencyUnit)
	}

	now := s.clock.Now()
	state := a.session.clock.State()
	budget := TimeBudget{Remaining: a.session.clock.Remaining(now), Duration: state.Duration}

	bid, err := s.bids.Decide(act, a.session.ledger.LastSelfOffers(speaker, a.agentID), *a.profile, budget)
	if err != nil {
		s.logger.Error("bid decision failed", "buyer", speaker, "error", err)
		return Failed(fmt.Errorf("decide bid: %w", err))
	}
	s.logger.Debug("bid decided", "buyer", speaker, "type", bid.Type, "price", priceString(bid.Price), "remaining", budget.Remaining)

	return Responded(s.reply(a, act, s.renderer.Render(bid, false), &bid))
}

// HandleRejection reacts to the environment refusing one of our messages.
// Only a refused acceptance due to the buyer's budget is worth explaining.
func (s *Service) HandleRejection(_ context.Context, notice RejectionNotice) Outcome {
	session := s.currentSession()
	if !session.clock.CheckActive(s.clock.Now()) {
		return Failed(domain.ErrRoundInactive)
	}

	if !strings.EqualFold(strings.TrimSpace(notice.Rationale), insufficientBudgetRationale) ||
		notice.Bid == nil || notice.Bid.Type != domain.BidAccept {
		return Silent()
	}

	msg := notice.Message
	s.logger.Info("acceptance rejected for insufficient budget", "buyer", msg.Addressee)

	s.mu.RLock()
	roundID := s.roundID
	s.mu.RUnlock()

	return Responded(domain.OutboundMessage{
		ID:            uuid.NewString(),
		Text:          fmt.Sprintf(textInsufficientBudget, msg.Addressee),
		Speaker:       msg.Speaker,
		Addressee:     msg.Addressee,
		Role:          msg.Role,
		RoundID:       roundID,
		EnvironmentID: msg.EnvironmentID,
		Timestamp:     s.clock.Now(),
	})
}

func (s *Service) currentSession() *roundSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session
}

func (s *Service) reply(a Admission, act domain.NegotiationAct, text string, bid *domain.Bid) domain.OutboundMessage {
	roundID := a.session.clock.State().RoundID
	if roundID == "" {
		roundID = act.Metadata.RoundID
	}

	return domain.OutboundMessage{
		ID:            uuid.NewString(),
		Text:          text,
		Speaker:       a.agentID,
		Addressee:     act.Metadata.Speaker,
		Role:          domain.RoleSeller,
		RoundID:       roundID,
		EnvironmentID: act.Metadata.EnvironmentID,
		Timestamp:     s.clock.Now(),
		Bid:           bid,
	}
}

// mayRespond applies the politeness policy. A polite agent only answers buyers
// talking to it or to nobody in particular.
func (a Admission) mayRespond(act domain.NegotiationAct) bool {
	if !a.polite {
		return true
	}
	return act.Metadata.Role == domain.RoleBuyer && (act.Metadata.Addressee == a.agentID || act.Metadata.Addressee == "")
}

func classifyRequest(in domain.InboundMessage) ports.ClassifyRequest {
	return ports.ClassifyRequest{Text: in.Text, Role: in.Role, Addressee: in.Addressee}
}

func priceString(price *domain.Price) string {
	if price == nil {
		return ""
	}
	return price.Value.String() + " " + price.Unit
}
