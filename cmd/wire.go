package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bnema/haggle/internal/adapters/classifier/assistant"
	"github.com/bnema/haggle/internal/adapters/httpapi"
	quoteview "github.com/bnema/haggle/internal/adapters/render/quote"
	"github.com/bnema/haggle/internal/adapters/render/text"
	chainstore "github.com/bnema/haggle/internal/adapters/secrets/chain"
	"github.com/bnema/haggle/internal/adapters/transport/relay"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/config"
	"github.com/bnema/haggle/internal/logging"
	"github.com/bnema/haggle/internal/ports"
)

type app struct {
	cfg         config.Config
	logger      *slog.Logger
	secretStore ports.SecretStore
	credentials *application.CredentialService
	random      ports.Random
	clock       ports.Clock
	quoteView   func(application.Quote) (string, error)
	httpClient  *http.Client
}

func wireApp(cfg config.Config, logOutput io.Writer) (*app, error) {
	logger, err := logging.New(logOutput, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(cfg.Secrets.PassDir, cfg.Secrets.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		secretStore: secretStore,
		credentials: application.NewCredentialService(secretStore),
		random:      ports.NewRandom(cfg.Random.Seed),
		clock:       ports.SystemClock{},
		quoteView:   quoteview.Render,
		httpClient:  http.DefaultClient,
	}, nil
}

// classifier builds the assistant client, resolving the API key from the
// inline setting first and the secret store second.
func (a *app) classifier(ctx context.Context) (*assistant.Client, error) {
	if err := a.cfg.RequireClassifier(); err != nil {
		return nil, err
	}

	apiKey, err := a.credentials.Resolve(ctx, a.cfg.Classifier.APIKey, a.cfg.Classifier.APIKeyRef)
	if err != nil {
		return nil, fmt.Errorf("resolve classifier api key: %w", err)
	}
	if apiKey == "" {
		a.logger.Warn("no classifier api key configured", "ref", a.cfg.Classifier.APIKeyRef)
	}

	return &assistant.Client{
		API: assistant.API{
			BaseURL:     a.cfg.Classifier.BaseURL,
			AssistantID: a.cfg.Classifier.AssistantID,
			Version:     a.cfg.Classifier.Version,
		},
		APIKey:         apiKey,
		HTTPClient:     a.httpClient,
		RequestTimeout: a.cfg.Classifier.Timeout,
	}, nil
}

func (a *app) relay() (relay.Client, error) {
	if err := a.cfg.RequireRelay(); err != nil {
		return relay.Client{}, err
	}
	return relay.Client{
		API:            relay.API{BaseURL: a.cfg.Relay.BaseURL, Path: a.cfg.Relay.Path},
		HTTPClient:     a.httpClient,
		RequestTimeout: a.cfg.Relay.Timeout,
	}, nil
}

func (a *app) service(classifier ports.Classifier) *application.Service {
	return application.NewService(classifier, text.NewRenderer(a.random), a.random, a.clock, application.Options{
		AgentID:         a.cfg.Agent.Name,
		Polite:          a.cfg.Agent.Polite,
		DefaultCurrency: a.cfg.Agent.DefaultCurrency,
		RoundDuration:   a.cfg.Round.DefaultDuration,
		Logger:          a.logger,
	})
}

func (a *app) quoter(random ports.Random) *application.Quoter {
	return application.NewQuoter(application.NewBidEngine(random), text.NewRenderer(random))
}

// agent wires the full serving stack: classifier, service, relay transport,
// dispatcher and HTTP handler.
type agent struct {
	service    *application.Service
	dispatcher *application.Dispatcher
	handler    *httpapi.Handler
}

func (a *app) agent(ctx context.Context) (*agent, error) {
	classifier, err := a.classifier(ctx)
	if err != nil {
		return nil, err
	}
	transport, err := a.relay()
	if err != nil {
		return nil, err
	}

	service := a.service(classifier)
	dispatcher := application.NewDispatcher(service, transport, a.logger)
	return &agent{
		service:    service,
		dispatcher: dispatcher,
		handler: &httpapi.Handler{
			Service:        service,
			Dispatcher:     dispatcher,
			Clock:          a.clock,
			Logger:         a.logger,
			DefaultSpeaker: httpapi.DefaultSpeaker,
		},
	}, nil
}
