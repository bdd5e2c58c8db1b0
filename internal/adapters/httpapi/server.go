package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const readHeaderTimeout = 10 * time.Second

// Server wraps an HTTP server with the agent routes.
type Server struct {
	httpServer *http.Server
}

func NewServer(h *Handler, listenAddr string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              listenAddr,
			Handler:           Routes(h),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Routes builds the route table. It is exported for tests and embedding.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(h.logger()))
	r.Use(middleware.Recoverer)

	// Round lifecycle.
	r.Post("/setUtility", h.SetUtility)
	r.Post("/startRound", h.StartRound)
	r.Post("/endRound", h.EndRound)

	// Negotiation traffic.
	r.Post("/receiveMessage", h.ReceiveMessage)
	r.Post("/receiveRejection", h.ReceiveRejection)

	// Diagnostics.
	r.Get("/classifyMessage", h.ClassifyText)
	r.Post("/classifyMessage", h.ClassifyMessage)
	r.Post("/extractBid", h.ExtractBid)
	r.Get("/reportUtility", h.ReportUtility)
	r.Get("/healthz", h.Health)

	return r
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address. It blocks until the server stops.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// accessLog writes one info record per request. It sits outside Recoverer so
// a recovered panic is logged with its 500.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(started),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
