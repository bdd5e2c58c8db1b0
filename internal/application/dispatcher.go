package application

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

// Dispatcher runs admitted messages in the background and relays whatever the
// service decides to say. Callers get the admission result immediately.
type Dispatcher struct {
	service   *Service
	transport ports.Transport
	logger    *slog.Logger
	wg        conc.WaitGroup
}

func NewDispatcher(service *Service, transport ports.Transport, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{service: service, transport: transport, logger: logger}
}

// Submit admits msg and processes it asynchronously. The returned error is
// the admission failure, if any; processing failures are only logged.
func (d *Dispatcher) Submit(ctx context.Context, msg domain.InboundMessage) error {
	admission, err := d.service.Admit(msg)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	d.goSafe("process message", func() {
		d.deliver(ctx, d.service.Process(ctx, admission))
	})
	return nil
}

// Reject handles a delivery rejection and relays the courtesy message, if any,
// in the background.
func (d *Dispatcher) Reject(ctx context.Context, notice RejectionNotice) error {
	outcome := d.service.HandleRejection(ctx, notice)
	if outcome.Kind == OutcomeFailed {
		return outcome.Err
	}

	ctx = context.WithoutCancel(ctx)
	d.goSafe("relay rejection reply", func() {
		d.deliver(ctx, outcome)
	})
	return nil
}

// Wait blocks until every submitted message has been processed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) goSafe(task string, fn func()) {
	d.wg.Go(func() {
		if recovered := panics.Try(fn); recovered != nil {
			d.logger.Error("dispatcher task panicked", "task", task, "panic", recovered.Value, "stack", string(recovered.Stack))
		}
	})
}

func (d *Dispatcher) deliver(ctx context.Context, outcome Outcome) {
	switch outcome.Kind {
	case OutcomeResponded:
		msg := *outcome.Message
		if err := d.transport.Send(ctx, msg); err != nil {
			d.logger.Error("send message failed", "addressee", msg.Addressee, "id", msg.ID, "error", err)
			return
		}
		d.logger.Info("message sent", "addressee", msg.Addressee, "id", msg.ID)
	case OutcomeFailed:
		d.logger.Debug("message produced no reply", "error", outcome.Err)
	}
}
