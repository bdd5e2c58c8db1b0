package ports

import (
	"context"

	"github.com/bnema/haggle/internal/domain"
)

type Transport interface {
	Send(ctx context.Context, msg domain.OutboundMessage) error
}
