package ports

import (
	"context"

	"github.com/bnema/haggle/internal/domain"
)

type ClassifyRequest struct {
	Text      string
	Role      domain.Role
	Addressee string
}

// Classifier turns free text into intents and entities. Implementations wrap
// transport and auth failures with domain.ErrClassificationUnavailable.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (domain.Classification, error)
}
