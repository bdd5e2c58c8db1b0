package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

// DefaultClassifierKeyRef is where the classifier API key lives in the secret
// store unless configured otherwise.
const DefaultClassifierKeyRef = "haggle/classifier/api_key"

var ErrCredentialMissing = errors.New("credential missing")

// CredentialService manages the secrets the agent needs to reach external
// services.
type CredentialService struct {
	store ports.SecretStore
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store}
}

func (s *CredentialService) Set(ctx context.Context, ref, value string) error {
	ref = refOrDefault(ref)
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: credential value is empty", domain.ErrMalformedInput)
	}

	if err := s.store.Put(ctx, ref, value); err != nil {
		return fmt.Errorf("store credential %q: %w", ref, err)
	}
	return nil
}

func (s *CredentialService) Get(ctx context.Context, ref string) (string, error) {
	ref = refOrDefault(ref)
	value, err := s.store.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, ports.ErrSecretNotFound) {
			return "", fmt.Errorf("%w: %q: %w", ErrCredentialMissing, ref, err)
		}
		return "", fmt.Errorf("load credential %q: %w", ref, err)
	}
	return value, nil
}

func (s *CredentialService) Remove(ctx context.Context, ref string) error {
	ref = refOrDefault(ref)
	if err := s.store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete credential %q: %w", ref, err)
	}
	return nil
}

// Resolve returns the inline value when set, otherwise the stored secret at
// ref. A missing stored secret is not an error: the result is empty.
func (s *CredentialService) Resolve(ctx context.Context, inline, ref string) (string, error) {
	if inline = strings.TrimSpace(inline); inline != "" {
		return inline, nil
	}

	value, err := s.Get(ctx, ref)
	if errors.Is(err, ErrCredentialMissing) {
		return "", nil
	}
	return value, err
}

func refOrDefault(ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return DefaultClassifierKeyRef
}
