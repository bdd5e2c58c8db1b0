package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/haggle/internal/adapters/secrets/file"
	passstore "github.com/bnema/haggle/internal/adapters/secrets/pass"
	"github.com/bnema/haggle/internal/ports"
)

// Store tries its backends in order. Reads and writes stop at the first
// backend that succeeds; deletes reach every backend.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNoBackends  = errors.New("secret store chain has no backends")
	errNilBackends = errors.New("secret store backend is nil")
)

func NewStore(backends ...ports.SecretStore) *Store {
	store, err := NewStoreChecked(backends...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("backend %d: %w", i, errNilBackends)
		}
	}

	return &Store{backends: append([]ports.SecretStore(nil), backends...)}, nil
}

// NewPassFirstWithFileFallback prefers pass and falls back to files under
// fileRoot.
func NewPassFirstWithFileFallback(passDir, fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(passDir), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("backend %d put failed: %w", i, err))
	}

	return errors.Join(errs...)
}

// Get returns the first value found. When every backend misses, the error
// wraps ports.ErrSecretNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d get failed: %w", i, err))
	}

	return "", errors.Join(errs...)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	deleted := false
	for i, backend := range s.backends {
		err := backend.Delete(ctx, key)
		if err == nil {
			deleted = true
			continue
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("backend %d delete failed: %w", i, err))
	}

	if deleted {
		return nil
	}
	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
