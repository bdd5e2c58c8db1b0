package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/haggle/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

const notInStoreMarker = "is not in the password store"

type runFunc func(ctx context.Context, env []string, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps secrets in the pass password manager. Dir overrides
// PASSWORD_STORE_DIR when set.
type Store struct {
	Dir string
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(dir string) *Store {
	return &Store{Dir: dir, run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, s.env(), value+"\n", "insert", "-m", "-f", key)
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, s.env(), "", "show", key)
	if err != nil {
		if strings.Contains(stderr, notInStoreMarker) {
			return "", fmt.Errorf("pass get %q: %w", key, ports.ErrSecretNotFound)
		}
		return "", formatError("get", key, err, stderr)
	}

	// pass prints multi-line entries; the secret is the first line.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, s.env(), "", "rm", "-f", key)
	if err != nil {
		if strings.Contains(stderr, notInStoreMarker) {
			return nil
		}
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func (s *Store) env() []string {
	if s.Dir == "" {
		return nil
	}
	return []string{"PASSWORD_STORE_DIR=" + s.Dir}
}

func runPassCommand(ctx context.Context, env []string, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
