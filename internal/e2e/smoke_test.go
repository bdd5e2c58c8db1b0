package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	profilePath := filepath.Join(home, "bakery.yaml")

	_, stderr, err := runHaggle(t, binaryPath, home, "profile", "init", profilePath)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runHaggle(t, binaryPath, home, "profile", "show", profilePath)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "currency: USD")

	stdout, stderr, err = runHaggle(t, binaryPath, home,
		"quote",
		"--profile", profilePath,
		"--good", "egg=12",
		"--good", "milk=2",
		"--price", "40",
	)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "accept at 40.00 USD")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "haggle-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/haggle")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build haggle binary: %s", string(output))
	return binaryPath
}

func runHaggle(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)
	cmd.Dir = home

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
