package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/domain"
)

func TestLoadTOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bakery.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Celia"
currency_unit = "USD"

[goods.egg]
unit_cost = 0.1

[goods.flour]
unit_cost = 0.25
`), 0o600))

	profile, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Celia", profile.Name)
	assert.Equal(t, "USD", profile.CurrencyUnit)
	assert.True(t, decimal.RequireFromString("0.1").Equal(profile.UnitCosts["egg"]))
	assert.True(t, decimal.RequireFromString("0.25").Equal(profile.UnitCosts["flour"]))
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bakery.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
currency_unit: EUR
goods:
  milk:
    unit_cost: 0.15
  water:
    unit_cost: 0
`), 0o600))

	profile, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR", profile.CurrencyUnit)
	assert.True(t, decimal.RequireFromString("0.15").Equal(profile.UnitCosts["milk"]))
	assert.True(t, profile.UnitCosts["water"].IsZero())
}

func TestLoadRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "unknown extension", file: "bakery.json", content: `{}`, wantErr: ErrUnsupportedFormat},
		{name: "missing currency", file: "bakery.toml", content: "[goods.egg]\nunit_cost = 0.1\n", wantErr: domain.ErrMalformedInput},
		{name: "negative cost", file: "bakery.yaml", content: "currency_unit: USD\ngoods:\n  egg:\n    unit_cost: -1\n", wantErr: domain.ErrMalformedInput},
		{name: "no goods", file: "bakery.toml", content: "currency_unit = \"USD\"\n", wantErr: domain.ErrMalformedInput},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			_, err := Load(path)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bakery.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 9\ncurrency_unit = \"USD\"\n[goods.egg]\nunit_cost = 0.1\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported profile schema version 9")
}

func TestSaveRoundTripsBothFormats(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"nested/profile.toml", "nested/profile.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Save(path, Sample()))

		loaded, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, Sample().CurrencyUnit, loaded.CurrencyUnit)
		assert.Equal(t, Goods(Sample()), Goods(loaded))
		for good, cost := range Sample().UnitCosts {
			assert.True(t, cost.Equal(loaded.UnitCosts[good]), "%s in %s", good, name)
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files must not be left behind")
	}
}

func TestSaveRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	err := Save(filepath.Join(t.TempDir(), "p.toml"), domain.UtilityProfile{})
	require.ErrorIs(t, err, domain.ErrMalformedInput)
}
