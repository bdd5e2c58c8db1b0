// Package profile reads and writes seller utility profiles as TOML or YAML
// files.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bnema/haggle/internal/domain"
)

const (
	profileFileMode = 0o644
	profileDirMode  = 0o755
	tempFilePattern = ".profile-*.tmp"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported profile format")

// FormatFor picks the file format from the path extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func Load(path string) (domain.UtilityProfile, error) {
	format, err := FormatFor(path)
	if err != nil {
		return domain.UtilityProfile{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UtilityProfile{}, fmt.Errorf("read profile file: %w", err)
	}

	return Decode(data, format)
}

func Decode(data []byte, format Format) (domain.UtilityProfile, error) {
	var file fileSchema
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return domain.UtilityProfile{}, fmt.Errorf("decode profile file: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return domain.UtilityProfile{}, fmt.Errorf("decode profile file: %w", err)
		}
	default:
		return domain.UtilityProfile{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := file.validateVersion(); err != nil {
		return domain.UtilityProfile{}, err
	}
	file.applyDefaults()

	profile := fromSchema(file)
	if err := profile.Validate(); err != nil {
		return domain.UtilityProfile{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	return profile, nil
}

func Encode(profile domain.UtilityProfile, format Format) ([]byte, error) {
	file := toSchema(profile)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(file)
	case FormatYAML:
		data, err = yaml.Marshal(file)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode profile file: %w", err)
	}
	return data, nil
}

// Save writes profile to path through a temp file and rename.
func Save(path string, profile domain.UtilityProfile) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}

	data, err := Encode(profile, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), profileDirMode); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profile file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp profile file: %w", err)
	}

	if err := tempFile.Chmod(profileFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp profile file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp profile file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace profile file: %w", err)
	}

	cleanup = false
	return nil
}
