// Package config loads agent settings from defaults, an optional TOML file,
// an optional .env file and HAGGLE_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".haggle"
	envPrefix  = "HAGGLE"

	KeyAgentName          = "agent.name"
	KeyAgentPolite        = "agent.polite"
	KeyAgentCurrency      = "agent.default_currency"
	KeyServerListen       = "server.listen"
	KeyRoundDuration      = "round.default_duration"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeyClassifierBaseURL  = "classifier.base_url"
	KeyClassifierID       = "classifier.assistant_id"
	KeyClassifierVersion  = "classifier.version"
	KeyClassifierAPIKey   = "classifier.api_key"
	KeyClassifierKeyRef   = "classifier.api_key_ref"
	KeyClassifierTimeout  = "classifier.timeout"
	KeyRelayBaseURL       = "relay.base_url"
	KeyRelayPath          = "relay.path"
	KeyRelayTimeout       = "relay.timeout"
	KeyRandomSeed         = "random.seed"
	KeySecretsDir         = "secrets.dir"
	KeySecretsPassDir     = "secrets.pass_dir"
	KeyProfilePath        = "profile.path"
	defaultEnvFile        = ".env"
	defaultClassifierVer  = "2020-04-01"
	defaultClassifierKey  = "haggle/classifier/api_key"
	defaultRelayPath      = "/relayMessage"
	defaultRelayBaseURL   = "http://localhost:14010"
	defaultListenAddress  = ":14007"
	defaultAgentName      = "Agent007"
	defaultCurrency       = "USD"
	defaultLogFormat      = "text"
	defaultRoundDuration  = 600 * time.Second
	defaultClassifierWait = 15 * time.Second
	defaultRelayWait      = 10 * time.Second
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Agent      AgentConfig
	Server     ServerConfig
	Round      RoundConfig
	Log        LogConfig
	Classifier ClassifierConfig
	Relay      RelayConfig
	Random     RandomConfig
	Secrets    SecretsConfig
	Profile    ProfileConfig
	// File is the config file that was read, if any.
	File string
}

type AgentConfig struct {
	Name            string
	Polite          bool
	DefaultCurrency string
}

type ServerConfig struct {
	Listen string
}

type RoundConfig struct {
	DefaultDuration time.Duration
}

type LogConfig struct {
	Level  int
	Format string
}

type ClassifierConfig struct {
	BaseURL     string
	AssistantID string
	Version     string
	APIKey      string
	APIKeyRef   string
	Timeout     time.Duration
}

type RelayConfig struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

type RandomConfig struct {
	// Seed 0 means time seeded.
	Seed uint64
}

type SecretsConfig struct {
	Dir     string
	PassDir string
}

type ProfileConfig struct {
	Path string
}

type LoadOptions struct {
	// ConfigFile overrides the default $HOME/.haggle/config.toml lookup.
	ConfigFile string
	// EnvFile defaults to .env in the working directory. A missing file is
	// ignored.
	EnvFile string
	HomeDir string
}

// New returns a viper instance with every default registered and the
// environment bound.
func New(homeDir string) *viper.Viper {
	v := viper.New()
	setDefaults(v, homeDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into v. Flags bound to v before Load take
// precedence over every other source.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v.SetConfigType(configType)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		if opts.HomeDir != "" {
			v.AddConfigPath(filepath.Join(opts.HomeDir, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyAgentName, defaultAgentName)
	v.SetDefault(KeyAgentPolite, false)
	v.SetDefault(KeyAgentCurrency, defaultCurrency)
	v.SetDefault(KeyServerListen, defaultListenAddress)
	v.SetDefault(KeyRoundDuration, defaultRoundDuration)
	v.SetDefault(KeyLogLevel, 1)
	v.SetDefault(KeyLogFormat, defaultLogFormat)
	v.SetDefault(KeyClassifierBaseURL, "")
	v.SetDefault(KeyClassifierID, "")
	v.SetDefault(KeyClassifierVersion, defaultClassifierVer)
	v.SetDefault(KeyClassifierAPIKey, "")
	v.SetDefault(KeyClassifierKeyRef, defaultClassifierKey)
	v.SetDefault(KeyClassifierTimeout, defaultClassifierWait)
	v.SetDefault(KeyRelayBaseURL, defaultRelayBaseURL)
	v.SetDefault(KeyRelayPath, defaultRelayPath)
	v.SetDefault(KeyRelayTimeout, defaultRelayWait)
	v.SetDefault(KeyRandomSeed, 0)
	v.SetDefault(KeySecretsPassDir, "")
	v.SetDefault(KeyProfilePath, "")
	if homeDir != "" {
		v.SetDefault(KeySecretsDir, filepath.Join(homeDir, configDir, "secrets"))
	} else {
		v.SetDefault(KeySecretsDir, "")
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Agent: AgentConfig{
			Name:            strings.TrimSpace(v.GetString(KeyAgentName)),
			Polite:          v.GetBool(KeyAgentPolite),
			DefaultCurrency: strings.TrimSpace(v.GetString(KeyAgentCurrency)),
		},
		Server: ServerConfig{Listen: v.GetString(KeyServerListen)},
		Round:  RoundConfig{DefaultDuration: v.GetDuration(KeyRoundDuration)},
		Log: LogConfig{
			Level:  v.GetInt(KeyLogLevel),
			Format: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		},
		Classifier: ClassifierConfig{
			BaseURL:     strings.TrimSpace(v.GetString(KeyClassifierBaseURL)),
			AssistantID: strings.TrimSpace(v.GetString(KeyClassifierID)),
			Version:     v.GetString(KeyClassifierVersion),
			APIKey:      v.GetString(KeyClassifierAPIKey),
			APIKeyRef:   v.GetString(KeyClassifierKeyRef),
			Timeout:     v.GetDuration(KeyClassifierTimeout),
		},
		Relay: RelayConfig{
			BaseURL: strings.TrimSpace(v.GetString(KeyRelayBaseURL)),
			Path:    v.GetString(KeyRelayPath),
			Timeout: v.GetDuration(KeyRelayTimeout),
		},
		Random:  RandomConfig{Seed: v.GetUint64(KeyRandomSeed)},
		Secrets: SecretsConfig{Dir: v.GetString(KeySecretsDir), PassDir: v.GetString(KeySecretsPassDir)},
		Profile: ProfileConfig{Path: v.GetString(KeyProfilePath)},
		File:    v.ConfigFileUsed(),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Agent.Name == "" {
		problems = append(problems, KeyAgentName+" is required")
	}
	if c.Agent.DefaultCurrency == "" {
		problems = append(problems, KeyAgentCurrency+" is required")
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		problems = append(problems, KeyServerListen+" is required")
	}
	if c.Round.DefaultDuration <= 0 {
		problems = append(problems, KeyRoundDuration+" must be positive")
	}
	if c.Log.Level < 1 || c.Log.Level > 3 {
		problems = append(problems, fmt.Sprintf("%s must be between 1 and 3, got %d", KeyLogLevel, c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("%s must be text or json, got %q", KeyLogFormat, c.Log.Format))
	}
	if c.Classifier.BaseURL != "" {
		if err := checkHTTPURL(c.Classifier.BaseURL); err != nil {
			problems = append(problems, KeyClassifierBaseURL+" "+err.Error())
		}
	}
	if c.Classifier.Timeout <= 0 {
		problems = append(problems, KeyClassifierTimeout+" must be positive")
	}
	if c.Relay.BaseURL != "" {
		if err := checkHTTPURL(c.Relay.BaseURL); err != nil {
			problems = append(problems, KeyRelayBaseURL+" "+err.Error())
		}
	}
	if c.Relay.Timeout <= 0 {
		problems = append(problems, KeyRelayTimeout+" must be positive")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// RequireClassifier checks the settings needed to reach the classifier.
func (c Config) RequireClassifier() error {
	var problems []string
	if c.Classifier.BaseURL == "" {
		problems = append(problems, KeyClassifierBaseURL+" is required")
	}
	if c.Classifier.AssistantID == "" {
		problems = append(problems, KeyClassifierID+" is required")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// RequireRelay checks the settings needed to send messages.
func (c Config) RequireRelay() error {
	if c.Relay.BaseURL == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeyRelayBaseURL)
	}
	return nil
}

func checkHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// HomeDir returns the user's home directory, or "" when it cannot be
// resolved.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
