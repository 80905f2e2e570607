package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "novatone"

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // local folders exposed through the local source

	Sources   SourcesConfig   `koanf:"sources"`
	Effects   EffectsConfig   `koanf:"effects"`
	Assistant AssistantConfig `koanf:"assistant"`
	Cache     CacheConfig     `koanf:"cache"`
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Library   LibraryConfig   `koanf:"library"`

	// Last.fm scrobbling (enabled when api key, secret and session key are set)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// SourcesConfig holds remote provider settings.
type SourcesConfig struct {
	Order             []string `koanf:"order"`               // provider order for interleaving
	JamendoClientID   string   `koanf:"jamendo_client_id"`   // Jamendo API client id
	AudiusAppName     string   `koanf:"audius_app_name"`     // app_name sent to Audius
	PageSize          int      `koanf:"page_size"`           // results per page for Jamendo, HearThis, Archive and local (default: 40)
	AudiusPageSize    int      `koanf:"audius_page_size"`    // results per page for Audius (default: 50)
	TimeoutSeconds    int      `koanf:"timeout_seconds"`     // per-call timeout (default: 8)
	RequestsPerSecond float64  `koanf:"requests_per_second"` // per-provider rate limit (default: 5)
}

// EffectsConfig holds audio engine settings.
type EffectsConfig struct {
	BassFrequency float64   `koanf:"bass_frequency"` // low-shelf corner in Hz (default: 150)
	Bands         []float64 `koanf:"bands"`          // equalizer center frequencies
	FrameRate     int       `koanf:"frame_rate"`     // spatial animation ticks per second (default: 60)
	SampleRate    int       `koanf:"sample_rate"`    // output sample rate (default: 44100)
}

// AssistantConfig holds the chat assistant endpoint settings.
type AssistantConfig struct {
	BaseURL        string  `koanf:"base_url"`
	APIKey         string  `koanf:"api_key"`
	Model          string  `koanf:"model"`
	MaxTokens      int     `koanf:"max_tokens"`
	Temperature    float64 `koanf:"temperature"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
}

// CacheConfig holds the response cache settings. Empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	TTLMinutes    int    `koanf:"ttl_minutes"` // default: 10
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string `koanf:"level"`
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LibraryConfig holds the local database settings.
type LibraryConfig struct {
	DBPath string `koanf:"db_path"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// Load reads the default config files, then extra, then environment secrets.
func Load(extra ...string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load() //nolint:errcheck // optional file

	return LoadFrom(append(getConfigPaths(), extra...)...)
}

// LoadFrom reads the given TOML files in order (last wins). Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Library.DBPath = expandPath(cfg.Library.DBPath)
	cfg.Assistant.BaseURL = strings.TrimSuffix(cfg.Assistant.BaseURL, "/")

	applyEnv(cfg)

	return cfg, nil
}

// applyEnv overrides secrets from the environment.
func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"NOVATONE_AI_API_KEY", &cfg.Assistant.APIKey},
		{"NOVATONE_JAMENDO_CLIENT_ID", &cfg.Sources.JamendoClientID},
		{"NOVATONE_LASTFM_API_KEY", &cfg.Lastfm.APIKey},
		{"NOVATONE_LASTFM_API_SECRET", &cfg.Lastfm.APISecret},
		{"NOVATONE_LASTFM_SESSION_KEY", &cfg.Lastfm.SessionKey},
		{"NOVATONE_REDIS_PASSWORD", &cfg.Cache.RedisPassword},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/novatone/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != "" && c.Lastfm.SessionKey != ""
}

// HasAssistantConfig returns true if the chat assistant has credentials.
func (c *Config) HasAssistantConfig() bool {
	return c.Assistant.APIKey != ""
}

// HasCacheConfig returns true if a Redis response cache is configured.
func (c *Config) HasCacheConfig() bool {
	return c.Cache.RedisAddr != ""
}

var defaultOrder = []string{"jamendo", "audius", "hearthis", "archive"}

// GetSourcesConfig returns the provider configuration with defaults applied.
func (c *Config) GetSourcesConfig() SourcesConfig {
	cfg := c.Sources

	if len(cfg.Order) == 0 {
		cfg.Order = append([]string(nil), defaultOrder...)
	}
	if cfg.JamendoClientID == "" {
		cfg.JamendoClientID = "56d30c95"
	}
	if cfg.AudiusAppName == "" {
		cfg.AudiusAppName = "NOVATONE"
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 200 {
		cfg.PageSize = 40
	}
	if cfg.AudiusPageSize <= 0 || cfg.AudiusPageSize > 200 {
		cfg.AudiusPageSize = 50
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 8
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	return cfg
}

var defaultBands = []float64{60, 230, 910, 3600, 14000}

// GetEffectsConfig returns the audio engine configuration with defaults applied.
func (c *Config) GetEffectsConfig() EffectsConfig {
	cfg := c.Effects

	if cfg.BassFrequency <= 0 {
		cfg.BassFrequency = 150
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = append([]float64(nil), defaultBands...)
	}
	if cfg.FrameRate <= 0 || cfg.FrameRate > 240 {
		cfg.FrameRate = 60
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}

	return cfg
}

// GetAssistantConfig returns the assistant configuration with defaults applied.
func (c *Config) GetAssistantConfig() AssistantConfig {
	cfg := c.Assistant

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Temperature <= 0 || cfg.Temperature > 2 {
		cfg.Temperature = 0.7
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}

	return cfg
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.TTLMinutes <= 0 {
		cfg.TTLMinutes = 10
	}
	return cfg
}

// GetServerConfig returns the server configuration with defaults applied.
func (c *Config) GetServerConfig() ServerConfig {
	cfg := c.Server
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8686"
	}
	return cfg
}

// DBPath returns the library database path, defaulting to the XDG data dir.
func (c *Config) DBPath() (string, error) {
	if c.Library.DBPath != "" {
		return c.Library.DBPath, nil
	}
	return xdg.DataFile(filepath.Join(appName, appName+".db"))
}
