package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultSessionEnv is the environment variable holding the test account's session token.
const DefaultSessionEnv = "NICONICO_SESSION"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Session   SessionConfig   `toml:"session"`
	Client    ClientConfig    `toml:"client"`
	Capture   CaptureConfig   `toml:"capture"`
	Samples   SamplesConfig   `toml:"samples"`
	Stabilize []StabilizeRule `toml:"stabilize"`
	Targets   []TargetConfig  `toml:"targets"`
}

// SessionConfig names where the session token comes from.
//
// Token is populated by [Config.ApplyEnv] and is never read from the file.
type SessionConfig struct {
	Env   string `toml:"env"`
	Token string `toml:"-"`
}

// ClientConfig contains niconico API client settings.
type ClientConfig struct {
	NvapiURL  string        `toml:"nvapi_url"`
	WatchURL  string        `toml:"watch_url"`
	Timeout   time.Duration `toml:"timeout"`
	UserAgent string        `toml:"user_agent"`
}

// CaptureConfig contains fixture output and pacing settings.
type CaptureConfig struct {
	FixturesDir string        `toml:"fixtures_dir"`
	MappingDir  string        `toml:"mapping_dir"`
	Limit       int           `toml:"limit"`
	Delay       time.Duration `toml:"delay"`
	FailFast    bool          `toml:"fail_fast"`
	Raw         bool          `toml:"raw"`
	Categories  []string      `toml:"categories"`
}

// SamplesConfig contains the IDs and queries owned by the test account.
type SamplesConfig struct {
	VideoID       string `toml:"video_id"`
	UserID        string `toml:"user_id"`
	MylistID      string `toml:"mylist_id"`
	SeriesID      string `toml:"series_id"`
	Keyword       string `toml:"keyword"`
	Tag           string `toml:"tag"`
	MylistKeyword string `toml:"mylist_keyword"`
	SeriesKeyword string `toml:"series_keyword"`
}

// StabilizeRule replaces the value of a matching field before a fixture is written.
type StabilizeRule struct {
	Key     string `toml:"key"`
	Value   any    `toml:"value"`
	Partial bool   `toml:"partial"`
}

// TargetConfig declares one capture target.
type TargetConfig struct {
	Category  string         `toml:"category"`
	Name      string         `toml:"name"`
	Operation string         `toml:"operation"`
	Params    map[string]any `toml:"params"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("%w: failed to write config file: %v", ErrFilesystem, err)
	}

	return nil
}

// ApplyEnv copies the session token from the environment into the config.
//
// lookup is usually [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.Session.Env == "" {
		c.Session.Env = DefaultSessionEnv
	}
	if v, ok := lookup(c.Session.Env); ok {
		c.Session.Token = strings.TrimSpace(v)
	}
}

// Validate reports configuration problems that must stop a run before any network call.
func (c *Config) Validate() error {
	if c.Session.Token == "" {
		env := c.Session.Env
		if env == "" {
			env = DefaultSessionEnv
		}
		return fmt.Errorf("%w: %s environment variable is required (export %s='your_session_token')", ErrMissingSession, env, env)
	}
	if c.Capture.FixturesDir == "" {
		return fmt.Errorf("%w: capture.fixtures_dir is empty", ErrInvalidConfig)
	}
	if c.Capture.Limit < 0 {
		return fmt.Errorf("%w: capture.limit must not be negative", ErrInvalidConfig)
	}
	if c.Capture.Delay < 0 {
		return fmt.Errorf("%w: capture.delay must not be negative", ErrInvalidConfig)
	}
	for i, rule := range c.Stabilize {
		if rule.Key == "" {
			return fmt.Errorf("%w: stabilize rule %d has no key", ErrInvalidConfig, i)
		}
	}
	return nil
}
