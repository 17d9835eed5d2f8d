package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "UPLOADER_"

// Config holds the application configuration
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Display    DisplayConfig    `yaml:"display"`
	Watch      WatchConfig      `yaml:"watch"`
	Stub       StubConfig       `yaml:"stub"`
}

// ClassifierConfig holds the remote classification endpoint settings
type ClassifierConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServerConfig holds the web front settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`

	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DisplayConfig selects how results are rendered into the output element
type DisplayConfig struct {
	Format string `yaml:"format"`
}

// WatchConfig holds the watch-folder selection source settings
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
}

// StubConfig holds the local stub classification endpoint settings
type StubConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Label          string `yaml:"label"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Endpoint: "http://127.0.0.1:5000/predict",
			Timeout:  30 * time.Second,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "debug",

			MaxUploadBytes: 10 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Display: DisplayConfig{
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce:   500 * time.Millisecond,
			Extensions: []string{"jpg", "jpeg", "png", "gif"},
		},
		Stub: StubConfig{
			Host:           "127.0.0.1",
			Port:           5000,
			Label:          "Basmati",
			MaxUploadBytes: 10 << 20,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// a .env file in the working directory and UPLOADER_* environment variables,
// in that order of precedence (later wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Classifier.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid classifier endpoint: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid classifier endpoint %q: must be an absolute URL", c.Classifier.Endpoint)
	}
	if c.Classifier.Timeout < 0 {
		return errors.New("classifier timeout must not be negative")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q: want debug, release or test", c.Server.Mode)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server max upload bytes must be positive")
	}
	switch c.Display.Format {
	case "text", "html":
	default:
		return fmt.Errorf("invalid display format %q: want text or html", c.Display.Format)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString("CLASSIFIER_ENDPOINT", &c.Classifier.Endpoint)
	if err := setDuration("CLASSIFIER_TIMEOUT", &c.Classifier.Timeout); err != nil {
		return err
	}

	setString("SERVER_HOST", &c.Server.Host)
	if err := setInt("SERVER_PORT", &c.Server.Port); err != nil {
		return err
	}
	setString("SERVER_MODE", &c.Server.Mode)
	if err := setInt64("SERVER_MAX_UPLOAD_BYTES", &c.Server.MaxUploadBytes); err != nil {
		return err
	}

	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("LOG_OUTPUT", &c.Log.Output)

	setString("DISPLAY_FORMAT", &c.Display.Format)

	if err := setDuration("WATCH_DEBOUNCE", &c.Watch.Debounce); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvPrefix + "WATCH_EXTENSIONS"); ok {
		c.Watch.Extensions = splitList(v)
	}

	setString("STUB_HOST", &c.Stub.Host)
	if err := setInt("STUB_PORT", &c.Stub.Port); err != nil {
		return err
	}
	setString("STUB_LABEL", &c.Stub.Label)
	if err := setInt64("STUB_MAX_UPLOAD_BYTES", &c.Stub.MaxUploadBytes); err != nil {
		return err
	}

	return nil
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func setInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func setDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
