// Package config loads the service configuration from an optional YAML file,
// an optional .env file and the process environment, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EngineHuggingFace    = "huggingface"
	EngineLibreTranslate = "libretranslate"
)

type Config struct {
	HTTPAddr         string `yaml:"http_addr"`
	DatabaseURL      string `yaml:"database_url"`
	DBConnectRetries int    `yaml:"db_connect_retries"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	StaticDir        string `yaml:"static_dir"`
	MediaDir         string `yaml:"media_dir"`

	// JWTSecret enables bearer-token auth on /api when non-empty.
	JWTSecret string `yaml:"jwt_secret"`

	Translate TranslateConfig `yaml:"translate"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Speech    SpeechConfig    `yaml:"speech"`
}

type TranslateConfig struct {
	Engine  string        `yaml:"engine"`
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Token   string        `yaml:"token"`
	Source  string        `yaml:"source"`
	Target  string        `yaml:"target"`
	Timeout time.Duration `yaml:"timeout"`
}

type FeedbackConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	Threshold float64       `yaml:"threshold"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Enabled reports whether a credential for the feedback service is configured.
func (c FeedbackConfig) Enabled() bool {
	return c.APIKey != ""
}

type SpeechConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Voice    string        `yaml:"voice"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		HTTPAddr:         ":8080",
		DBConnectRetries: 10,
		LogLevel:         "info",
		LogFormat:        "text",
		MediaDir:         "media",
		Translate: TranslateConfig{
			Engine:  EngineHuggingFace,
			URL:     "https://api-inference.huggingface.co",
			Model:   "Helsinki-NLP/opus-mt-ar-en",
			Source:  "ar",
			Target:  "en",
			Timeout: 60 * time.Second,
		},
		Feedback: FeedbackConfig{
			Model:     "gpt-3.5-turbo",
			Threshold: 0.8,
			Timeout:   15 * time.Second,
		},
		Speech: SpeechConfig{
			Voice:    "en-US-Standard-F",
			Language: "en-US",
			Timeout:  20 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// environment (and a .env file in the working directory, if any) is used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decodeYAML(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of the defaults without looking
// at the environment.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	envString("HTTP_ADDR", &cfg.HTTPAddr)
	envString("DATABASE_URL", &cfg.DatabaseURL)
	envInt("DB_CONNECT_RETRIES", &cfg.DBConnectRetries)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)
	envString("STATIC_DIR", &cfg.StaticDir)
	envString("MEDIA_DIR", &cfg.MediaDir)
	envString("JWT_SECRET", &cfg.JWTSecret)

	envString("TRANSLATE_ENGINE", &cfg.Translate.Engine)
	envString("TRANSLATE_URL", &cfg.Translate.URL)
	envString("TRANSLATE_MODEL", &cfg.Translate.Model)
	envString("HF_TOKEN", &cfg.Translate.Token)
	envString("TRANSLATE_TOKEN", &cfg.Translate.Token)
	envDuration("TRANSLATE_TIMEOUT", &cfg.Translate.Timeout)

	envString("OPENAI_API_KEY", &cfg.Feedback.APIKey)
	envString("OPENAI_BASE_URL", &cfg.Feedback.BaseURL)
	envString("FEEDBACK_MODEL", &cfg.Feedback.Model)
	envDuration("FEEDBACK_TIMEOUT", &cfg.Feedback.Timeout)

	envBool("SPEECH_ENABLED", &cfg.Speech.Enabled)
	envString("SPEECH_VOICE", &cfg.Speech.Voice)
	envDuration("SPEECH_TIMEOUT", &cfg.Speech.Timeout)
}

// Validate checks cfg and returns every problem it finds joined together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("config: DATABASE_URL is required"))
	}
	if cfg.DBConnectRetries < 1 {
		errs = append(errs, fmt.Errorf("config: db_connect_retries must be positive, got %d", cfg.DBConnectRetries))
	}

	switch cfg.Translate.Engine {
	case EngineHuggingFace, EngineLibreTranslate:
	default:
		errs = append(errs, fmt.Errorf("config: unknown translate engine %q (supported: %s, %s)",
			cfg.Translate.Engine, EngineHuggingFace, EngineLibreTranslate))
	}
	if cfg.Translate.URL == "" {
		errs = append(errs, errors.New("config: translate url is required"))
	}

	if cfg.Translate.Timeout <= 0 {
		errs = append(errs, errors.New("config: translate timeout must be positive"))
	}
	if cfg.Feedback.Timeout <= 0 {
		errs = append(errs, errors.New("config: feedback timeout must be positive"))
	}
	if cfg.Speech.Timeout <= 0 {
		errs = append(errs, errors.New("config: speech timeout must be positive"))
	}
	if cfg.Feedback.Threshold < 0 || cfg.Feedback.Threshold > 1 {
		errs = append(errs, fmt.Errorf("config: feedback threshold must be within [0, 1], got %v", cfg.Feedback.Threshold))
	}

	return errors.Join(errs...)
}
