package dashfm

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a single HTTP exchange
const DefaultTimeout = 30 * time.Second

// Config holds connection and behaviour settings read from a YAML file
type Config struct {
	Endpoint      string        `yaml:"endpoint"`
	User          string        `yaml:"user"`
	Pass          string        `yaml:"pass"`
	Server        int           `yaml:"server"`
	BaseDir       string        `yaml:"base_dir"`
	FolderSupport bool          `yaml:"folder_support"`
	LogErrors     bool          `yaml:"log_errors"`
	PathSeparator string        `yaml:"path_separator"`
	Insecure      bool          `yaml:"insecure"`
	Timeout       time.Duration `yaml:"timeout"`
	SessionFile   string        `yaml:"session_file"`
	UserAgent     string        `yaml:"user_agent"`
	Debug         bool          `yaml:"debug"`
}

// LoadConfig reads configuration from a YAML file. The password may be left
// out; front ends prompt for it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.User == "" {
		return nil, fmt.Errorf("config missing required field: user")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PathSeparator == "" {
		cfg.PathSeparator = DefaultSeparator
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("config field timeout must be positive")
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = DefaultSessionFile(cfg.Endpoint)
	}

	return &cfg, nil
}

// Options converts the config into dashboard options
func (c *Config) Options(log logrus.FieldLogger, reporter Reporter) Options {
	return Options{
		Endpoint:      c.Endpoint,
		BaseDir:       c.BaseDir,
		FolderSupport: c.FolderSupport,
		LogErrors:     c.LogErrors,
		PathSeparator: c.PathSeparator,
		Insecure:      c.Insecure,
		Timeout:       c.Timeout,
		SessionFile:   c.SessionFile,
		UserAgent:     c.UserAgent,
		Logger:        log,
		Reporter:      reporter,
	}
}

// Session creates the session described by the config
func (c *Config) Session() *Session {
	return NewSession(c.User, c.Pass, c.Server)
}

// NewLogger returns a stderr logger at warn level, or debug level if asked
func NewLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
