package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/pelletier/go-toml/v2"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means fasthttp's default
	DefaultSearchLimit    = 50
	DefaultMaxCandidates  = 100000
)

// Config is the server configuration. It is read from an optional TOML file;
// flags given on the command line override the file.
type Config struct {
	Port           int      `toml:"port"`
	ReadTimeout    string   `toml:"read_timeout"`
	WriteTimeout   string   `toml:"write_timeout"`
	MaxRequestSize int      `toml:"max_request_size"`
	Concurrency    int      `toml:"concurrency"`
	WarmUp         bool     `toml:"warm_up"`
	LogFile        string   `toml:"log_file"`
	Threshold      float64  `toml:"threshold"`
	Algorithm      string   `toml:"algorithm"`
	Normalizer     string   `toml:"normalizer"`
	SearchWorkers  int      `toml:"search_workers"`
	SearchLimit    int      `toml:"search_limit"`
	MaxCandidates  int      `toml:"max_candidates"`
	WatchDirs      []string `toml:"watch_dirs"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		ReadTimeout:    DefaultReadTimeout.String(),
		WriteTimeout:   DefaultWriteTimeout.String(),
		MaxRequestSize: DefaultMaxRequestSize,
		Concurrency:    DefaultConcurrency,
		WarmUp:         true,
		Threshold:      filenamesimilarity.DefaultThreshold,
		Algorithm:      "levenshtein",
		Normalizer:     "canonical",
		SearchLimit:    DefaultSearchLimit,
		MaxCandidates:  DefaultMaxCandidates,
	}
}

// ReadTimeoutDuration returns the parsed read timeout.
func (c Config) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// WriteTimeoutDuration returns the parsed write timeout.
func (c Config) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// Validate checks the values that cannot be caught by the library constructors.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := time.ParseDuration(c.ReadTimeout); err != nil {
		return fmt.Errorf("invalid read_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if c.MaxRequestSize <= 0 {
		return errors.New("max_request_size must be positive")
	}
	if c.MaxCandidates <= 0 {
		return errors.New("max_candidates must be positive")
	}
	if _, err := normalizer.ParseNormalizerType(c.Normalizer); err != nil {
		return err
	}
	return nil
}

// loadConfigFile overlays the TOML file at path onto cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// parseConfig builds the configuration from command-line arguments.
func parseConfig(args []string) (Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a TOML configuration file")
	port := fs.Int("port", cfg.Port, "HTTP server port")
	readTimeout := fs.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := fs.Int("max-request-size", cfg.MaxRequestSize, "Maximum request size in bytes")
	concurrency := fs.Int("concurrency", cfg.Concurrency, "Maximum number of concurrent connections (0 = fasthttp default)")
	warmUp := fs.Bool("warm-up", cfg.WarmUp, "Perform system warm-up on startup")
	logFile := fs.String("log-file", cfg.LogFile, "Log file path (empty = stdout)")
	threshold := fs.Float64("threshold", cfg.Threshold, "Similarity threshold (0.0-1.0), matched strictly above")
	algorithm := fs.String("algorithm", cfg.Algorithm, "Similarity algorithm")
	norm := fs.String("normalizer", cfg.Normalizer, "Normalizer: 'canonical' or 'width-folding'")
	searchWorkers := fs.Int("search-workers", cfg.SearchWorkers, "Goroutines per search (0 = NumCPU)")
	searchLimit := fs.Int("search-limit", cfg.SearchLimit, "Default maximum number of search hits")
	maxCandidates := fs.Int("max-candidates", cfg.MaxCandidates, "Maximum number of candidates per search request")
	var watchDirs stringList
	fs.Var(&watchDirs, "watch", "Download directory to reconcile against (repeatable)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configFile != "" {
		if err := loadConfigFile(*configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "read-timeout":
			cfg.ReadTimeout = readTimeout.String()
		case "write-timeout":
			cfg.WriteTimeout = writeTimeout.String()
		case "max-request-size":
			cfg.MaxRequestSize = *maxRequestSize
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "warm-up":
			cfg.WarmUp = *warmUp
		case "log-file":
			cfg.LogFile = *logFile
		case "threshold":
			cfg.Threshold = *threshold
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "normalizer":
			cfg.Normalizer = *norm
		case "search-workers":
			cfg.SearchWorkers = *searchWorkers
		case "search-limit":
			cfg.SearchLimit = *searchLimit
		case "max-candidates":
			cfg.MaxCandidates = *maxCandidates
		case "watch":
			cfg.WatchDirs = watchDirs
		}
	})

	return cfg, cfg.Validate()
}

type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
