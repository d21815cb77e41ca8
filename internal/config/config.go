package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-triage/internal/utils"
)

// Config captures the settings required to boot the triage service and CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Committee CommitteeConfig `yaml:"committee"`
	Cache     CacheConfig     `yaml:"cache"`
	Client    ClientConfig    `yaml:"client"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	LatencyReport   time.Duration `yaml:"latencyReport"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CommitteeConfig is the fidelity committee policy.
type CommitteeConfig struct {
	Thresholds          ThresholdsConfig `yaml:"thresholds"`
	Scale               float64          `yaml:"scale"`
	Indicators          IndicatorsConfig `yaml:"indicators"`
	SignaturesPath      string           `yaml:"signaturesPath"`
	RecommendationsPath string           `yaml:"recommendationsPath"`
}

// ThresholdsConfig holds the minimum score for each severity above Low.
type ThresholdsConfig struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
}

// IndicatorsConfig lists local threat intelligence entries.
type IndicatorsConfig struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// CacheConfig controls result caching. Backend is "memory" or "redis".
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Backend      string        `yaml:"backend"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	Capacity     uint64        `yaml:"capacity"`
	RankingTTL   time.Duration `yaml:"rankingTTL"`
	PlaybookTTL  time.Duration `yaml:"playbookTTL"`
}

// ClientConfig configures the remote CLI client.
type ClientConfig struct {
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`
	Retries uint          `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MIRADOR_TRIAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, utils.NewAppError("load config", "file "+path+" not found", err)
			}
			return nil, utils.NewAppError("load config", "read "+path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, utils.NewAppError("load config", "parse "+path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			LatencyReport:   time.Minute,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Committee: CommitteeConfig{
			Thresholds: ThresholdsConfig{Critical: 85, High: 60, Medium: 30},
			Scale:      20,
		},
		Cache: CacheConfig{
			Enabled:      false,
			Backend:      "memory",
			Capacity:     10000,
			RankingTTL:   10 * time.Minute,
			PlaybookTTL:  30 * time.Minute,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
		Client: ClientConfig{
			Address: "localhost:50051",
			Timeout: 5 * time.Second,
			Retries: 1,
			Backoff: 200 * time.Millisecond,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRADOR_TRIAGE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MIRADOR_TRIAGE_SIGNATURES_PATH"); v != "" {
		cfg.Committee.SignaturesPath = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_RECOMMENDATIONS_PATH"); v != "" {
		cfg.Committee.RecommendationsPath = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Committee.Scale = f
		}
	}
	if v := os.Getenv("MIRADOR_TRIAGE_DENY_INDICATORS"); v != "" {
		cfg.Committee.Indicators.Deny = splitList(v)
	}
	if v := os.Getenv("MIRADOR_TRIAGE_ALLOW_INDICATORS"); v != "" {
		cfg.Committee.Indicators.Allow = splitList(v)
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_RANKING_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.RankingTTL = d
		}
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CACHE_PLAYBOOK_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.PlaybookTTL = d
		}
	}
	if v := os.Getenv("MIRADOR_TRIAGE_REMOTE_ADDRESS"); v != "" {
		cfg.Client.Address = v
	}
	if v := os.Getenv("MIRADOR_TRIAGE_CLIENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
