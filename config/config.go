package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Validation ValidationConfig `yaml:"validation"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Scanner    ScannerConfig    `yaml:"scanner"`
}

// WorkerPoolConfig holds the configuration for the dock alert worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
// Alerts are disabled when either key is empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ValidationConfig controls when a scan is treated as a dock-door scan.
type ValidationConfig struct {
	DockDoorMatch     string `yaml:"dock_door_match"` // "prefix" or "lookup"
	DockDoorPrefix    string `yaml:"dock_door_prefix"`
	RequireActiveDock bool   `yaml:"require_active_dock"`
}

// ScannerConfig holds the capture client configuration.
type ScannerConfig struct {
	CameraInfoPath       string        `yaml:"camera_info_path"`
	ServerURL            string        `yaml:"server_url"` // overrides Server IP/Port from the camera info file
	CooldownSeconds      int           `yaml:"cooldown_seconds"`
	Cooldown             time.Duration `yaml:"-"`
	CooldownScope        string        `yaml:"cooldown_scope"` // "text" or "global"
	RequestTimeoutMillis int           `yaml:"request_timeout_ms"`
	RequestTimeout       time.Duration `yaml:"-"`
	FrameIntervalMillis  int           `yaml:"frame_interval_ms"`
	FrameInterval        time.Duration `yaml:"-"`
	QueueSize            int           `yaml:"queue_size"`
	DecodeWorkers        int           `yaml:"decode_workers"`
	DecodeBands          int           `yaml:"decode_bands"`
	VendorQREndpoint     string        `yaml:"vendor_qr_endpoint"`
	DetectorEndpoint     string        `yaml:"detector_endpoint"`
	ProbeTimeoutMillis   int           `yaml:"probe_timeout_ms"`
	ProbeTimeout         time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset values and derives the duration fields.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "app.db"
	}

	switch cfg.Validation.DockDoorMatch {
	case "prefix", "lookup":
	case "":
		cfg.Validation.DockDoorMatch = "prefix"
	default:
		log.Printf("validation.dock_door_match %q is not recognised; defaulting to prefix", cfg.Validation.DockDoorMatch)
		cfg.Validation.DockDoorMatch = "prefix"
	}
	if cfg.Validation.DockDoorPrefix == "" {
		cfg.Validation.DockDoorPrefix = "DD"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	s := &cfg.Scanner
	if s.CameraInfoPath == "" {
		s.CameraInfoPath = "camera_info.txt"
	}
	if s.CooldownSeconds <= 0 {
		s.CooldownSeconds = 2
	}
	s.Cooldown = time.Duration(s.CooldownSeconds) * time.Second
	if s.CooldownScope != "global" {
		s.CooldownScope = "text"
	}
	if s.RequestTimeoutMillis <= 0 {
		s.RequestTimeoutMillis = 2000
	}
	s.RequestTimeout = time.Duration(s.RequestTimeoutMillis) * time.Millisecond
	if s.FrameIntervalMillis <= 0 {
		s.FrameIntervalMillis = 100
	}
	s.FrameInterval = time.Duration(s.FrameIntervalMillis) * time.Millisecond
	if s.QueueSize <= 0 {
		s.QueueSize = 1
	}
	if s.DecodeWorkers <= 0 {
		s.DecodeWorkers = 1
	}
	if s.DecodeBands <= 0 {
		s.DecodeBands = 4
	}
	if s.ProbeTimeoutMillis <= 0 {
		s.ProbeTimeoutMillis = 1500
	}
	s.ProbeTimeout = time.Duration(s.ProbeTimeoutMillis) * time.Millisecond
}
