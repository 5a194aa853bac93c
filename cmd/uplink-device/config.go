package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weareqrystal/uplink-sdks/pkg/scheduler"
	"github.com/weareqrystal/uplink-sdks/pkg/telemetry"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
	"github.com/weareqrystal/uplink-sdks/pkg/version"
)

// Environment variables.
const (
	EnvCredentials = "QRYSTAL_CREDENTIALS"
	EnvEndpoint    = "QRYSTAL_UPLINK_ENDPOINT"
)

// Config holds the device configuration.
type Config struct {
	Credentials string        `yaml:"credentials"`
	Endpoint    string        `yaml:"endpoint"`
	Interval    time.Duration `yaml:"interval"`
	Priority    int           `yaml:"priority"`
	TrustBundle string        `yaml:"trust_bundle"`
	Interface   string        `yaml:"interface"`
	SyncCommand []string      `yaml:"sync_command"`
	StateFile   string        `yaml:"state_file"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Interactive bool          `yaml:"interactive"`

	// ShowVersion prints the version and exits.
	ShowVersion bool `yaml:"-"`

	// DeviceIDMax overrides the longest accepted device ID.
	DeviceIDMax int `yaml:"device_id_max"`

	KeepAlive KeepAliveConfig `yaml:"keepalive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// KeepAliveConfig holds TCP keep-alive overrides.
type KeepAliveConfig struct {
	Idle     time.Duration `yaml:"idle"`
	Interval time.Duration `yaml:"interval"`
	Count    int           `yaml:"count"`
}

// TelemetryConfig enables telemetry payloads.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	EventLog string `yaml:"event_log"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Endpoint: uplink.DefaultEndpoint,
		Interval: scheduler.DefaultInterval,
		Priority: scheduler.DefaultPriority,
		Telemetry: TelemetryConfig{
			Format: "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadConfigFile merges the YAML file at path over cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// flagValues holds raw flag values before merging.
type flagValues struct {
	configFile  string
	envFile     string
	credentials string
	endpoint    string
	interval    time.Duration
	priority    int
	trustBundle string
	iface       string
	stateFile   string
	metricsAddr string
	eventLog    string
	logLevel    string
	logFormat   string
	telemetry   bool
	format      string
	interactive bool
	version     bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet("uplink-device", flag.ContinueOnError)
	fs.SetOutput(stderr)

	v := &flagValues{}
	fs.StringVar(&v.configFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&v.envFile, "env-file", ".env", "Dotenv file to load (ignored if missing)")
	fs.StringVar(&v.credentials, "credentials", "", "Credentials as deviceId:token (prefer "+EnvCredentials+")")
	fs.StringVar(&v.endpoint, "endpoint", "", "Uplink endpoint URL")
	fs.DurationVar(&v.interval, "interval", 0, "Interval between heartbeats (default 30s)")
	fs.IntVar(&v.priority, "priority", 0, fmt.Sprintf("Scheduler priority 0-%d", scheduler.MaxPriority))
	fs.StringVar(&v.trustBundle, "trust-bundle", "", "PEM file with trusted root CAs (default: system roots)")
	fs.StringVar(&v.iface, "interface", "", "Network interface that must be up (default: any)")
	fs.StringVar(&v.stateFile, "state-file", "", "File to persist the run summary")
	fs.StringVar(&v.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	fs.StringVar(&v.eventLog, "event-log", "", "File path for uplink event logging (CBOR format)")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", "", "Log format: text, json")
	fs.BoolVar(&v.telemetry, "telemetry", false, "Post telemetry snapshots instead of empty heartbeats")
	fs.StringVar(&v.format, "telemetry-format", "", "Telemetry encoding: json, cbor")
	fs.BoolVar(&v.interactive, "interactive", false, "Run the interactive console")
	fs.BoolVar(&v.version, "version", false, "Print version and exit")
	return fs, v
}

// loadConfig resolves the configuration with precedence
// flag > environment > file > default.
func loadConfig(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	fs, v := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if v.version {
		return Config{ShowVersion: true}, nil
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v.envFile != "" {
		if err := godotenv.Load(v.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", v.envFile, err)
		}
	}

	cfg := defaultConfig()
	if v.configFile != "" {
		if err := loadConfigFile(v.configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if s := getenv(EnvCredentials); s != "" {
		cfg.Credentials = s
	}
	if s := getenv(EnvEndpoint); s != "" {
		cfg.Endpoint = s
	}

	if set["credentials"] {
		cfg.Credentials = v.credentials
	}
	if set["endpoint"] {
		cfg.Endpoint = v.endpoint
	}
	if set["interval"] {
		cfg.Interval = v.interval
	}
	if set["priority"] {
		cfg.Priority = v.priority
	}
	if set["trust-bundle"] {
		cfg.TrustBundle = v.trustBundle
	}
	if set["interface"] {
		cfg.Interface = v.iface
	}
	if set["state-file"] {
		cfg.StateFile = v.stateFile
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = v.metricsAddr
	}
	if set["event-log"] {
		cfg.Log.EventLog = v.eventLog
	}
	if set["log-level"] {
		cfg.Log.Level = v.logLevel
	}
	if set["log-format"] {
		cfg.Log.Format = v.logFormat
	}
	if set["telemetry"] {
		cfg.Telemetry.Enabled = v.telemetry
	}
	if set["telemetry-format"] {
		cfg.Telemetry.Format = v.format
	}
	if set["interactive"] {
		cfg.Interactive = v.interactive
	}

	// The telemetry variant posts to its own path unless an endpoint was given.
	if cfg.Telemetry.Enabled && cfg.Endpoint == uplink.DefaultEndpoint {
		cfg.Endpoint = uplink.TelemetryEndpoint
	}

	return cfg, validateConfig(cfg)
}

func validateConfig(cfg Config) error {
	if cfg.Credentials == "" && !cfg.Interactive {
		return fmt.Errorf("credentials are required (-credentials or %s)", EnvCredentials)
	}
	if err := version.CheckEndpoint(cfg.Endpoint); err != nil {
		return err
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.Priority < 0 || cfg.Priority > scheduler.MaxPriority {
		return fmt.Errorf("priority must be 0-%d, got %d", scheduler.MaxPriority, cfg.Priority)
	}
	if _, err := telemetry.ParseFormat(cfg.Telemetry.Format); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", cfg.Log.Format)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}
