// Command uplink-device runs the Qrystal Uplink heartbeat client on a device.
//
// The client checks the network link and clock, validates the credentials
// and posts a heartbeat over a cached keep-alive HTTPS connection. The
// background scheduler repeats this at a fixed interval and retries sooner
// after failures that may clear quickly.
//
// Usage:
//
//	uplink-device [flags]
//
// Flags:
//
//	-config string            Configuration file path (YAML)
//	-env-file string          Dotenv file to load (default ".env")
//	-credentials string       Credentials as deviceId:token
//	-endpoint string          Uplink endpoint URL
//	-interval duration        Interval between heartbeats (default 30s)
//	-priority int             Scheduler priority 0-24 (default 12)
//	-trust-bundle string      PEM file with trusted root CAs
//	-interface string         Network interface that must be up
//	-state-file string        File to persist the run summary
//	-metrics-addr string      Serve Prometheus metrics on this address
//	-event-log string         File path for uplink event logging (CBOR)
//	-log-level string         Log level: debug, info, warn, error (default "info")
//	-log-format string        Log format: text, json (default "text")
//	-telemetry                Post telemetry snapshots instead of empty heartbeats
//	-telemetry-format string  Telemetry encoding: json, cbor (default "json")
//	-interactive              Run the interactive console
//	-version                  Print version and exit
//
// Credentials are read from QRYSTAL_CREDENTIALS when the flag is not set.
// Flags take precedence over the environment, which takes precedence over
// the configuration file.
//
// Examples:
//
//	# Send a heartbeat every 30 seconds
//	QRYSTAL_CREDENTIALS=device-0001:secret uplink-device
//
//	# Telemetry every minute, with an event log for uplink-log
//	uplink-device -telemetry -interval 1m -event-log /var/log/uplink.cbor
//
//	# Drive heartbeats by hand
//	uplink-device -interactive -log-level debug
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/weareqrystal/uplink-sdks/cmd/uplink-device/interactive"
	"github.com/weareqrystal/uplink-sdks/pkg/cert"
	"github.com/weareqrystal/uplink-sdks/pkg/credentials"
	uplinklog "github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/link"
	"github.com/weareqrystal/uplink-sdks/pkg/metrics"
	"github.com/weareqrystal/uplink-sdks/pkg/persistence"
	"github.com/weareqrystal/uplink-sdks/pkg/scheduler"
	"github.com/weareqrystal/uplink-sdks/pkg/telemetry"
	"github.com/weareqrystal/uplink-sdks/pkg/timesync"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
	"github.com/weareqrystal/uplink-sdks/pkg/version"
)

// metricsNamespace prefixes exported Prometheus metrics.
const metricsNamespace = "uplink"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args, os.Getenv, os.Stderr)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Println(version.UserAgent())
		return nil
	}

	out := &switchWriter{w: os.Stderr}
	logger, err := newLogger(out, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	logger.Info("Qrystal Uplink device",
		"version", version.SDK,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval,
		"priority", cfg.Priority,
		"telemetry", cfg.Telemetry.Enabled)

	// Event logging. Only set the logger when non-nil to avoid a
	// typed-nil interface.
	var eventLoggers []uplinklog.Logger
	if cfg.Log.EventLog != "" {
		fl, err := uplinklog.NewFileLogger(cfg.Log.EventLog)
		if err != nil {
			return fmt.Errorf("event log: %w", err)
		}
		defer func() {
			if n := fl.Dropped(); n > 0 {
				logger.Warn("event log dropped events", "count", n)
			}
			fl.Close()
		}()
		eventLoggers = append(eventLoggers, fl)
		logger.Info("event logging enabled", "path", cfg.Log.EventLog)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		eventLoggers = append(eventLoggers, uplinklog.NewSlogAdapter(logger))
	}
	var eventLogger uplinklog.Logger
	if len(eventLoggers) > 0 {
		eventLogger = uplinklog.NewMultiLogger(eventLoggers...)
	}

	if cfg.MetricsAddr != "" {
		srv, err := metrics.StartExporter(cfg.MetricsAddr, metricsNamespace, logger)
		if err != nil {
			return err
		}
		defer shutdownServer(srv, logger)
	}

	client := uplink.New(clientConfig(cfg, logger, eventLogger))
	defer client.Close()

	var store *persistence.StateStore
	if cfg.StateFile != "" {
		store = persistence.NewStateStore(cfg.StateFile)
	}
	track := newTracker(store, logger)
	if creds, err := credentials.Parse(cfg.Credentials, bounds(cfg)); err == nil {
		track.setDevice(creds.DeviceID)
	}

	sched := scheduler.New(client, scheduler.Options{Logger: logger, EventLogger: eventLogger})
	schedCfg := func() scheduler.Config {
		return schedulerConfig(cfg, track, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Interactive {
		console, err := interactive.New(client, sched, interactive.Options{
			Credentials:     cfg.Credentials,
			SchedulerConfig: schedCfg,
			Summary:         track.snapshot,
			Observe:         track.observe,
		})
		if err != nil {
			return err
		}
		out.set(console.Stdout())
		go waitForSignal(cancel, logger)
		console.Run(ctx, cancel)
		out.set(os.Stderr)
	} else {
		if err := sched.Start(schedCfg()); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		logger.Info("scheduler started", "state", sched.State())
		waitForSignal(cancel, logger)
		<-ctx.Done()
	}

	logger.Info("shutting down")
	sched.Stop()

	if s := track.snapshot(); s.Total() > 0 {
		logger.Info("run summary",
			"attempts", s.Total(),
			"last_result", s.LastResult,
			"consecutive_failures", s.ConsecutiveFailures)
	}
	return nil
}

func waitForSignal(cancel context.CancelFunc, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal", "signal", sig.String())
	cancel()
}

func bounds(cfg Config) credentials.Bounds {
	b := credentials.DefaultBounds()
	if cfg.DeviceIDMax > 0 {
		b.MaxDeviceID = cfg.DeviceIDMax
	}
	return b
}

// clientConfig maps the device configuration onto the uplink client.
func clientConfig(cfg Config, logger *slog.Logger, events uplinklog.Logger) uplink.Config {
	uc := uplink.DefaultConfig()
	uc.Endpoint = cfg.Endpoint
	uc.Bounds = bounds(cfg)
	uc.Logger = logger
	uc.EventLogger = events
	uc.Transport = transport.NewHTTPFactory(logger)
	uc.Link = link.NewInterfaceLink(cfg.Interface, logger)

	src := timesync.NewSystemSource(logger)
	if len(cfg.SyncCommand) > 0 {
		src.StartCommand = cfg.SyncCommand
	}
	uc.TimeSource = src

	if cfg.TrustBundle != "" {
		uc.Bundle = cert.FileBundle{Path: cfg.TrustBundle}
	}

	if cfg.KeepAlive.Idle > 0 {
		uc.KeepAlive.Idle = cfg.KeepAlive.Idle
	}
	if cfg.KeepAlive.Interval > 0 {
		uc.KeepAlive.Interval = cfg.KeepAlive.Interval
	}
	if cfg.KeepAlive.Count > 0 {
		uc.KeepAlive.Count = cfg.KeepAlive.Count
	}
	return uc
}

// schedulerConfig builds the scheduler config, posting telemetry snapshots
// when enabled.
func schedulerConfig(cfg Config, track *tracker, logger *slog.Logger) scheduler.Config {
	sc := scheduler.Config{
		Credentials: cfg.Credentials,
		Interval:    cfg.Interval,
		Priority:    schedulerPriority(cfg.Priority),
		Callback: func(r uplink.Result) {
			track.observe(r)
			if r == uplink.ResultOK {
				logger.Debug("heartbeat accepted")
				return
			}
			logger.Warn("heartbeat failed", "result", r.String(), "reason", r.Description())
		},
	}

	if cfg.Telemetry.Enabled {
		// validateConfig already checked the format.
		format, _ := telemetry.ParseFormat(cfg.Telemetry.Format)
		collector := telemetry.NewCollector()
		sc.Payload = func() ([]byte, string, error) {
			return telemetry.Encode(collector.Snapshot(track.lastResult()), format)
		}
	}
	return sc
}

// schedulerPriority maps the configured 0..24 priority onto
// scheduler.Config, where zero means default.
func schedulerPriority(p int) int {
	if p == 0 {
		return scheduler.PriorityLowest
	}
	return p
}

// parseLevel maps a level name to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
	return slog.New(h), nil
}

func shutdownServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

// switchWriter forwards writes to a target that can change at runtime,
// so log output follows the readline prompt in interactive mode.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
