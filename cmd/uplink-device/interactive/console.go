// Package interactive provides the interactive command-line interface
// for the uplink device.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/weareqrystal/uplink-sdks/pkg/persistence"
	"github.com/weareqrystal/uplink-sdks/pkg/scheduler"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

// Client is the part of uplink.Client the console drives.
type Client interface {
	Attempt(ctx context.Context, raw string) uplink.Result
	AttemptPayload(ctx context.Context, raw string, body []byte, contentType string) uplink.Result
	Status() uplink.Status
	Reset()
}

// Scheduler is the part of scheduler.Scheduler the console drives.
type Scheduler interface {
	Start(cfg scheduler.Config) error
	Stop()
	IsRunning() bool
	State() scheduler.State
}

// SummaryFunc returns the current run summary, or nil when none is kept.
type SummaryFunc func() *persistence.RunSummary

// Options configures the console.
type Options struct {
	// Credentials used for manual beats. The scheduler config carries its own.
	Credentials string

	// SchedulerConfig returns the config for "start".
	SchedulerConfig func() scheduler.Config

	// Summary returns the persisted run summary.
	Summary SummaryFunc

	// Observe is called with the result of each manual beat.
	Observe func(uplink.Result)
}

// Console handles interactive mode for uplink-device.
type Console struct {
	client Client
	sched  Scheduler
	opts   Options
	rl     *readline.Instance
	out    io.Writer
}

// New creates a new interactive console.
func New(client Client, sched Scheduler, opts Options) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uplink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(client, sched, opts, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(client Client, sched Scheduler, opts Options, out io.Writer) *Console {
	if opts.Summary == nil {
		opts.Summary = func() *persistence.RunSummary { return nil }
	}
	return &Console{client: client, sched: sched, opts: opts, out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.execute(ctx, line) {
			cancel()
			return
		}
	}
}

// execute runs one command line. It returns false when the console should exit.
func (c *Console) execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "beat", "b":
		c.cmdBeat(ctx, args)

	case "start":
		c.cmdStart()

	case "stop":
		c.cmdStop()

	case "status", "s":
		c.cmdStatus()

	case "summary":
		c.cmdSummary()

	case "reset":
		c.client.Reset()
		fmt.Fprintln(c.out, "Connection reset")

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Uplink Device Commands:
  Heartbeat:
    beat [json]        - Send one heartbeat now (optional JSON body)
    start              - Start the background scheduler
    stop               - Stop the background scheduler

  State:
    status             - Show connection and time sync status
    summary            - Show the persisted run summary
    reset              - Drop the cached connection

  General:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdBeat(ctx context.Context, args []string) {
	if c.sched.IsRunning() {
		fmt.Fprintln(c.out, "Scheduler is running; stop it before sending manual beats")
		return
	}

	var result uplink.Result
	if len(args) > 0 {
		body := strings.Join(args, " ")
		if !json.Valid([]byte(body)) {
			fmt.Fprintln(c.out, "Body is not valid JSON")
			return
		}
		result = c.client.AttemptPayload(ctx, c.opts.Credentials, []byte(body), "application/json")
	} else {
		result = c.client.Attempt(ctx, c.opts.Credentials)
	}

	if c.opts.Observe != nil {
		c.opts.Observe(result)
	}
	fmt.Fprintf(c.out, "Result: %s (%s)\n", result, result.Description())
}

func (c *Console) cmdStart() {
	if c.opts.SchedulerConfig == nil {
		fmt.Fprintln(c.out, "Scheduler not configured")
		return
	}
	if err := c.sched.Start(c.opts.SchedulerConfig()); err != nil {
		fmt.Fprintf(c.out, "Start failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Scheduler started")
}

func (c *Console) cmdStop() {
	if !c.sched.IsRunning() {
		fmt.Fprintln(c.out, "Scheduler is not running")
		return
	}
	c.sched.Stop()
	fmt.Fprintln(c.out, "Scheduler stopped")
}

func (c *Console) cmdStatus() {
	st := c.client.Status()

	fmt.Fprintln(c.out, "Status:")
	fmt.Fprintf(c.out, "  Scheduler:   %s\n", c.sched.State())
	fmt.Fprintf(c.out, "  Time sync:   %s", st.Time)
	if st.Time.LastSyncEpoch > 0 {
		fmt.Fprintf(c.out, " (last %s)", time.Unix(int64(st.Time.LastSyncEpoch), 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  Connection:  %s\n", st.Connection)
	if st.ConnectionID != "" {
		fmt.Fprintf(c.out, "  Conn ID:     %s\n", st.ConnectionID)
	}
	if st.DeviceID != "" {
		fmt.Fprintf(c.out, "  Device ID:   %s\n", st.DeviceID)
	}
	if !st.LastAttempt.IsZero() {
		fmt.Fprintf(c.out, "  Last result: %s at %s\n", st.LastResult, st.LastAttempt.Format(time.RFC3339))
	}
}

func (c *Console) cmdSummary() {
	s := c.opts.Summary()
	if s == nil {
		fmt.Fprintln(c.out, "No run summary recorded")
		return
	}

	fmt.Fprintf(c.out, "Attempts: %d (consecutive failures: %d)\n", s.Total(), s.ConsecutiveFailures)
	for _, r := range uplink.AllResults() {
		if n := s.Counts[r.String()]; n > 0 {
			fmt.Fprintf(c.out, "  %-22s %d\n", r, n)
		}
	}
	if !s.LastOKAt.IsZero() {
		fmt.Fprintf(c.out, "Last OK: %s\n", s.LastOKAt.Format(time.RFC3339))
	}
}
