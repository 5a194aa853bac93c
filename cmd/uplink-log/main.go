// Command uplink-log is a tool for viewing and analyzing uplink event logs.
//
// Event logs are written by uplink-device when run with the -event-log flag.
//
// Usage:
//
//	uplink-log <command> [flags] <file.ulog>
//
// Commands:
//
//	view     View event log in human-readable format
//	export   Export event log to JSONL or CSV format
//	filter   Filter event log and write to new file
//	stats    Show statistics about the event log
//
// Examples:
//
//	# View all events
//	uplink-log view device.ulog
//
//	# View only failed request attempts
//	uplink-log view --stage request --category attempt device.ulog
//
//	# Export to CSV
//	uplink-log export --format csv -o device.csv device.ulog
//
//	# Keep only one connection's events
//	uplink-log filter --conn-id abc12345-... -o conn.ulog device.ulog
//
//	# Show statistics
//	uplink-log stats device.ulog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/weareqrystal/uplink-sdks/cmd/uplink-log/commands"
)

const usage = `uplink-log - Uplink Event Log Analyzer

Usage:
  uplink-log <command> [flags] <file.ulog>

Commands:
  view     View event log in human-readable format
  export   Export event log to JSONL or CSV format
  filter   Filter event log and write to new file
  stats    Show statistics about the event log

Use "uplink-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseWithFile parses args and returns the single log file argument.
func parseWithFile(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, summary, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "uplink-log %s - %s\n\nUsage:\n  %s\n\nFlags:\n", name, summary, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) {
	fs := newFlagSet("view", "View event log in human-readable format", "uplink-log view [flags] <file.ulog>")
	category := fs.String("category", "", "Filter by category (attempt, state, error)")
	stage := fs.String("stage", "", "Filter by stage (link, time, credentials, connection, request, scheduler)")
	result := fs.String("result", "", "Filter attempts by result (e.g. OK, TRANSPORT_ERROR)")

	path := parseWithFile(fs, args)

	var filter commands.ViewFilter
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fatal(err)
		}
		filter.Category = &c
	}
	if *stage != "" {
		s, err := commands.ParseStageFlag(*stage)
		if err != nil {
			fatal(err)
		}
		filter.Stage = &s
	}
	filter.Result = *result

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export event log to JSONL or CSV format", "uplink-log export [flags] <file.ulog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseWithFile(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter event log and write to new file", "uplink-log filter [flags] <file.ulog>")
	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	result := fs.String("result", "", "Filter attempts by result")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (attempt, state, error)")

	path := parseWithFile(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		ConnID:    *connID,
		DeviceID:  *deviceID,
		Result:    *result,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `uplink-log stats - Show statistics about the event log

Usage:
  uplink-log stats <file.ulog>

`)
	}

	path := parseWithFile(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
