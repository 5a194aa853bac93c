// Package commands implements the uplink-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	Stage    *log.Stage
	Result   string
}

// matches reports whether the event passes the filter.
func (f ViewFilter) matches(e log.Event) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Stage != nil {
		stage, ok := eventStage(e)
		if !ok || stage != *f.Stage {
			return false
		}
	}
	if f.Result != "" && (e.Attempt == nil || e.Attempt.Result != f.Result) {
		return false
	}
	return true
}

// eventStage returns the pipeline stage an event carries, if any.
func eventStage(e log.Event) (log.Stage, bool) {
	switch {
	case e.Attempt != nil:
		return e.Attempt.Stage, true
	case e.Error != nil:
		return e.Error.Stage, true
	}
	return 0, false
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] CATEGORY label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)
	if connID == "" {
		connID = "-"
	}

	var label string
	switch {
	case event.Attempt != nil:
		label = event.Attempt.Result
	case event.StateChange != nil:
		label = event.StateChange.Entity.String()
	case event.Error != nil:
		label = event.Error.Stage.String()
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-7s %s\n", ts, connID, event.Category, label)

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}
	if event.RunID != "" {
		fmt.Fprintf(w, "  Run: %s\n", shortenConnID(event.RunID))
	}

	switch {
	case event.Attempt != nil:
		formatAttemptDetails(w, event.Attempt)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatAttemptDetails(w io.Writer, a *log.AttemptEvent) {
	fmt.Fprintf(w, "  Stage: %s\n", a.Stage)
	if a.StatusCode != 0 {
		fmt.Fprintf(w, "  Status: %d\n", a.StatusCode)
	}
	fmt.Fprintf(w, "  Duration: %s\n", formatDuration(a.Duration))
	if a.PayloadSize > 0 {
		fmt.Fprintf(w, "  Payload: %d bytes\n", a.PayloadSize)
	}
	if a.Reused {
		fmt.Fprintln(w, "  Connection: reused")
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Stale {
		fmt.Fprintln(w, "  Stale keep-alive: yes")
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "attempt":
		return log.CategoryAttempt, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be attempt, state, or error)", s)
	}
}

// ParseStageFlag parses a stage string from command-line flag (case-insensitive).
func ParseStageFlag(s string) (log.Stage, error) {
	for _, st := range allStages {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("invalid stage: %s (must be link, time, credentials, connection, request, or scheduler)", s)
}

var allStages = []log.Stage{
	log.StageLink,
	log.StageTime,
	log.StageCredentials,
	log.StageConnection,
	log.StageRequest,
	log.StageScheduler,
}

// normalizeResult upper-cases a result name given on the command line.
func normalizeResult(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	filter.Result = normalizeResult(filter.Result)

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}

	return nil
}
