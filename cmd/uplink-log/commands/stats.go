package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
)

// Stats holds aggregate statistics about an event log.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Results          map[string]int
	FailuresByStage  map[log.Stage]int
	Connections      map[string]*ConnectionStats
	Attempts         int
	Reused           int
	Errors           int
	StaleErrors      int
	ClockLosses      int
	Latency          LatencyStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// LatencyStats summarizes attempts that reached the server.
type LatencyStats struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average latency, or zero.
func (l LatencyStats) Mean() time.Duration {
	if l.Count == 0 {
		return 0
	}
	return l.Total / time.Duration(l.Count)
}

// ConnectionStats holds statistics for a single connection epoch.
type ConnectionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Attempts  int
	DeviceID  string
}

func newStats() *Stats {
	return &Stats{
		EventsByCategory: make(map[log.Category]int),
		Results:          make(map[string]int),
		FailuresByStage:  make(map[log.Stage]int),
		Connections:      make(map[string]*ConnectionStats),
	}
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	var conn *ConnectionStats
	if event.ConnectionID != "" {
		c, ok := s.Connections[event.ConnectionID]
		if !ok {
			c = &ConnectionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			s.Connections[event.ConnectionID] = c
		}
		c.Events++
		if event.Timestamp.After(c.LastSeen) {
			c.LastSeen = event.Timestamp
		}
		if event.DeviceID != "" && c.DeviceID == "" {
			c.DeviceID = event.DeviceID
		}
		conn = c
	}

	switch {
	case event.Attempt != nil:
		a := event.Attempt
		s.Attempts++
		s.Results[a.Result]++
		if a.Result != "OK" {
			s.FailuresByStage[a.Stage]++
		}
		if a.Reused {
			s.Reused++
		}
		if a.Stage == log.StageRequest {
			s.Latency.Count++
			s.Latency.Total += a.Duration
			if a.Duration > s.Latency.Max {
				s.Latency.Max = a.Duration
			}
		}
		if conn != nil {
			conn.Attempts++
		}

	case event.Error != nil:
		s.Errors++
		if event.Error.Stale {
			s.StaleErrors++
		}

	case event.StateChange != nil:
		sc := event.StateChange
		if sc.Entity == log.StateEntityTimeSync && sc.OldState == "SYNCED" && sc.NewState == "UNSYNCED" {
			s.ClockLosses++
		}
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Uplink Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryAttempt, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if stats.Attempts > 0 {
		fmt.Fprintf(w, "Attempts: %d (reused connection: %d)\n", stats.Attempts, stats.Reused)
		names := make([]string, 0, len(stats.Results))
		for name := range stats.Results {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Results[names[i]] != stats.Results[names[j]] {
				return stats.Results[names[i]] > stats.Results[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %-22s %d\n", name+":", stats.Results[name])
		}
		fmt.Fprintln(w)

		if len(stats.FailuresByStage) > 0 {
			fmt.Fprintln(w, "Failures by Stage:")
			for _, st := range allStages {
				if count := stats.FailuresByStage[st]; count > 0 {
					fmt.Fprintf(w, "  %-12s %d\n", st.String()+":", count)
				}
			}
			fmt.Fprintln(w)
		}

		if stats.Latency.Count > 0 {
			fmt.Fprintf(w, "Request Latency: mean %s, max %s (%d requests)\n",
				formatDuration(stats.Latency.Mean()), formatDuration(stats.Latency.Max), stats.Latency.Count)
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range conns {
			lifetime := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, %d attempts, lifetime %s\n",
				shortenConnID(c.id), c.stats.Events, c.stats.Attempts, lifetime)
			if c.stats.DeviceID != "" {
				fmt.Fprintf(w, "           Device: %s\n", c.stats.DeviceID)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d (stale keep-alive: %d)\n", stats.Errors, stats.StaleErrors)
	}
	if stats.ClockLosses > 0 {
		fmt.Fprintf(w, "Clock sync lost: %d times\n", stats.ClockLosses)
	}
}
