package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent is the JSONL shape of an event. Enums are written by name.
type jsonEvent struct {
	Timestamp    string           `json:"timestamp"`
	ConnectionID string           `json:"connection_id,omitempty"`
	Category     string           `json:"category"`
	DeviceID     string           `json:"device_id,omitempty"`
	RunID        string           `json:"run_id,omitempty"`
	Attempt      *jsonAttempt     `json:"attempt,omitempty"`
	StateChange  *jsonStateChange `json:"state_change,omitempty"`
	Error        *jsonError       `json:"error,omitempty"`
}

type jsonAttempt struct {
	Result      string `json:"result"`
	Stage       string `json:"stage"`
	StatusCode  int    `json:"status_code,omitempty"`
	DurationNs  int64  `json:"duration_ns"`
	PayloadSize int    `json:"payload_size,omitempty"`
	Reused      bool   `json:"reused,omitempty"`
}

type jsonStateChange struct {
	Entity   string `json:"entity"`
	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state"`
	Reason   string `json:"reason,omitempty"`
}

type jsonError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Stale   bool   `json:"stale,omitempty"`
}

func toJSONEvent(e log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp:    e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		ConnectionID: e.ConnectionID,
		Category:     e.Category.String(),
		DeviceID:     e.DeviceID,
		RunID:        e.RunID,
	}
	if a := e.Attempt; a != nil {
		je.Attempt = &jsonAttempt{
			Result:      a.Result,
			Stage:       a.Stage.String(),
			StatusCode:  a.StatusCode,
			DurationNs:  a.Duration.Nanoseconds(),
			PayloadSize: a.PayloadSize,
			Reused:      a.Reused,
		}
	}
	if sc := e.StateChange; sc != nil {
		je.StateChange = &jsonStateChange{
			Entity:   sc.Entity.String(),
			OldState: sc.OldState,
			NewState: sc.NewState,
			Reason:   sc.Reason,
		}
	}
	if er := e.Error; er != nil {
		je.Error = &jsonError{
			Stage:   er.Stage.String(),
			Message: er.Message,
			Stale:   er.Stale,
		}
	}
	return je
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"timestamp", "connection_id", "category", "device_id", "stage", "result", "status_code", "duration_ms", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var stage, result, status, duration, detail string
		switch {
		case event.Attempt != nil:
			a := event.Attempt
			stage = a.Stage.String()
			result = a.Result
			if a.StatusCode != 0 {
				status = strconv.Itoa(a.StatusCode)
			}
			duration = strconv.FormatFloat(float64(a.Duration.Microseconds())/1000, 'f', 3, 64)
		case event.StateChange != nil:
			sc := event.StateChange
			detail = fmt.Sprintf("%s %s->%s", sc.Entity, sc.OldState, sc.NewState)
		case event.Error != nil:
			stage = event.Error.Stage.String()
			detail = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ConnectionID,
			event.Category.String(),
			event.DeviceID,
			stage,
			result,
			status,
			duration,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
