package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type EventType string

const (
	TypeBatchStarted   EventType = "batch_started"
	TypeBatchCompleted EventType = "batch_completed"
	TypeBatchFailed    EventType = "batch_failed"
	TypeRunStarted     EventType = "run_started"
	TypeRunConverged   EventType = "run_converged"
	TypeRunWarning     EventType = "run_warning"
	TypeRunFailed      EventType = "run_failed"
	TypeRunSkipped     EventType = "run_skipped"
	TypeSweepCompleted EventType = "sweep_completed"
)

type Event struct {
	Type         EventType       `json:"type"`
	BatchID      string          `json:"batch_id,omitempty"`
	SimulationID int64           `json:"simulation_id,omitempty"`
	BiooilID     int64           `json:"biooil_id,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type EventsService struct {
	client *Client
}

func (s *EventsService) Stream(ctx context.Context, batchID string, types []EventType) (<-chan Event, error) {
	queries := []string{}
	if batchID != "" {
		queries = append(queries, fmt.Sprintf("batch_id=%s", batchID))
	}
	if len(types) > 0 {
		tStrs := make([]string, len(types))
		for i, t := range types {
			tStrs[i] = string(t)
		}
		queries = append(queries, fmt.Sprintf("types=%s", strings.Join(tStrs, ",")))
	}

	url := s.client.resolve("/v1/events", queries...)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	ch := make(chan Event, 100)

	go func() {
		defer resp.Body.Close()
		defer close(ch)

		scanner := bufio.NewScanner(resp.Body)
		var currentType EventType
		var currentData []byte

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				if currentType != "" && len(currentData) > 0 {
					var evt Event
					if err := json.Unmarshal(currentData, &evt); err == nil {
						if evt.Type == "" {
							evt.Type = currentType
						}
						select {
						case ch <- evt:
						case <-ctx.Done():
							return
						}
					}
				}
				currentType = ""
				currentData = nil
				continue
			}

			if bytes.HasPrefix(line, []byte(":")) {
				continue // Comment/Ping
			}

			parts := bytes.SplitN(line, []byte(":"), 2)
			if len(parts) < 2 {
				continue
			}

			field := string(bytes.TrimSpace(parts[0]))
			value := bytes.TrimPrefix(parts[1], []byte(" "))

			switch field {
			case "event":
				currentType = EventType(value)
			case "data":
				currentData = value
			}
		}
	}()

	return ch, nil
}
