package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/reformlab/reformer/internal/event"
)

// readSSEEvent reads frames from a text/event-stream body until one
// carries a decodable event payload. Comment keepalives are skipped.
func readSSEEvent(body io.Reader) (event.Event, error) {
	scanner := bufio.NewScanner(body)

	var (
		currentType event.Type
		currentData []byte
	)

	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			if len(currentData) > 0 {
				var evt event.Event
				if err := json.Unmarshal(currentData, &evt); err != nil {
					return event.Event{}, err
				}
				if evt.Type == "" {
					evt.Type = currentType
				}
				return evt, nil
			}
			currentType = ""
			currentData = nil
			continue
		}

		if bytes.HasPrefix(line, []byte(":")) {
			continue
		}

		parts := bytes.SplitN(line, []byte(":"), 2)
		if len(parts) < 2 {
			continue
		}

		field := string(bytes.TrimSpace(parts[0]))
		value := bytes.TrimSpace(parts[1])

		switch field {
		case "event":
			currentType = event.Type(value)
		case "data":
			currentData = append(currentData, value...)
		}
	}

	if err := scanner.Err(); err != nil {
		return event.Event{}, err
	}
	return event.Event{}, io.EOF
}
