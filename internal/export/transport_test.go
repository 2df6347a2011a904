package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/reformlab/reformer/internal/models"
)

func testRecord() Record {
	return Record{
		SimulationID:   42,
		BatchID:        "batch-1",
		BiooilID:       2,
		Model:          "steam-reforming-base",
		Engine:         "equilib",
		Status:         models.StatusConverged,
		SimulationDate: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		EmittedAt:      time.Date(2025, 1, 15, 10, 30, 5, 0, time.UTC),
	}
}

func TestHTTPTransport(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		receivedBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{
		URL:     server.URL,
		Headers: map[string]string{"X-Custom": "test-value"},
		Timeout: 5 * time.Second,
	})

	err := transport.Emit(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	if receivedContentType != "application/json" {
		t.Errorf("content-type = %v, want application/json", receivedContentType)
	}

	var parsed Record
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("unmarshal received body: %v", err)
	}

	if parsed.SimulationID != 42 {
		t.Errorf("simulation_id = %v, want 42", parsed.SimulationID)
	}
	if parsed.Status != models.StatusConverged {
		t.Errorf("status = %v, want Converged", parsed.Status)
	}
}

func TestHTTPTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportConfig{URL: server.URL})

	err := transport.Emit(context.Background(), testRecord())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want to contain '500'", err)
	}
}

func TestFileTransport(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "export-test-*.ndjson")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			t.Fatalf("remove temp file: %v", err)
		}
	}()

	transport, err := NewFileTransport(tmpPath)
	if err != nil {
		t.Fatalf("create file transport: %v", err)
	}

	record1 := testRecord()
	record2 := testRecord()
	record2.SimulationID = 43
	record2.Status = models.StatusFailed

	if err := transport.Emit(context.Background(), record1); err != nil {
		t.Fatalf("emit record1: %v", err)
	}
	if err := transport.Emit(context.Background(), record2); err != nil {
		t.Fatalf("emit record2: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var parsed1 Record
	if err := json.Unmarshal([]byte(lines[0]), &parsed1); err != nil {
		t.Fatalf("unmarshal line 1: %v", err)
	}
	if parsed1.Status != models.StatusConverged {
		t.Errorf("line 1 status = %v, want Converged", parsed1.Status)
	}

	var parsed2 Record
	if err := json.Unmarshal([]byte(lines[1]), &parsed2); err != nil {
		t.Fatalf("unmarshal line 2: %v", err)
	}
	if parsed2.SimulationID != 43 {
		t.Errorf("line 2 simulation_id = %v, want 43", parsed2.SimulationID)
	}
}

type recordingTransport struct {
	records []Record
	err     error
}

func (t *recordingTransport) Emit(_ context.Context, record Record) error {
	t.records = append(t.records, record)
	return t.err
}

func (t *recordingTransport) Close() error { return nil }

func TestCompositeTransport(t *testing.T) {
	t1 := &recordingTransport{}
	t2 := &recordingTransport{}

	composite := NewCompositeTransport(t1, t2)

	if err := composite.Emit(context.Background(), testRecord()); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(t1.records) != 1 {
		t.Errorf("t1 received %d records, want 1", len(t1.records))
	}
	if len(t2.records) != 1 {
		t.Errorf("t2 received %d records, want 1", len(t2.records))
	}
}

func TestCompositeTransportAggregatesErrors(t *testing.T) {
	t1 := &recordingTransport{err: errors.New("t1 failed")}
	t2 := &recordingTransport{err: errors.New("t2 failed")}

	composite := NewCompositeTransport(t1, t2)

	err := composite.Emit(context.Background(), testRecord())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "t1 failed") {
		t.Errorf("error should contain 't1 failed': %v", err)
	}
	if !strings.Contains(err.Error(), "t2 failed") {
		t.Errorf("error should contain 't2 failed': %v", err)
	}
}
