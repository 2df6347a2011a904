package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reformlab/reformer/pkg/env"
)

func TestBuildTransportConsole(t *testing.T) {
	transport, err := BuildTransport(Config{Transport: "console"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := transport.(*consoleTransport); !ok {
		t.Errorf("transport = %T, want *consoleTransport", transport)
	}
}

func TestBuildTransportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.ndjson")
	transport, err := BuildTransport(Config{Transport: "file", Path: path})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	if _, ok := transport.(*fileTransport); !ok {
		t.Errorf("transport = %T, want *fileTransport", transport)
	}
}

func TestBuildTransportFileRequiresPath(t *testing.T) {
	if _, err := BuildTransport(Config{Transport: "file"}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestBuildTransportHTTPRequiresURL(t *testing.T) {
	if _, err := BuildTransport(Config{Transport: "http"}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestBuildTransportComposite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.ndjson")
	transport, err := BuildTransport(Config{Transport: "console,file", Path: path})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	if _, ok := transport.(*compositeTransport); !ok {
		t.Errorf("transport = %T, want *compositeTransport", transport)
	}
}

func TestBuildTransportUnknown(t *testing.T) {
	if _, err := BuildTransport(Config{Transport: "kafka"}); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestFromEnvironment(t *testing.T) {
	e := &env.Environment{
		ExportTransport: "http",
		ExportURL:       "https://sink.example.com/records",
		ExportHeaders:   "Authorization=Bearer token",
		ExportTimeout:   15 * time.Second,
	}

	cfg := FromEnvironment(e)
	if !cfg.Enabled() {
		t.Fatal("expected config to be enabled")
	}
	if cfg.URL != e.ExportURL {
		t.Errorf("url = %v, want %v", cfg.URL, e.ExportURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Timeout)
	}

	headers := parseHeaders(cfg.Headers)
	if headers["Authorization"] != "Bearer token" {
		t.Errorf("authorization header = %q", headers["Authorization"])
	}
}

func TestConfigDisabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config should be disabled")
	}
}
