package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/reformlab/reformer/pkg/env"
)

// Config selects and configures the export transport. An empty Transport
// disables export.
type Config struct {
	Transport string
	Path      string
	URL       string
	Headers   string
	Timeout   time.Duration
}

// FromEnvironment maps the process environment onto a Config.
func FromEnvironment(e *env.Environment) Config {
	return Config{
		Transport: e.ExportTransport,
		Path:      e.ExportPath,
		URL:       e.ExportURL,
		Headers:   e.ExportHeaders,
		Timeout:   e.ExportTimeout,
	}
}

// Enabled reports whether any transport is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Transport) != ""
}

// BuildTransport constructs the configured transport. Comma-separated
// transport names build a composite.
func BuildTransport(cfg Config) (Transport, error) {
	names := strings.Split(cfg.Transport, ",")

	var transports []Transport
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		switch name {
		case "http":
			url := strings.TrimSpace(cfg.URL)
			if url == "" {
				return nil, fmt.Errorf("export: url is required for http transport")
			}
			transports = append(transports, NewHTTPTransport(HTTPTransportConfig{
				URL:     url,
				Headers: parseHeaders(cfg.Headers),
				Timeout: cfg.Timeout,
			}))

		case "console":
			transports = append(transports, NewConsoleTransport())

		case "file":
			if strings.TrimSpace(cfg.Path) == "" {
				return nil, fmt.Errorf("export: path is required for file transport")
			}
			t, err := NewFileTransport(cfg.Path)
			if err != nil {
				return nil, err
			}
			transports = append(transports, t)

		default:
			return nil, fmt.Errorf("export: unsupported transport type %q", name)
		}
	}

	switch len(transports) {
	case 0:
		return nil, fmt.Errorf("export: no transport configured")
	case 1:
		return transports[0], nil
	default:
		return NewCompositeTransport(transports...), nil
	}
}

func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
