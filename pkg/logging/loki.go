package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultLokiBatchSize     = 100
	defaultLokiFlushInterval = 5 * time.Second
)

// LokiHandler is a slog.Handler that batches records as JSON lines and
// pushes them to a Loki endpoint. Handlers derived with WithAttrs or
// WithGroup share the batch of their parent.
type LokiHandler struct {
	sink   *lokiSink
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

type lokiSink struct {
	url       string
	labels    map[string]string
	client    *http.Client
	batchSize int
	interval  time.Duration

	mu    sync.Mutex
	batch []lokiEntry
	timer *time.Timer
}

type lokiEntry struct {
	timestamp time.Time
	line      string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// LokiOption configures a LokiHandler.
type LokiOption func(*LokiHandler)

// WithLokiLabels sets additional stream labels.
func WithLokiLabels(labels map[string]string) LokiOption {
	return func(h *LokiHandler) {
		for k, v := range labels {
			h.sink.labels[k] = v
		}
	}
}

// WithLokiLevel sets the minimum log level.
func WithLokiLevel(level slog.Level) LokiOption {
	return func(h *LokiHandler) {
		h.level = level
	}
}

// WithLokiBatchSize sets the number of records buffered before a push.
func WithLokiBatchSize(size int) LokiOption {
	return func(h *LokiHandler) {
		if size > 0 {
			h.sink.batchSize = size
		}
	}
}

// WithLokiClient sets the HTTP client used for pushes.
func WithLokiClient(client *http.Client) LokiOption {
	return func(h *LokiHandler) {
		h.sink.client = client
	}
}

// NewLokiHandler creates a handler pushing to url, for example
// "http://localhost:3100/loki/api/v1/push". Buffered records are pushed
// when the batch fills and every few seconds.
func NewLokiHandler(url string, opts ...LokiOption) *LokiHandler {
	h := &LokiHandler{
		sink: &lokiSink{
			url:       url,
			labels:    map[string]string{"job": "contractd"},
			client:    &http.Client{Timeout: 5 * time.Second},
			batchSize: defaultLokiBatchSize,
			interval:  defaultLokiFlushInterval,
		},
		level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(h)
	}

	s := h.sink
	s.mu.Lock()
	s.timer = time.AfterFunc(s.interval, func() {
		_ = s.flush()
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Reset(s.interval)
		}
		s.mu.Unlock()
	})
	s.mu.Unlock()
	return h
}

// Enabled implements slog.Handler.
func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	entry := lokiEntry{timestamp: r.Time, line: h.formatRecord(r)}

	s := h.sink
	s.mu.Lock()
	s.batch = append(s.batch, entry)
	full := len(s.batch) >= s.batchSize
	s.mu.Unlock()

	if full {
		go func() { _ = s.flush() }()
	}
	return nil
}

// formatRecord renders a record as one JSON line. Attributes inside groups
// are keyed by their dotted group path.
func (h *LokiHandler) formatRecord(r slog.Record) string {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
		"time":  r.Time.Format(time.RFC3339Nano),
	}
	for _, a := range h.attrs {
		data[a.Key] = a.Value.Resolve().Any()
	}
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		data[prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"msg":%q}`, r.Level.String(), r.Message)
	}
	return string(b)
}

// WithAttrs implements slog.Handler.
func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &c
}

// WithGroup implements slog.Handler.
func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &c
}

// Flush pushes all buffered records.
func (h *LokiHandler) Flush() error {
	return h.sink.flush()
}

// Close stops the periodic push and flushes the remaining records.
func (h *LokiHandler) Close() error {
	s := h.sink
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.flush()
}

func (s *lokiSink) flush() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.batch
	s.batch = nil
	s.mu.Unlock()

	values := make([][]string, len(batch))
	for i, entry := range batch {
		values[i] = []string{strconv.FormatInt(entry.timestamp.UnixNano(), 10), entry.line}
	}
	body, err := json.Marshal(lokiPush{Streams: []lokiStream{{Stream: s.labels, Values: values}}})
	if err != nil {
		return fmt.Errorf("failed to marshal loki push: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create loki request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send logs to loki: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loki returned status %d", resp.StatusCode)
	}
	return nil
}
