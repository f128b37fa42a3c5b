package logging

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	// Create a buffer to capture output
	var buf bytes.Buffer

	// Save original logger
	oldLogger := defaultLogger

	// Create a new logger that writes to the buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	// Execute function
	f()

	// Restore original logger
	defaultLogger = oldLogger

	return buf.String()
}

// captureLogOutputWithInit captures output by reinitializing the logger
// to write to a buffer. This tests the actual InitLogger ReplaceAttr logic.
func captureLogOutputWithInit(level Level, format Format, f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outCh := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		outCh <- buf.String()
	}()

	InitLogger(level, format)

	f()

	w.Close()
	os.Stdout = oldStdout

	output := <-outCh

	// Reinitialize with default settings
	InitLogger(LevelInfo, FormatJSON)

	return output
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      Level
		format     Format
		logMessage string
		shouldLog  bool
	}{
		{"debug level logs debug", LevelDebug, FormatJSON, "debug message", true},
		{"info level skips debug", LevelInfo, FormatJSON, "debug message", false},
		{"warn level skips info", LevelWarn, FormatJSON, "info message", false},
		{"error level skips warn", LevelError, FormatJSON, "warn message", false},
		{"text format logs", LevelInfo, FormatText, "text message", true},
		{"unknown level defaults to info", Level(99), FormatJSON, "info message", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutputWithInit(tt.level, tt.format, func() {
				switch {
				case strings.HasPrefix(tt.logMessage, "debug"):
					Debug(tt.logMessage)
				case strings.HasPrefix(tt.logMessage, "warn"):
					Warn(tt.logMessage)
				default:
					Info(tt.logMessage)
				}
			})
			if tt.shouldLog && !strings.Contains(output, tt.logMessage) {
				t.Errorf("expected output to contain %q, got %q", tt.logMessage, output)
			}
			if !tt.shouldLog && strings.Contains(output, tt.logMessage) {
				t.Errorf("expected output to suppress %q, got %q", tt.logMessage, output)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}
	if logger != defaultLogger {
		t.Error("GetLogger did not return the default logger")
	}
}

func TestWithRunID(t *testing.T) {
	ctx := context.Background()
	runID := "run-123"
	newCtx := WithRunID(ctx, runID)

	if got := GetRunID(newCtx); got != runID {
		t.Errorf("GetRunID = %q, want %q", got, runID)
	}
}

func TestGetRunID(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "with run ID",
			ctx:      context.WithValue(context.Background(), RunIDKey, "test-id"),
			expected: "test-id",
		},
		{
			name:     "without run ID",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "non-string value",
			ctx:      context.WithValue(context.Background(), RunIDKey, 12345),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRunID(tt.ctx); got != tt.expected {
				t.Errorf("GetRunID = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantRunID bool
	}{
		{
			name:      "context with run ID",
			ctx:       WithRunID(context.Background(), "test-123"),
			wantRunID: true,
		},
		{
			name:      "plain context",
			ctx:       context.Background(),
			wantRunID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(func() {
				LoggerFromContext(tt.ctx).Info("test message")
			})
			hasRunID := strings.Contains(output, "run_id")
			if hasRunID != tt.wantRunID {
				t.Errorf("run_id present = %v, want %v; output: %s", hasRunID, tt.wantRunID, output)
			}
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name  string
		logFn func(string, ...any)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(func() {
				tt.logFn("test message", "key", "value")
			})
			if !strings.Contains(output, "test message") {
				t.Errorf("output missing message: %s", output)
			}
			if !strings.Contains(output, tt.level) {
				t.Errorf("output missing level %s: %s", tt.level, output)
			}
			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("output missing attribute: %s", output)
			}
		})
	}
}

func TestContextLoggingFunctions(t *testing.T) {
	ctx := WithRunID(context.Background(), "test-run-id")

	tests := []struct {
		name  string
		logFn func(context.Context, string, ...any)
	}{
		{"DebugContext", DebugContext},
		{"InfoContext", InfoContext},
		{"WarnContext", WarnContext},
		{"ErrorContext", ErrorContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(func() {
				tt.logFn(ctx, "context message")
			})
			if !strings.Contains(output, "context message") {
				t.Errorf("output missing message: %s", output)
			}
			if !strings.Contains(output, "test-run-id") {
				t.Errorf("output missing run ID: %s", output)
			}
		})
	}
}

func TestHTTPRequest(t *testing.T) {
	output := captureLogOutput(func() {
		HTTPRequest("GET", "/preview", "127.0.0.1:5000", 200, 0)
	})

	for _, want := range []string{"http_request", `"method":"GET"`, `"path":"/preview"`, `"status_code":200`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestHTTPRequestContext(t *testing.T) {
	ctx := WithRunID(context.Background(), "req-456")
	output := captureLogOutput(func() {
		HTTPRequestContext(ctx, "POST", "/render", "10.0.0.1:1234", 201, 0)
	})

	if !strings.Contains(output, "req-456") {
		t.Errorf("output missing run ID: %s", output)
	}
	if !strings.Contains(output, `"status_code":201`) {
		t.Errorf("output missing status code: %s", output)
	}
}

func TestExtraction(t *testing.T) {
	output := captureLogOutput(func() {
		Extraction("Psalms", 83, 18, 2, "rules", "study-edition-2026")
	})

	for _, want := range []string{"extraction", `"book":"Psalms"`, `"chapter":83`, `"verses":18`, `"omissions":2`, `"rules":"study-edition-2026"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestOmission(t *testing.T) {
	output := captureLogOutput(func() {
		Omission("verse_number", "verse container 4", "numeral token does not parse")
	})

	if !strings.Contains(output, "WARN") {
		t.Errorf("omissions should log at warn level: %s", output)
	}
	for _, want := range []string{`"field":"verse_number"`, `"context":"verse container 4"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestViolation(t *testing.T) {
	tests := []struct {
		severity  string
		wantLevel string
	}{
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"fatal", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			output := captureLogOutput(func() {
				Violation("empty_content", tt.severity, "footnote fn-1", "footnote has no content")
			})
			if !strings.Contains(output, tt.wantLevel) {
				t.Errorf("severity %s should log at %s: %s", tt.severity, tt.wantLevel, output)
			}
			if !strings.Contains(output, `"kind":"empty_content"`) {
				t.Errorf("output missing kind: %s", output)
			}
		})
	}
}

func TestLayoutRendered(t *testing.T) {
	output := captureLogOutput(func() {
		LayoutRendered("Psalms 83", "paragraphs", 12)
	})

	for _, want := range []string{"layout_rendered", `"reference":"Psalms 83"`, `"style":"paragraphs"`, `"panel_entries":12`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestStageError(t *testing.T) {
	testErr := errors.New("rule set invalid")
	output := captureLogOutput(func() {
		StageError("extract", testErr, "input", "chapter.html")
	})

	if !strings.Contains(output, "ERROR") {
		t.Errorf("stage errors should log at error level: %s", output)
	}
	for _, want := range []string{`"stage":"extract"`, `"error":"rule set invalid"`, `"input":"chapter.html"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestWebSocketEvent(t *testing.T) {
	output := captureLogOutput(func() {
		WebSocketEvent("client_connected", 3)
	})

	for _, want := range []string{"websocket_event", `"event":"client_connected"`, `"client_count":3`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestServerStartup(t *testing.T) {
	output := captureLogOutput(func() {
		ServerStartup("preview", "http", 8080)
	})

	for _, want := range []string{"server_startup", `"server_type":"preview"`, `"port":8080`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusNotFound)
	}

	// A second call must not overwrite the recorded code.
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode overwritten to %d", rw.statusCode)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !rw.written {
		t.Error("Write did not mark the header written")
	}
	if rec.Body.String() != "hello" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// hijackRecorder is a ResponseRecorder that also supports hijacking, the
// way a live server connection does during a WebSocket upgrade.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	server, client := net.Pipe()
	client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func TestResponseWriter_Hijack(t *testing.T) {
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	var w http.ResponseWriter = rw
	hj, ok := w.(http.Hijacker)
	if !ok {
		t.Fatal("responseWriter does not implement http.Hijacker")
	}

	conn, _, err := hj.Hijack()
	if err != nil {
		t.Fatalf("Hijack: %v", err)
	}
	defer conn.Close()

	if !rec.hijacked {
		t.Error("hijack did not reach the underlying writer")
	}
	if rw.statusCode != http.StatusSwitchingProtocols {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusSwitchingProtocols)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("Hijack over a plain recorder should fail")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"generates ID", "", false},
		{"preserves supplied ID", "supplied-id", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenID string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenID = GetRunID(r.Context())
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			RequestIDMiddleware(handler).ServeHTTP(rec, req)

			if seenID == "" {
				t.Fatal("handler saw no request ID")
			}
			if tt.wantSame && seenID != tt.header {
				t.Errorf("ID = %q, want %q", seenID, tt.header)
			}
			if got := rec.Header().Get("X-Request-ID"); got != seenID {
				t.Errorf("response header ID = %q, context ID = %q", got, seenID)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/preview", nil)
	rec := httptest.NewRecorder()

	output := captureLogOutput(func() {
		LoggingMiddleware(handler).ServeHTTP(rec, req)
	})

	if !strings.Contains(output, "http_request") {
		t.Errorf("output missing http_request event: %s", output)
	}
	if !strings.Contains(output, `"status_code":418`) {
		t.Errorf("output missing status code: %s", output)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRunID(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	output := captureLogOutput(func() {
		CombinedMiddleware(handler).ServeHTTP(rec, req)
	})

	if seenID == "" {
		t.Error("combined middleware did not attach a request ID")
	}
	if !strings.Contains(output, "http_request") {
		t.Errorf("combined middleware did not log the request: %s", output)
	}
}

func TestContextKeyType(t *testing.T) {
	if RunIDKey != "run_id" {
		t.Errorf("RunIDKey = %q, want %q", RunIDKey, "run_id")
	}
}

func TestLevelConstants(t *testing.T) {
	if LevelDebug != 0 || LevelInfo != 1 || LevelWarn != 2 || LevelError != 3 {
		t.Error("level constants out of order")
	}
}

func TestFormatConstants(t *testing.T) {
	if FormatJSON != 0 || FormatText != 1 {
		t.Error("format constants out of order")
	}
}
