package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/klauern/pdparty/internal/logging"
)

func TestNew_Formats(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Options{Level: logging.LevelInfo, Output: &buf})
		logger.Info("tree synced", logging.Tree("lib"))

		out := buf.String()
		if !strings.Contains(out, "tree synced") || !strings.Contains(out, "tree=lib") {
			t.Errorf("unexpected text output: %s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Options{Level: logging.LevelInfo, Output: &buf, JSON: true})
		logger.Info("entry replaced", logging.Entry("examples"), logging.Action("replaced"))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
		if entry["entry"] != "examples" {
			t.Errorf("expected entry=examples, got %v", entry["entry"])
		}
		if entry["action"] != "replaced" {
			t.Errorf("expected action=replaced, got %v", entry["action"])
		}
	})
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelWarn, Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("records below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should appear at warn level")
	}
}

func TestNew_AddSource(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelInfo, Output: &buf, AddSource: true})
	logger.Info("with source")

	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("expected source info, got: %s", buf.String())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := logging.DefaultOptions()
	if opts.Level != logging.LevelInfo {
		t.Errorf("expected Info level, got %v", opts.Level)
	}
	if opts.JSON || opts.AddSource {
		t.Error("expected text output without source by default")
	}
	if logging.New(logging.Options{}) == nil {
		t.Error("expected logger when Output is nil")
	}
}

func TestSetDefault_PackageLevel(t *testing.T) {
	var buf bytes.Buffer
	logging.SetDefault(logging.New(logging.Options{Level: logging.LevelDebug, Output: &buf}))

	logging.Debug("debug message")
	logging.Info("info message")
	logging.Warn("warn message")
	logging.Error("error message")
	logging.With("component", "registry").Info("child message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message", "component=registry"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
	if logging.Default() != logging.Default() {
		t.Error("expected Default() to be stable across calls")
	}
}

func TestContextLogger(t *testing.T) {
	if logging.FromContext(context.Background()) != nil {
		t.Error("expected nil logger from empty context")
	}

	var ctxBuf, defBuf bytes.Buffer
	logging.SetDefault(logging.New(logging.Options{Level: logging.LevelInfo, Output: &defBuf}))
	ctx := logging.NewContext(context.Background(), logging.New(logging.Options{Level: logging.LevelInfo, Output: &ctxBuf}))

	logging.WithContext(ctx).Info("from context")
	logging.WithContext(context.Background()).Info("from default")

	if !strings.Contains(ctxBuf.String(), "from context") {
		t.Error("expected WithContext to use the context logger")
	}
	if !strings.Contains(defBuf.String(), "from default") {
		t.Error("expected WithContext to fall back to the default logger")
	}
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"Tree", logging.Tree("samples"), "tree", "samples"},
		{"Entry", logging.Entry("abs"), "entry", "abs"},
		{"Subsystem", logging.Subsystem("midi"), "subsystem", "midi"},
		{"Action", logging.Action("added"), "action", "added"},
		{"Path", logging.Path("/tmp/lib"), "path", "/tmp/lib"},
		{"Operation", logging.Operation("swap"), "operation", "swap"},
		{"Count", logging.Count(3), "count", "3"},
		{"Duration", logging.Duration(2 * time.Second), "duration", "2s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("got key %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("got value %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErr(t *testing.T) {
	if attr := logging.Err(nil); attr.Key != "" {
		t.Errorf("expected empty key for nil error, got %q", attr.Key)
	}

	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelInfo, Output: &buf, JSON: true})
	logger.Info("failed", logging.Err(errors.New("disk full")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if entry["error"] != "disk full" {
		t.Errorf("expected error field, got %v", entry["error"])
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logging.SetDefault(logging.New(logging.Options{Level: logging.LevelDebug, Output: &buf}))

	done := logging.Timer("synchronize")
	done()

	out := buf.String()
	if !strings.Contains(out, "operation=synchronize") || !strings.Contains(out, "duration=") {
		t.Errorf("expected timer record, got: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := logging.Discard()
	if logger.Enabled(context.Background(), logging.LevelError) {
		t.Error("discard logger should not be enabled at any level")
	}
}
